package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/matst80/slask-intel/pkg/common"
	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
	"github.com/matst80/slask-intel/pkg/controller"
	"github.com/matst80/slask-intel/pkg/export"
	"github.com/matst80/slask-intel/pkg/history"
	"github.com/matst80/slask-intel/pkg/index"
	"github.com/matst80/slask-intel/pkg/preferences"
	"github.com/matst80/slask-intel/pkg/presets"
	"github.com/matst80/slask-intel/pkg/storage"
	"github.com/matst80/slask-intel/pkg/suggest"
	"github.com/matst80/slask-intel/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskintel_requests_total",
		Help: "The total number of api requests",
	}, []string{"handler"})
	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskintel_sessions",
		Help: "The number of sessions with a running controller",
	})
)

type WebServer struct {
	Repository  *index.MemoryRepository
	Presets     *presets.Catalog
	Suggest     *suggest.Service
	History     storage.KeyValueStore
	Preferences *preferences.Store
	Profiles    *common.ProfileSigner
	Tracker     controller.Tracker
	Options     controller.Options
	Sessions    *SessionManager
	DataDir     string
	Now         func() time.Time
}

type Config struct {
	Repository       *index.MemoryRepository
	Presets          *presets.Catalog
	Suggest          *suggest.Service
	History          storage.KeyValueStore
	Preferences      storage.KeyValueStore
	ProfileSecret    string
	Tracker          controller.Tracker
	SessionCacheSize int
	HistoryCapacity  int
	Options          controller.Options
	// DataDir is reloaded by /api/refresh, empty disables refreshing.
	DataDir string
}

func NewWebServer(cfg Config) (*WebServer, error) {
	if cfg.Presets == nil {
		cfg.Presets = presets.DefaultCatalog()
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = history.DefaultCapacity
	}
	opts := cfg.Options
	opts.Presets = cfg.Presets
	opts.Suggest = cfg.Suggest
	opts.Tracker = cfg.Tracker
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ws := &WebServer{
		Repository:  cfg.Repository,
		Presets:     cfg.Presets,
		Suggest:     cfg.Suggest,
		History:     cfg.History,
		Preferences: preferences.NewStore(cfg.Preferences),
		Profiles:    common.NewProfileSigner(cfg.ProfileSecret),
		Tracker:     cfg.Tracker,
		Options:     opts,
		DataDir:     cfg.DataDir,
		Now:         opts.Now,
	}
	sessions, err := NewSessionManager(cfg.SessionCacheSize, func(id string) *Session {
		return ws.newSession(id, cfg.HistoryCapacity)
	})
	if err != nil {
		return nil, err
	}
	ws.Sessions = sessions
	cfg.Repository.AddChangeHandler(index.ChangeHandlerFunc(func(uint64) {
		ws.RecordsChanged()
	}))
	return ws, nil
}

func (ws *WebServer) newSession(id string, historyCapacity int) *Session {
	view := &RecordingView{}
	nav := &controller.MemoryNavigator{Path: "/"}
	opts := ws.Options
	opts.SessionId = id
	store := history.NewStore(ws.History, "history:"+id, historyCapacity)
	c := controller.New(ws.Repository, view, nav, store, opts)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		liveSessions.Inc()
		defer liveSessions.Dec()
		c.Run(ctx)
	}()
	return &Session{Id: id, Controller: c, View: view, Navigator: nav, cancel: cancel}
}

// RecordsChanged re-evaluates every live session.
func (ws *WebServer) RecordsChanged() {
	ws.Sessions.Broadcast(controller.RecordsChanged{})
}

// Refresh reloads the data directory. Live sessions are re-evaluated through
// the repository change handler.
func (ws *WebServer) Refresh() error {
	if ws.DataDir == "" {
		return common.NewHttpError(http.StatusNotImplemented, "refresh is not configured")
	}
	return ws.Repository.LoadFiles(ws.DataDir)
}

// RefreshEvery reloads the data directory on every tick until ctx is done.
func (ws *WebServer) RefreshEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.Refresh(); err != nil {
				log.Printf("Scheduled refresh failed: %v", err)
				continue
			}
			log.Printf("Refreshed %d records from %s", ws.Repository.Len(), ws.DataDir)
		}
	}
}

func (ws *WebServer) PostRefresh(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	if err := ws.Refresh(); err != nil {
		return err
	}
	return enc.Encode(ws.Repository.Stats(ws.Now()))
}

type ItemsResponse struct {
	controller.Result
	Items         []types.Record            `json:"items"`
	Notifications []controller.Notification `json:"notifications"`
}

func (ws *WebServer) respond(s *Session, result controller.Result, enc jsoncompat.Encoder) error {
	items := make([]types.Record, 0, len(result.PageIds))
	for _, id := range result.PageIds {
		if r, ok := ws.Repository.Get(id); ok {
			items = append(items, r)
		}
	}
	return enc.Encode(ItemsResponse{
		Result:        result,
		Items:         items,
		Notifications: s.View.TakeNotifications(),
	})
}

func (ws *WebServer) dispatch(ctx context.Context, s *Session, event controller.Event, enc jsoncompat.Encoder) error {
	if err := s.Controller.Dispatch(ctx, event); err != nil {
		return err
	}
	result, err := s.Controller.Snapshot(ctx)
	if err != nil {
		return err
	}
	return ws.respond(s, result, enc)
}

func (ws *WebServer) GetItems(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	s, isNew := ws.Sessions.Get(sessionId)
	if isNew || r.URL.RawQuery != "" {
		return ws.dispatch(r.Context(), s, controller.LocationLoad{Query: r.URL.RawQuery}, enc)
	}
	result, err := s.Controller.Snapshot(r.Context())
	if err != nil {
		return err
	}
	return ws.respond(s, result, enc)
}

type FilterRequest struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Order string `json:"order"`
	Page  int    `json:"page"`
}

func (f FilterRequest) Event() (controller.Event, error) {
	switch f.Type {
	case "facet":
		return controller.FacetChange{Key: f.Key, Value: f.Value}, nil
	case "tag":
		return controller.TagToggle{Tag: f.Value}, nil
	case "sortHeader":
		return controller.SortHeaderClick{Key: f.Key}, nil
	case "sort":
		return controller.SortChange{By: f.Key, Order: f.Order}, nil
	case "page":
		return controller.PageChange{Page: f.Page}, nil
	case "search":
		return controller.SearchSubmit{Query: f.Value}, nil
	case "escape":
		return controller.SearchEscape{}, nil
	}
	return nil, common.NewHttpError(http.StatusBadRequest, fmt.Sprintf("unknown filter type %q", f.Type))
}

func (ws *WebServer) PostFilters(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	req, err := common.DecodeJson[FilterRequest](r)
	if err != nil {
		return err
	}
	event, err := req.Event()
	if err != nil {
		return err
	}
	s, _ := ws.Sessions.Get(sessionId)
	return ws.dispatch(r.Context(), s, event, enc)
}

// PostInput feeds a keystroke to the debounced search and suggestion pipeline.
func (ws *WebServer) PostInput(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	req, err := common.DecodeJson[FilterRequest](r)
	if err != nil {
		return err
	}
	s, _ := ws.Sessions.Get(sessionId)
	s.Controller.Post(controller.SearchInput{Query: req.Value})
	w.WriteHeader(http.StatusAccepted)
	return enc.Encode(map[string]string{"query": req.Value})
}

func (ws *WebServer) Clear(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	s, _ := ws.Sessions.Get(sessionId)
	return ws.dispatch(r.Context(), s, controller.ClearAll{}, enc)
}

type SuggestResult struct {
	Value    string            `json:"value"`
	Segments []suggest.Segment `json:"segments"`
}

func (ws *WebServer) GetSuggest(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	query := r.URL.Query().Get("q")
	if ws.Suggest == nil {
		return enc.Encode([]SuggestResult{})
	}
	return enc.Encode(highlightAll(query, ws.Suggest.Suggest(r.Context(), query)))
}

type SuggestionsResponse struct {
	Query       string          `json:"query"`
	Suggestions []SuggestResult `json:"suggestions"`
}

func highlightAll(query string, values []string) []SuggestResult {
	ret := make([]SuggestResult, 0, len(values))
	for _, s := range values {
		ret = append(ret, SuggestResult{Value: s, Segments: suggest.Highlight(s, query)})
	}
	return ret
}

// GetSuggestions returns what the session's debounced lookup last accepted for the live query.
func (ws *WebServer) GetSuggestions(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	s, _ := ws.Sessions.Get(sessionId)
	query, values := s.View.Suggestions()
	return enc.Encode(SuggestionsResponse{Query: query, Suggestions: highlightAll(query, values)})
}

func (ws *WebServer) GetPresets(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	return enc.Encode(ws.Presets.All())
}

func (ws *WebServer) ApplyPreset(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	name := r.PathValue("name")
	if _, ok := ws.Presets.Get(name); !ok {
		return common.NewHttpError(http.StatusNotFound, fmt.Sprintf("%v: %s", presets.ErrUnknownPreset, name))
	}
	s, _ := ws.Sessions.Get(sessionId)
	return ws.dispatch(r.Context(), s, controller.PresetClick{Name: name}, enc)
}

func (ws *WebServer) GetHistory(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	s, _ := ws.Sessions.Get(sessionId)
	if _, err := s.Controller.Snapshot(r.Context()); err != nil {
		return err
	}
	return enc.Encode(s.Controller.History())
}

func (ws *WebServer) ApplyHistory(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return common.NewHttpError(http.StatusBadRequest, "invalid history index")
	}
	s, _ := ws.Sessions.Get(sessionId)
	return ws.dispatch(r.Context(), s, controller.HistoryApply{Index: idx}, enc)
}

func (ws *WebServer) ClearHistory(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	s, _ := ws.Sessions.Get(sessionId)
	if err := s.Controller.Dispatch(r.Context(), controller.HistoryClear{}); err != nil {
		return err
	}
	return enc.Encode(s.View.TakeNotifications())
}

func (ws *WebServer) Export(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	s, _ := ws.Sessions.Get(sessionId)
	doc, err := s.Controller.Export(r.Context())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(ws.Now())))
	return export.Write(w, doc)
}

func (ws *WebServer) GetStats(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	return enc.Encode(ws.Repository.Stats(ws.Now()))
}

func (ws *WebServer) GetFacets(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	return enc.Encode(index.GetFacetValues(ws.Repository.All()))
}

func (ws *WebServer) GetPreferences(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	profile := ws.Profiles.HandleProfileCookie(w, r)
	return enc.Encode(ws.Preferences.Load(r.Context(), profile))
}

func (ws *WebServer) PutPreferences(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
	profile := ws.Profiles.HandleProfileCookie(w, r)
	prefs, err := common.DecodeJson[preferences.Preferences](r)
	if err != nil {
		return err
	}
	if err := prefs.Validate(); err != nil {
		return common.NewHttpError(http.StatusBadRequest, err.Error())
	}
	if err := ws.Preferences.Save(r.Context(), profile, prefs); err != nil {
		return err
	}
	return enc.Encode(prefs)
}

func handle(name string, fn common.JsonHandlerFunc) http.HandlerFunc {
	counter := requests.WithLabelValues(name)
	return common.JsonHandler(func(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error {
		counter.Inc()
		return fn(w, r, sessionId, enc)
	})
}

func (ws *WebServer) Handler() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("OPTIONS /api/", common.RespondToOptions)
	srv.HandleFunc("GET /api/items", handle("items", ws.GetItems))
	srv.HandleFunc("POST /api/filters", handle("filters", ws.PostFilters))
	srv.HandleFunc("POST /api/input", handle("input", ws.PostInput))
	srv.HandleFunc("POST /api/clear", handle("clear", ws.Clear))
	srv.HandleFunc("GET /api/suggest", handle("suggest", ws.GetSuggest))
	srv.HandleFunc("GET /api/suggestions", handle("suggestions", ws.GetSuggestions))
	srv.HandleFunc("GET /api/presets", handle("presets", ws.GetPresets))
	srv.HandleFunc("POST /api/presets/{name}", handle("preset", ws.ApplyPreset))
	srv.HandleFunc("GET /api/history", handle("history", ws.GetHistory))
	srv.HandleFunc("POST /api/history/{index}", handle("history_apply", ws.ApplyHistory))
	srv.HandleFunc("DELETE /api/history", handle("history_clear", ws.ClearHistory))
	srv.HandleFunc("GET /api/export", handle("export", ws.Export))
	srv.HandleFunc("GET /api/stats", handle("stats", ws.GetStats))
	srv.HandleFunc("GET /api/facets", handle("facets", ws.GetFacets))
	srv.HandleFunc("POST /api/refresh", handle("refresh", ws.PostRefresh))
	srv.HandleFunc("GET /api/preferences", handle("preferences", ws.GetPreferences))
	srv.HandleFunc("PUT /api/preferences", handle("preferences_save", ws.PutPreferences))
	return srv
}
