package controller

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync/atomic"
	"time"

	"github.com/matst80/slask-intel/pkg/export"
	"github.com/matst80/slask-intel/pkg/facet"
	"github.com/matst80/slask-intel/pkg/history"
	"github.com/matst80/slask-intel/pkg/index"
	"github.com/matst80/slask-intel/pkg/presets"
	"github.com/matst80/slask-intel/pkg/sorting"
	"github.com/matst80/slask-intel/pkg/suggest"
	"github.com/matst80/slask-intel/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrStopped = errors.New("controller stopped")

var (
	evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskintel_evaluations_total",
		Help: "The total number of filter evaluations",
	})
	failedDeltas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskintel_failed_deltas_total",
		Help: "The total number of filter changes that could not be applied",
	})
	staleSuggestions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskintel_stale_suggestions_total",
		Help: "The total number of suggestion responses discarded as stale",
	})
	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slaskintel_evaluation_duration_seconds",
		Help:    "Time spent filtering and sorting records",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)

type Options struct {
	SearchDelay   time.Duration
	SuggestDelay  time.Duration
	PageSize      int
	NotifyDismiss time.Duration
	SessionId     string
	Presets       *presets.Catalog
	Suggest       *suggest.Service
	Tracker       Tracker
	Now           func() time.Time
	Logger        *log.Logger
}

func DefaultOptions() Options {
	return Options{
		SearchDelay:   300 * time.Millisecond,
		SuggestDelay:  200 * time.Millisecond,
		PageSize:      20,
		NotifyDismiss: 3 * time.Second,
		Presets:       presets.DefaultCatalog(),
		Now:           time.Now,
	}
}

type envelope struct {
	event Event
	done  chan struct{}
}

// Controller owns one FilterState. All mutation happens on the goroutine
// running Run, one event at a time.
type Controller struct {
	repo      index.Repository
	view      View
	navigator Navigator
	history   *history.Store
	presets   *presets.Catalog
	suggest   *suggest.Service
	tracker   Tracker

	searchDebounce  *Debouncer
	suggestDebounce *Debouncer

	pageSize      int
	notifyDismiss time.Duration
	sessionId     string
	now           func() time.Time
	logger        *log.Logger

	events  chan envelope
	stopped chan struct{}

	state     types.FilterState
	liveQuery string
	survivors []types.Record
	total     int
	version   uint64

	staleSuggestions atomic.Int64
}

func New(repo index.Repository, view View, navigator Navigator, store *history.Store, opts Options) *Controller {
	if view == nil {
		view = NopView{}
	}
	if navigator == nil {
		navigator = &MemoryNavigator{}
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultOptions().PageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Controller{
		repo:            repo,
		view:            view,
		navigator:       navigator,
		history:         store,
		presets:         opts.Presets,
		suggest:         opts.Suggest,
		tracker:         opts.Tracker,
		searchDebounce:  NewDebouncer(opts.SearchDelay),
		suggestDebounce: NewDebouncer(opts.SuggestDelay),
		pageSize:        opts.PageSize,
		notifyDismiss:   opts.NotifyDismiss,
		sessionId:       opts.SessionId,
		now:             opts.Now,
		logger:          opts.Logger,
		events:          make(chan envelope, 64),
		stopped:         make(chan struct{}),
		state:           types.DefaultFilterState(),
	}
}

// Run loads the history and processes events until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.stopped)
	defer c.searchDebounce.Cancel()
	defer c.suggestDebounce.Cancel()
	c.history.Load(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-c.events:
			env.event.handle(ctx, c)
			if env.done != nil {
				close(env.done)
			}
		}
	}
}

// Post enqueues an event without waiting for it to be processed.
func (c *Controller) Post(event Event) {
	select {
	case c.events <- envelope{event: event}:
	case <-c.stopped:
	}
}

// Dispatch enqueues an event and waits until it has been processed.
func (c *Controller) Dispatch(ctx context.Context, event Event) error {
	env := envelope{event: event, done: make(chan struct{})}
	select {
	case c.events <- env:
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-env.done:
		return nil
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) Snapshot(ctx context.Context) (Result, error) {
	var ret Result
	err := c.Dispatch(ctx, Snapshot{Reply: func(result Result, _ []types.Record) {
		ret = result
	}})
	return ret, err
}

// Export builds an export document of the records matching the current state.
func (c *Controller) Export(ctx context.Context) (export.Document, error) {
	var doc export.Document
	err := c.Dispatch(ctx, Snapshot{Reply: func(result Result, survivors []types.Record) {
		doc = export.Build(result.State, survivors, c.now())
	}})
	return doc, err
}

func (c *Controller) History() []history.Entry {
	return c.history.Entries()
}

func (c *Controller) StaleSuggestions() int64 {
	return c.staleSuggestions.Load()
}

func (c *Controller) logf(format string, v ...any) {
	c.logger.Printf(format, v...)
}

func (c *Controller) fail(err error) {
	failedDeltas.Inc()
	c.logf("Filter change rejected: %v", err)
	c.view.Notify(Notification{Level: LevelWarning, Message: err.Error(), Dismiss: c.notifyDismiss})
}

// evaluate runs the full pipeline for one delta. A failing delta leaves the state untouched.
func (c *Controller) evaluate(ctx context.Context, delta types.Delta) {
	next, err := delta.Apply(c.state.Clone())
	if err != nil {
		c.fail(err)
		return
	}
	next.Sanitize()
	if delta.ResetsPage {
		next.Page = 1
	}
	c.state = next
	c.navigator.ReplaceQuery(types.EncodeFilterState(next))

	start := time.Now()
	c.version = c.repo.Version()
	records := c.repo.All()
	survivors := facet.FilterContext(ctx, records, next, c.now())
	c.survivors = sorting.SortState(survivors, next)
	c.total = len(records)
	evaluationDuration.Observe(time.Since(start).Seconds())
	evaluations.Inc()

	visible := make(map[string]struct{}, len(c.survivors))
	ids := make([]string, len(c.survivors))
	for i, r := range c.survivors {
		visible[r.Id] = struct{}{}
		ids[i] = r.Id
	}
	for _, r := range records {
		_, ok := visible[r.Id]
		c.view.SetVisible(r.Id, ok)
	}
	c.view.Reorder(ids)
	result := c.result()
	c.view.ReportResults(result)

	if err := c.history.Record(ctx, next, result.Location); err != nil {
		c.logf("Failed to persist history: %v", err)
	}
	if c.tracker != nil {
		c.tracker.TrackFilterApplied(types.FilterApplied{
			SessionId: c.sessionId,
			Query:     types.EncodeFilterStateQuery(next),
			Visible:   result.Visible,
			Total:     result.Total,
			Time:      c.now().Unix(),
		})
	}
}

func (c *Controller) result() Result {
	visible := len(c.survivors)
	pages := (visible + c.pageSize - 1) / c.pageSize
	if pages < 1 {
		pages = 1
	}
	page := c.state.Page
	ids := make([]string, 0, c.pageSize)
	// pages past the end are kept in the state but render nothing
	if page >= 1 && page <= pages {
		from := (page - 1) * c.pageSize
		for i := from; i < visible && i < from+c.pageSize; i++ {
			ids = append(ids, c.survivors[i].Id)
		}
	}
	return Result{
		Total:    c.total,
		Visible:  visible,
		Empty:    visible == 0,
		Page:     page,
		Pages:    pages,
		PageIds:  ids,
		State:    c.state.Clone(),
		Location: c.navigator.Location(),
	}
}

func cloneRecords(records []types.Record) []types.Record {
	ret := slices.Clone(records)
	for i := range ret {
		ret[i] = ret[i].Clone()
	}
	return ret
}
