package controller

import (
	"context"
	"fmt"

	"github.com/matst80/slask-intel/pkg/types"
)

// Event is one discrete input processed on the controller loop.
type Event interface {
	handle(ctx context.Context, c *Controller)
}

// SearchInput is a keystroke in the search field. Search and suggestions are debounced separately.
type SearchInput struct {
	Query string
}

func (e SearchInput) handle(_ context.Context, c *Controller) {
	c.liveQuery = e.Query
	query := e.Query
	c.searchDebounce.Trigger(func(generation uint64) {
		c.Post(debouncedSearch{Query: query, generation: generation})
	})
	c.suggestDebounce.Trigger(func(generation uint64) {
		c.Post(debouncedSuggest{Query: query, generation: generation})
	})
}

type debouncedSearch struct {
	Query      string
	generation uint64
}

func (e debouncedSearch) handle(ctx context.Context, c *Controller) {
	if !c.searchDebounce.IsCurrent(e.generation) {
		return
	}
	c.evaluate(ctx, types.SetSearch(e.Query))
}

type debouncedSuggest struct {
	Query      string
	generation uint64
}

func (e debouncedSuggest) handle(ctx context.Context, c *Controller) {
	if !c.suggestDebounce.IsCurrent(e.generation) {
		return
	}
	if c.suggest == nil {
		return
	}
	query := e.Query
	go func() {
		c.Post(SuggestionsReady{Query: query, Suggestions: c.suggest.Suggest(ctx, query)})
	}()
}

// SuggestionsReady carries a completed lookup tagged with the query that started it.
type SuggestionsReady struct {
	Query       string
	Suggestions []string
}

func (e SuggestionsReady) handle(_ context.Context, c *Controller) {
	if e.Query != c.liveQuery {
		c.staleSuggestions.Add(1)
		staleSuggestions.Inc()
		return
	}
	c.view.ShowSuggestions(e.Query, e.Suggestions)
}

// SearchSubmit applies the query right away.
type SearchSubmit struct {
	Query string
}

func (e SearchSubmit) handle(ctx context.Context, c *Controller) {
	c.searchDebounce.Cancel()
	c.liveQuery = e.Query
	c.evaluate(ctx, types.SetSearch(e.Query))
}

// SearchEscape clears the search only, other facets are kept.
type SearchEscape struct{}

func (SearchEscape) handle(ctx context.Context, c *Controller) {
	c.searchDebounce.Cancel()
	c.suggestDebounce.Cancel()
	c.liveQuery = ""
	c.view.ShowSuggestions("", []string{})
	c.evaluate(ctx, types.SetSearch(""))
}

type FacetChange struct {
	Key   string
	Value string
}

func (e FacetChange) handle(ctx context.Context, c *Controller) {
	delta, err := types.SetFacet(e.Key, e.Value)
	if err != nil {
		c.fail(err)
		return
	}
	c.evaluate(ctx, delta)
}

type TagToggle struct {
	Tag string
}

func (e TagToggle) handle(ctx context.Context, c *Controller) {
	c.evaluate(ctx, types.ToggleTag(e.Tag))
}

type SortHeaderClick struct {
	Key string
}

func (e SortHeaderClick) handle(ctx context.Context, c *Controller) {
	if !types.IsSortKey(e.Key) {
		c.fail(fmt.Errorf("unknown sort key %q", e.Key))
		return
	}
	c.evaluate(ctx, types.ToggleSort(e.Key))
}

type SortChange struct {
	By    string
	Order string
}

func (e SortChange) handle(ctx context.Context, c *Controller) {
	if !types.IsSortKey(e.By) || !types.IsSortOrder(e.Order) {
		c.fail(fmt.Errorf("unknown sort %q %q", e.By, e.Order))
		return
	}
	c.evaluate(ctx, types.SetSort(e.By, e.Order))
}

type PageChange struct {
	Page int
}

func (e PageChange) handle(ctx context.Context, c *Controller) {
	c.evaluate(ctx, types.SetPage(e.Page))
}

type PresetClick struct {
	Name string
}

func (e PresetClick) handle(ctx context.Context, c *Controller) {
	if c.presets == nil {
		c.fail(fmt.Errorf("no presets configured"))
		return
	}
	c.evaluate(ctx, c.presets.Delta(e.Name))
}

type HistoryApply struct {
	Index int
}

func (e HistoryApply) handle(ctx context.Context, c *Controller) {
	c.evaluate(ctx, types.Delta{
		Name: "history",
		Apply: func(types.FilterState) (types.FilterState, error) {
			return c.history.Apply(e.Index)
		},
	})
}

type HistoryClear struct{}

func (HistoryClear) handle(ctx context.Context, c *Controller) {
	if err := c.history.Clear(ctx); err != nil {
		c.logf("Failed to clear history: %v", err)
	}
	c.view.Notify(Notification{Level: LevelInfo, Message: "History cleared", Dismiss: c.notifyDismiss})
}

type ClearAll struct{}

func (ClearAll) handle(ctx context.Context, c *Controller) {
	c.searchDebounce.Cancel()
	c.suggestDebounce.Cancel()
	c.liveQuery = ""
	c.evaluate(ctx, types.ClearAll())
}

// LocationLoad adopts the state of a deep link.
type LocationLoad struct {
	Query string
}

func (e LocationLoad) handle(ctx context.Context, c *Controller) {
	state := types.FilterStateFromQuery(e.Query)
	c.liveQuery = state.Search
	c.evaluate(ctx, types.ReplaceState("location", state))
}

// RecordsChanged re-evaluates the current state when the repository moved past
// the version the last evaluation saw.
type RecordsChanged struct{}

func (RecordsChanged) handle(ctx context.Context, c *Controller) {
	if c.version != 0 && c.repo.Version() == c.version {
		return
	}
	c.evaluate(ctx, types.Refresh())
}

// Snapshot hands the latest result to Reply without changing anything.
type Snapshot struct {
	Reply func(result Result, survivors []types.Record)
}

func (e Snapshot) handle(_ context.Context, c *Controller) {
	if e.Reply != nil {
		e.Reply(c.result(), cloneRecords(c.survivors))
	}
}
