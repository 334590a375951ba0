package index

import (
	"slices"
	"time"

	"github.com/matst80/slask-intel/pkg/types"
)

type Stats struct {
	Total       int            `json:"total"`
	ByKind      map[string]int `json:"byKind"`
	BySeverity  map[string]int `json:"bySeverity"`
	LastUpdated string         `json:"lastUpdated"`
}

func (r *MemoryRepository) Stats(now time.Time) Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{
		Total:       len(r.items),
		ByKind:      map[string]int{},
		BySeverity:  map[string]int{},
		LastUpdated: now.Format(time.DateTime),
	}
	for _, item := range r.items {
		s.ByKind[item.Kind]++
		severity := item.Severity
		if severity == "" {
			severity = types.SeverityUnknown
		}
		s.BySeverity[severity]++
	}
	return s
}

// FacetValue is one selectable value of a facet and how many records carry it.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type FacetValues struct {
	Severity []FacetValue `json:"severity"`
	Source   []FacetValue `json:"source"`
	Tactic   []FacetValue `json:"tactic"`
	Tags     []FacetValue `json:"tags"`
}

func collect(counts map[string]int) []FacetValue {
	ret := make([]FacetValue, 0, len(counts))
	for value, count := range counts {
		ret = append(ret, FacetValue{Value: value, Count: count})
	}
	slices.SortFunc(ret, func(a, b FacetValue) int {
		if a.Value < b.Value {
			return -1
		}
		if a.Value > b.Value {
			return 1
		}
		return 0
	})
	return ret
}

// GetFacetValues lists the distinct non empty values per facet, sorted by value.
func GetFacetValues(records []types.Record) FacetValues {
	severity, source, tactic, tags := map[string]int{}, map[string]int{}, map[string]int{}, map[string]int{}
	for _, r := range records {
		if r.Severity != "" {
			severity[r.Severity]++
		}
		if r.Source != "" {
			source[r.Source]++
		}
		if r.Tactic != "" {
			tactic[r.Tactic]++
		}
		for _, tag := range types.NewTagSet(r.Tags...) {
			tags[tag]++
		}
	}
	return FacetValues{
		Severity: collect(severity),
		Source:   collect(source),
		Tactic:   collect(tactic),
		Tags:     collect(tags),
	}
}
