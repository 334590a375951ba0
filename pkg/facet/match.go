package facet

import (
	"context"
	"time"

	"github.com/matst80/slask-intel/pkg/search"
	"github.com/matst80/slask-intel/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	name   = "slask-intel-facets"
	tracer = otel.Tracer(name)
)

// Matcher is a FilterState compiled against a fixed instant. It is a pure
// conjunction of the active facets and never modifies the records it sees.
type Matcher struct {
	terms    []string
	severity string
	source   string
	tactic   string
	tags     types.TagSet
	date     DatePredicate
}

func NewMatcher(s types.FilterState, now time.Time) *Matcher {
	return &Matcher{
		terms:    search.Terms(s.Search),
		severity: s.Severity,
		source:   s.Source,
		tactic:   s.Tactic,
		tags:     s.Tags,
		date:     ResolveDateRange(s.DateRange, now),
	}
}

func (m *Matcher) Matches(r types.Record) bool {
	if m.severity != "" && r.Severity != m.severity {
		return false
	}
	if m.source != "" && r.Source != m.source {
		return false
	}
	if m.tactic != "" && r.Tactic != m.tactic {
		return false
	}
	if !m.tags.IsEmpty() && !m.tags.Intersects(r.Tags) {
		return false
	}
	if m.date != nil {
		// records without a usable date are never excluded
		if date, ok := r.Time(); ok && !m.date(date) {
			return false
		}
	}
	if len(m.terms) > 0 {
		text := search.SearchableText(r.Title, r.Description, r.Tags)
		if !search.ContainsAll(text, m.terms) {
			return false
		}
	}
	return true
}

func Matches(r types.Record, s types.FilterState, now time.Time) bool {
	return NewMatcher(s, now).Matches(r)
}

// Filter returns the accepted records in input order.
func Filter(records []types.Record, s types.FilterState, now time.Time) []types.Record {
	m := NewMatcher(s, now)
	ret := make([]types.Record, 0, len(records))
	for _, r := range records {
		if m.Matches(r) {
			ret = append(ret, r)
		}
	}
	return ret
}

func FilterContext(ctx context.Context, records []types.Record, s types.FilterState, now time.Time) []types.Record {
	_, span := tracer.Start(ctx, "filter")
	defer span.End()
	ret := Filter(records, s, now)
	span.SetAttributes(attribute.Int("records", len(records)), attribute.Int("matches", len(ret)))
	return ret
}
