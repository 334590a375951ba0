package sorting

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/matst80/slask-intel/pkg/types"
)

// Comparator orders two records ascending.
type Comparator func(a, b types.Record) int

var SeverityRank = map[string]int{
	types.SeverityCritical: 4,
	types.SeverityHigh:     3,
	types.SeverityMedium:   2,
	types.SeverityLow:      1,
	types.SeverityUnknown:  0,
}

func severityRank(severity string) int {
	return SeverityRank[severity]
}

// dateKey places records without a usable date at the earliest instant.
func dateKey(r types.Record) int64 {
	t, ok := r.Time()
	if !ok {
		return math.MinInt64
	}
	return t.UnixNano()
}

var comparators = map[string]Comparator{
	types.SortByName: func(a, b types.Record) int {
		return strings.Compare(a.Title, b.Title)
	},
	types.SortBySeverity: func(a, b types.Record) int {
		return cmp.Compare(severityRank(a.Severity), severityRank(b.Severity))
	},
	types.SortBySource: func(a, b types.Record) int {
		return strings.Compare(a.Source, b.Source)
	},
	types.SortByDate: func(a, b types.Record) int {
		return cmp.Compare(dateKey(a), dateKey(b))
	},
}

// GetComparator returns the comparator for a sort key, unknown keys sort by date.
func GetComparator(sortBy, sortOrder string) Comparator {
	fn, ok := comparators[sortBy]
	if !ok {
		fn = comparators[types.SortByDate]
	}
	if sortOrder == types.SortDesc {
		return func(a, b types.Record) int {
			return -fn(a, b)
		}
	}
	return fn
}

// Sort returns a stably ordered copy, ties keep their input order in both directions.
func Sort(records []types.Record, sortBy, sortOrder string) []types.Record {
	ret := slices.Clone(records)
	slices.SortStableFunc(ret, GetComparator(sortBy, sortOrder))
	return ret
}

func SortState(records []types.Record, s types.FilterState) []types.Record {
	return Sort(records, s.SortBy, s.SortOrder)
}
