package types

import (
	"slices"
	"strings"
)

const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
	SeverityUnknown  = "Unknown"
)

const (
	DateRangeToday    = "today"
	DateRangeWeek     = "week"
	DateRangeMonth    = "month"
	DateRangeQuarter  = "quarter"
	CustomRangePrefix = "custom:"
)

const (
	SortByDate     = "date"
	SortByName     = "name"
	SortBySeverity = "severity"
	SortBySource   = "source"

	SortAsc  = "asc"
	SortDesc = "desc"
)

const TagSeparator = ","

var Severities = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityUnknown}
var SortKeys = []string{SortByDate, SortByName, SortBySeverity, SortBySource}
var DateRanges = []string{DateRangeToday, DateRangeWeek, DateRangeMonth, DateRangeQuarter}

// FilterState is the complete set of active filter, sort and pagination criteria.
// Unconstrained facets are empty strings or an empty TagSet, never missing.
type FilterState struct {
	Search    string `json:"search" schema:"search,omitempty"`
	Severity  string `json:"severity" schema:"severity,omitempty"`
	Source    string `json:"source" schema:"source,omitempty"`
	Tactic    string `json:"tactic" schema:"tactic,omitempty"`
	Tags      TagSet `json:"tags" schema:"tags,omitempty"`
	DateRange string `json:"dateRange" schema:"dateRange,omitempty"`
	SortBy    string `json:"sortBy" schema:"sortBy,default:date"`
	SortOrder string `json:"sortOrder" schema:"sortOrder,default:desc"`
	Page      int    `json:"page" schema:"page,omitempty"`
}

func DefaultFilterState() FilterState {
	return FilterState{
		Tags:      TagSet{},
		SortBy:    SortByDate,
		SortOrder: SortDesc,
		Page:      1,
	}
}

func (s FilterState) Clone() FilterState {
	s.Tags = s.Tags.Clone()
	return s
}

func (s FilterState) Equal(other FilterState) bool {
	return s.Search == other.Search &&
		s.Severity == other.Severity &&
		s.Source == other.Source &&
		s.Tactic == other.Tactic &&
		s.Tags.Equal(other.Tags) &&
		s.DateRange == other.DateRange &&
		s.SortBy == other.SortBy &&
		s.SortOrder == other.SortOrder &&
		s.Page == other.Page
}

// HasConstraints reports whether any facet narrows the result.
func (s FilterState) HasConstraints() bool {
	return s.Search != "" || s.Severity != "" || s.Source != "" || s.Tactic != "" ||
		!s.Tags.IsEmpty() || s.DateRange != ""
}

func IsSeverity(value string) bool {
	return slices.Contains(Severities, value)
}

func IsSortKey(value string) bool {
	return slices.Contains(SortKeys, value)
}

func IsSortOrder(value string) bool {
	return value == SortAsc || value == SortDesc
}

func IsDateRange(value string) bool {
	if strings.HasPrefix(value, CustomRangePrefix) {
		_, _, ok := ParseCustomRange(value)
		return ok
	}
	return slices.Contains(DateRanges, value)
}

// Sanitize coerces every field into its valid domain. Garbage falls back to the
// unconstrained value so that malformed input never hides records.
func (s *FilterState) Sanitize() {
	if s.Severity != "" && !IsSeverity(s.Severity) {
		s.Severity = ""
	}
	if s.DateRange != "" && !IsDateRange(s.DateRange) {
		s.DateRange = ""
	}
	s.Tags = NewTagSet(s.Tags...)
	if !IsSortKey(s.SortBy) {
		s.SortBy = SortByDate
	}
	if !IsSortOrder(s.SortOrder) {
		s.SortOrder = SortDesc
	}
	if s.Page < 1 {
		s.Page = 1
	}
}

// Fragment is a partial FilterState, nil fields are left untouched by Merge.
type Fragment struct {
	Search    *string `json:"search,omitempty"`
	Severity  *string `json:"severity,omitempty" validate:"omitnil,oneof=Critical High Medium Low Unknown"`
	Source    *string `json:"source,omitempty"`
	Tactic    *string `json:"tactic,omitempty"`
	Tags      *TagSet `json:"tags,omitempty"`
	DateRange *string `json:"dateRange,omitempty"`
	SortBy    *string `json:"sortBy,omitempty" validate:"omitnil,oneof=date name severity source"`
	SortOrder *string `json:"sortOrder,omitempty" validate:"omitnil,oneof=asc desc"`
}

func (s FilterState) Merge(f Fragment) FilterState {
	ret := s.Clone()
	if f.Search != nil {
		ret.Search = *f.Search
	}
	if f.Severity != nil {
		ret.Severity = *f.Severity
	}
	if f.Source != nil {
		ret.Source = *f.Source
	}
	if f.Tactic != nil {
		ret.Tactic = *f.Tactic
	}
	if f.Tags != nil {
		ret.Tags = f.Tags.Clone()
	}
	if f.DateRange != nil {
		ret.DateRange = *f.DateRange
	}
	if f.SortBy != nil {
		ret.SortBy = *f.SortBy
	}
	if f.SortOrder != nil {
		ret.SortOrder = *f.SortOrder
	}
	return ret
}

func Ptr[T any](v T) *T {
	return &v
}
