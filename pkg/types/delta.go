package types

import "fmt"

// Delta is one discrete change to a FilterState. ResetsPage tells the caller
// whether the change invalidates the current page.
type Delta struct {
	Name       string
	ResetsPage bool
	Apply      func(FilterState) (FilterState, error)
}

func facetDelta(name string, fn func(*FilterState)) Delta {
	return Delta{
		Name:       name,
		ResetsPage: true,
		Apply: func(s FilterState) (FilterState, error) {
			fn(&s)
			return s, nil
		},
	}
}

func SetSearch(query string) Delta {
	return facetDelta(KeySearch, func(s *FilterState) { s.Search = query })
}

func SetSeverity(severity string) Delta {
	return facetDelta(KeySeverity, func(s *FilterState) { s.Severity = severity })
}

func SetSource(source string) Delta {
	return facetDelta(KeySource, func(s *FilterState) { s.Source = source })
}

func SetTactic(tactic string) Delta {
	return facetDelta(KeyTactic, func(s *FilterState) { s.Tactic = tactic })
}

func SetDateRange(dateRange string) Delta {
	return facetDelta(KeyDateRange, func(s *FilterState) { s.DateRange = dateRange })
}

func SetTags(tags ...string) Delta {
	return facetDelta(KeyTags, func(s *FilterState) { s.Tags = NewTagSet(tags...) })
}

func ToggleTag(tag string) Delta {
	return facetDelta(KeyTags, func(s *FilterState) { s.Tags = s.Tags.Toggle(tag) })
}

// SetFacet maps a query key to the matching single valued facet delta.
func SetFacet(key, value string) (Delta, error) {
	switch key {
	case KeySearch:
		return SetSearch(value), nil
	case KeySeverity:
		return SetSeverity(value), nil
	case KeySource:
		return SetSource(value), nil
	case KeyTactic:
		return SetTactic(value), nil
	case KeyDateRange:
		return SetDateRange(value), nil
	case KeyTags:
		return SetTags(value), nil
	}
	return Delta{}, fmt.Errorf("unknown facet %q", key)
}

func SetSort(by, order string) Delta {
	return Delta{
		Name: KeySortBy,
		Apply: func(s FilterState) (FilterState, error) {
			s.SortBy = by
			s.SortOrder = order
			return s, nil
		},
	}
}

// ToggleSort is a sort header click: the active key flips its order, another
// key becomes active with the current order.
func ToggleSort(by string) Delta {
	return Delta{
		Name: KeySortBy,
		Apply: func(s FilterState) (FilterState, error) {
			if s.SortBy == by {
				if s.SortOrder == SortAsc {
					s.SortOrder = SortDesc
				} else {
					s.SortOrder = SortAsc
				}
			} else {
				s.SortBy = by
			}
			return s, nil
		},
	}
}

func SetPage(page int) Delta {
	return Delta{
		Name: KeyPage,
		Apply: func(s FilterState) (FilterState, error) {
			s.Page = page
			return s, nil
		},
	}
}

// ReplaceState adopts a complete state, keeping its page.
func ReplaceState(name string, next FilterState) Delta {
	return Delta{
		Name: name,
		Apply: func(FilterState) (FilterState, error) {
			return next.Clone(), nil
		},
	}
}

func ClearAll() Delta {
	return Delta{
		Name:       "clear",
		ResetsPage: true,
		Apply: func(FilterState) (FilterState, error) {
			return DefaultFilterState(), nil
		},
	}
}

// Refresh re-evaluates without touching the state.
func Refresh() Delta {
	return Delta{
		Name: "refresh",
		Apply: func(s FilterState) (FilterState, error) {
			return s, nil
		},
	}
}
