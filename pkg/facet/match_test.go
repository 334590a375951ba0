package facet

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/matst80/slask-intel/pkg/types"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) string {
	return now.Add(-time.Duration(days) * day).Format(time.RFC3339)
}

func state(fn func(s *types.FilterState)) types.FilterState {
	s := types.DefaultFilterState()
	fn(&s)
	return s
}

func TestSeverityScenario(t *testing.T) {
	records := []types.Record{
		{Id: "1", Severity: "Critical"},
		{Id: "2", Severity: "Low"},
	}
	s := state(func(s *types.FilterState) { s.Severity = "Critical" })
	res := Filter(records, s, now)
	if len(res) != 1 || res[0].Id != "1" {
		t.Errorf("Expected only record 1, got %v", res)
	}
}

func TestEqualityFacetsAreExact(t *testing.T) {
	r := types.Record{Source: "CISA", Tactic: "execution"}
	if Matches(r, state(func(s *types.FilterState) { s.Source = "cisa" }), now) {
		t.Error("Expected source equality to be case sensitive")
	}
	if Matches(r, state(func(s *types.FilterState) { s.Tactic = "exec" }), now) {
		t.Error("Expected tactic to use equality, not substring")
	}
	if !Matches(r, state(func(s *types.FilterState) { s.Source = "CISA"; s.Tactic = "execution" }), now) {
		t.Error("Expected exact values to match")
	}
}

func TestTagsAreOr(t *testing.T) {
	r := types.Record{Tags: []string{"a", "b"}}
	if !Matches(r, state(func(s *types.FilterState) { s.Tags = types.NewTagSet("b", "c") }), now) {
		t.Error("Expected {a,b} to match {b,c}")
	}
	if Matches(r, state(func(s *types.FilterState) { s.Tags = types.NewTagSet("c", "d") }), now) {
		t.Error("Expected {a,b} not to match {c,d}")
	}
}

func TestSearchIsAndOfTerms(t *testing.T) {
	r := types.Record{Title: "APT28", Description: "lateral movement"}
	if !Matches(r, state(func(s *types.FilterState) { s.Search = "apt movement" }), now) {
		t.Error("Expected 'apt movement' to match")
	}
	if Matches(r, state(func(s *types.FilterState) { s.Search = "apt ransomware" }), now) {
		t.Error("Expected 'apt ransomware' not to match")
	}
	if !Matches(r, state(func(s *types.FilterState) { s.Search = "   " }), now) {
		t.Error("Expected blank search to match")
	}
}

func TestSearchFoldsDiacritics(t *testing.T) {
	r := types.Record{Title: "Café campaign"}
	if !Matches(r, state(func(s *types.FilterState) { s.Search = "CAFE" }), now) {
		t.Error("Expected folded search to match")
	}
}

func TestDateRangeBoundaries(t *testing.T) {
	week := state(func(s *types.FilterState) { s.DateRange = types.DateRangeWeek })
	if !Matches(types.Record{Date: daysAgo(7)}, week, now) {
		t.Error("Expected 7 days ago to be inside the week")
	}
	if Matches(types.Record{Date: daysAgo(8)}, week, now) {
		t.Error("Expected 8 days ago to be outside the week")
	}
	if Matches(types.Record{Date: now.Add(2 * time.Hour).Format(time.RFC3339)}, week, now) {
		t.Error("Expected future dates to be excluded")
	}
	month := state(func(s *types.FilterState) { s.DateRange = types.DateRangeMonth })
	if !Matches(types.Record{Date: daysAgo(30)}, month, now) || Matches(types.Record{Date: daysAgo(31)}, month, now) {
		t.Error("Unexpected month boundary")
	}
	quarter := state(func(s *types.FilterState) { s.DateRange = types.DateRangeQuarter })
	if !Matches(types.Record{Date: daysAgo(90)}, quarter, now) || Matches(types.Record{Date: daysAgo(91)}, quarter, now) {
		t.Error("Unexpected quarter boundary")
	}
}

func TestToday(t *testing.T) {
	today := state(func(s *types.FilterState) { s.DateRange = types.DateRangeToday })
	if !Matches(types.Record{Date: "2024-06-15T00:10:00Z"}, today, now) {
		t.Error("Expected early today to match")
	}
	if Matches(types.Record{Date: "2024-06-14T23:59:00Z"}, today, now) {
		t.Error("Expected yesterday not to match")
	}
}

func TestCustomRange(t *testing.T) {
	custom := state(func(s *types.FilterState) { s.DateRange = "custom:2024-05-01:2024-05-31" })
	if !Matches(types.Record{Date: "2024-05-31T22:00:00Z"}, custom, now) {
		t.Error("Expected end day to be inclusive")
	}
	if !Matches(types.Record{Date: "2024-05-01"}, custom, now) {
		t.Error("Expected start day to be inclusive")
	}
	if Matches(types.Record{Date: "2024-06-01"}, custom, now) {
		t.Error("Expected June to be outside")
	}
}

func TestMissingDateAlwaysMatches(t *testing.T) {
	for _, dr := range []string{"", "today", "week", "month", "quarter", "custom:2020-01-01:2020-01-02", "bogus"} {
		s := state(func(s *types.FilterState) { s.DateRange = dr })
		for _, date := range []string{"", "not a date"} {
			if !Matches(types.Record{Date: date}, s, now) {
				t.Errorf("Expected record with date %q to match range %q", date, dr)
			}
		}
	}
}

func TestUnknownRangeMatchesEverything(t *testing.T) {
	s := state(func(s *types.FilterState) { s.DateRange = "fortnight" })
	if !Matches(types.Record{Date: daysAgo(400)}, s, now) {
		t.Error("Expected unknown range to be permissive")
	}
}

func TestFilterIsPure(t *testing.T) {
	records := []types.Record{
		{Id: "1", Title: "Emotet", Tags: []string{"b", "a"}, Severity: "High"},
		{Id: "2", Title: "Ryuk", Tags: []string{"ransomware"}, Severity: "Critical"},
	}
	before := make([]types.Record, len(records))
	for i, r := range records {
		before[i] = r.Clone()
	}
	s := state(func(s *types.FilterState) { s.Search = "ryuk"; s.Tags = types.NewTagSet("ransomware") })
	first := FilterContext(context.Background(), records, s, now)
	second := Filter(records, s, now)
	if len(first) != 1 || len(second) != 1 || first[0].Id != second[0].Id {
		t.Errorf("Expected identical results, got %v and %v", first, second)
	}
	for i := range records {
		if records[i].Id != before[i].Id || !slices.Equal(records[i].Tags, before[i].Tags) {
			t.Errorf("Record %d was modified", i)
		}
	}
}

func TestDaysElapsed(t *testing.T) {
	if DaysElapsed(now.Add(-25*time.Hour), now) != 1 {
		t.Error("Expected 1 day")
	}
	if DaysElapsed(now.Add(time.Minute), now) != -1 {
		t.Error("Expected future to be negative")
	}
}
