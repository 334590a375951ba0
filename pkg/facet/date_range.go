package facet

import (
	"strings"
	"time"

	"github.com/matst80/slask-intel/pkg/types"
)

const day = 24 * time.Hour

var rangeDays = map[string]int{
	types.DateRangeWeek:    7,
	types.DateRangeMonth:   30,
	types.DateRangeQuarter: 90,
}

// DatePredicate decides whether a parsed record date is inside a range.
type DatePredicate func(date time.Time) bool

// ResolveDateRange turns a range token into a predicate relative to now. Empty
// and unrecognized tokens resolve to nil, meaning every date matches.
func ResolveDateRange(dateRange string, now time.Time) DatePredicate {
	switch {
	case dateRange == "":
		return nil
	case dateRange == types.DateRangeToday:
		y, m, d := now.Date()
		return func(date time.Time) bool {
			dy, dm, dd := date.In(now.Location()).Date()
			return y == dy && m == dm && d == dd
		}
	case strings.HasPrefix(dateRange, types.CustomRangePrefix):
		start, end, ok := types.ParseCustomRange(dateRange)
		if !ok {
			return nil
		}
		return func(date time.Time) bool {
			return !date.Before(start) && !date.After(end)
		}
	}
	days, ok := rangeDays[dateRange]
	if !ok {
		return nil
	}
	return func(date time.Time) bool {
		elapsed := DaysElapsed(date, now)
		return elapsed >= 0 && elapsed <= days
	}
}

// DaysElapsed counts whole days from date to now, negative for future dates.
func DaysElapsed(date, now time.Time) int {
	diff := now.Sub(date)
	if diff < 0 {
		return -int((-diff + day - 1) / day)
	}
	return int(diff / day)
}
