package types

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseRecordDate parses the timestamp formats found in the record feeds.
// Values without a zone are read as UTC.
func ParseRecordDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDateOnly(value string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	return err == nil
}

// ParseCustomRange parses "custom:<start>:<end>". Timestamps may contain colons,
// so every split point is tried until both halves parse. A date-only end covers
// the whole day.
func ParseCustomRange(value string) (start, end time.Time, ok bool) {
	body, found := strings.CutPrefix(value, CustomRangePrefix)
	if !found {
		return
	}
	for i := 0; i < len(body); i++ {
		if body[i] != ':' {
			continue
		}
		left, right := body[:i], body[i+1:]
		s, okStart := ParseRecordDate(left)
		e, okEnd := ParseRecordDate(right)
		if !okStart || !okEnd {
			continue
		}
		if isDateOnly(right) {
			e = e.Add(24*time.Hour - time.Nanosecond)
		}
		if e.Before(s) {
			return time.Time{}, time.Time{}, false
		}
		return s, e, true
	}
	return
}

// FormatDate renders a record date for display, "Unknown" when it can not be parsed.
func FormatDate(value string) string {
	t, ok := ParseRecordDate(value)
	if !ok {
		if strings.TrimSpace(value) == "" {
			return "Unknown"
		}
		return value
	}
	if isDateOnly(value) {
		return t.Format(time.DateOnly)
	}
	return t.Format("2006-01-02 15:04")
}

func Truncate(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	if length <= 3 {
		return string(runes[:length])
	}
	return string(runes[:length-3]) + "..."
}
