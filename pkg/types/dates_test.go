package types

import (
	"testing"
	"time"
)

func TestParseRecordDate(t *testing.T) {
	valid := []string{
		"2024-03-01",
		"2024-03-01T10:20:30",
		"2024-03-01T10:20:30Z",
		"2024-03-01T10:20:30.123456+02:00",
		"2024-03-01 10:20:30",
	}
	for _, v := range valid {
		if _, ok := ParseRecordDate(v); !ok {
			t.Errorf("Expected %q to parse", v)
		}
	}
	for _, v := range []string{"", "yesterday", "03/01/2024"} {
		if _, ok := ParseRecordDate(v); ok {
			t.Errorf("Expected %q not to parse", v)
		}
	}
}

func TestParseCustomRange(t *testing.T) {
	start, end, ok := ParseCustomRange("custom:2024-01-01:2024-01-31")
	if !ok {
		t.Fatal("Expected date only range to parse")
	}
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start %v", start)
	}
	if end.Before(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("Expected end to cover the whole day, got %v", end)
	}

	start, end, ok = ParseCustomRange("custom:2024-01-01T10:00:00Z:2024-01-02T08:30:00Z")
	if !ok {
		t.Fatal("Expected timestamp range to parse")
	}
	if start.Hour() != 10 || end.Hour() != 8 || end.Minute() != 30 {
		t.Errorf("Unexpected bounds %v %v", start, end)
	}

	for _, v := range []string{"custom:", "custom:2024-01-01", "custom:nope:2024-01-01", "custom:2024-02-01:2024-01-01", "week"} {
		if _, _, ok := ParseCustomRange(v); ok {
			t.Errorf("Expected %q to be rejected", v)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2024-03-01T10:20:30Z"); got != "2024-03-01 10:20" {
		t.Errorf("Unexpected %q", got)
	}
	if got := FormatDate("2024-03-01"); got != "2024-03-01" {
		t.Errorf("Unexpected %q", got)
	}
	if got := FormatDate(""); got != "Unknown" {
		t.Errorf("Unexpected %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Unexpected %q", got)
	}
	if got := Truncate("a long description", 10); got != "a long ..." {
		t.Errorf("Unexpected %q", got)
	}
}
