package types

import (
	"log"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

// Query string keys of the deep link format.
const (
	KeySearch    = "search"
	KeySeverity  = "severity"
	KeySource    = "source"
	KeyTactic    = "tactic"
	KeyTags      = "tags"
	KeyDateRange = "dateRange"
	KeySortBy    = "sortBy"
	KeySortOrder = "sortOrder"
	KeyPage      = "page"
)

var decoder = schema.NewDecoder()
var encoder = schema.NewEncoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(TagSet{}, func(value string) reflect.Value {
		return reflect.ValueOf(TagSetFromString(value))
	})
	decoder.RegisterConverter(0, func(value string) reflect.Value {
		page, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || page < 1 {
			page = 1
		}
		return reflect.ValueOf(page)
	})

	encoder.RegisterEncoder(TagSet{}, func(v reflect.Value) string {
		return v.Interface().(TagSet).String()
	})
}

// EncodeFilterState flattens the state into query values. Empty facets are
// omitted, tags are comma joined and page is emitted whenever it is positive.
func EncodeFilterState(s FilterState) url.Values {
	values := url.Values{}
	if err := encoder.Encode(s, values); err != nil {
		log.Printf("Failed to encode filter state: %v", err)
	}
	return values
}

func EncodeFilterStateQuery(s FilterState) string {
	return EncodeFilterState(s).Encode()
}

// DecodeFilterState is the inverse of EncodeFilterState. Missing keys resolve to
// their defaults and malformed values are coerced instead of rejected.
func DecodeFilterState(values url.Values) FilterState {
	s := FilterState{}
	if err := decoder.Decode(&s, values); err != nil {
		log.Printf("Ignoring malformed filter query: %v", err)
	}
	s.Sanitize()
	return s
}

func FilterStateFromQuery(rawQuery string) FilterState {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		log.Printf("Failed to parse query %q: %v", rawQuery, err)
	}
	return DecodeFilterState(values)
}
