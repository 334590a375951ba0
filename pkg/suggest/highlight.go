package suggest

import (
	"regexp"
	"strings"
)

// Segment is a piece of a suggestion, Match marks text that matched the query.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Highlight splits text around case insensitive occurrences of the query terms.
func Highlight(text, query string) []Segment {
	terms := strings.Fields(query)
	if len(terms) == 0 || text == "" {
		return []Segment{{Text: text}}
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	re := regexp.MustCompile("(?i)(" + strings.Join(quoted, "|") + ")")

	ret := make([]Segment, 0)
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			ret = append(ret, Segment{Text: text[last:loc[0]]})
		}
		ret = append(ret, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		ret = append(ret, Segment{Text: text[last:]})
	}
	return ret
}
