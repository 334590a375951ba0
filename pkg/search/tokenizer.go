package search

import (
	"strings"
	"unicode"
)

type Token string

var commonIssues = map[rune]rune{
	'ö': 'o',
	'ä': 'a',
	'å': 'a',
	'á': 'a',
	'à': 'a',
	'â': 'a',
	'é': 'e',
	'è': 'e',
	'ê': 'e',
	'ë': 'e',
	'í': 'i',
	'ï': 'i',
	'î': 'i',
	'ó': 'o',
	'ô': 'o',
	'ú': 'u',
	'ü': 'u',
	'û': 'u',
	'ÿ': 'y',
	'ç': 'c',
	'ñ': 'n',
	'ß': 's',
	'æ': 'a',
	'ø': 'o',
}

// NormalizeText lower cases the text and folds common latin diacritics.
// Punctuation and spacing are kept so substring checks behave like the input.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		l := unicode.ToLower(r)
		if replacement, ok := commonIssues[l]; ok {
			l = replacement
		}
		b.WriteRune(l)
	}
	return b.String()
}

// Terms splits a normalized query on whitespace.
func Terms(query string) []string {
	return strings.Fields(NormalizeText(query))
}

// SearchableText joins the fields a free text query is matched against.
func SearchableText(title, description string, tags []string) string {
	parts := make([]string, 0, len(tags)+2)
	parts = append(parts, title, description)
	parts = append(parts, tags...)
	return NormalizeText(strings.Join(parts, " "))
}

// ContainsAll reports whether every term is a substring of text.
func ContainsAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

func isSplitRune(chr rune) bool {
	return unicode.IsSpace(chr) || chr == ',' || chr == ':' || chr == '.' || chr == '!' || chr == '?' ||
		chr == ';' || chr == '(' || chr == ')' || chr == '[' || chr == ']' || chr == '{' || chr == '}' ||
		chr == '"' || chr == '\'' || chr == '/'
}

// NormalizeWord keeps letters and digits of a single word.
func NormalizeWord(text string) Token {
	ret := make([]rune, 0, len(text))
	for _, r := range NormalizeText(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			ret = append(ret, r)
		}
	}
	return Token(ret)
}

// SplitWords calls onWord for every normalized word in text until it returns false.
func SplitWords(text string, onWord func(word Token) bool) {
	for _, part := range strings.FieldsFunc(text, isSplitRune) {
		word := NormalizeWord(part)
		if len(word) == 0 {
			continue
		}
		if !onWord(word) {
			return
		}
	}
}
