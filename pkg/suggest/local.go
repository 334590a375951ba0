package suggest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matst80/slask-intel/pkg/search"
	"github.com/matst80/slask-intel/pkg/types"
)

// LocalBackend completes queries from the titles, tags, sources and tactics of the loaded records.
type LocalBackend struct {
	mu   sync.RWMutex
	trie *search.Trie
}

func NewLocalBackend(records []types.Record) *LocalBackend {
	l := &LocalBackend{}
	l.Rebuild(records)
	return l
}

func (l *LocalBackend) Rebuild(records []types.Record) {
	trie := search.NewTrie()
	for _, r := range records {
		for _, phrase := range append([]string{r.Title, r.Source, r.Tactic}, r.Tags...) {
			if phrase != "" {
				trie.InsertPhrase(phrase)
			}
		}
	}
	l.mu.Lock()
	l.trie = trie
	l.mu.Unlock()
}

// Suggest completes the last term and keeps phrases containing the earlier
// terms. Phrases starting with the query come first.
func (l *LocalBackend) Suggest(_ context.Context, query string) ([]string, error) {
	terms := search.Terms(query)
	if len(terms) == 0 {
		return []string{}, nil
	}
	last := search.NormalizeWord(terms[len(terms)-1])
	if last == "" {
		return []string{}, nil
	}
	l.mu.RLock()
	candidates := l.trie.FindMatches(last)
	l.mu.RUnlock()

	normalizedQuery := strings.Join(terms, " ")
	ret := make([]string, 0, len(candidates))
	for _, phrase := range candidates {
		if search.ContainsAll(search.NormalizeText(phrase), terms[:len(terms)-1]) {
			ret = append(ret, phrase)
		}
	}
	slices.SortStableFunc(ret, func(a, b string) int {
		ap := strings.HasPrefix(search.NormalizeText(a), normalizedQuery)
		bp := strings.HasPrefix(search.NormalizeText(b), normalizedQuery)
		switch {
		case ap && !bp:
			return -1
		case bp && !ap:
			return 1
		}
		return strings.Compare(a, b)
	})
	return ret, nil
}
