package search

import (
	"slices"
)

type Trie struct {
	Root *Node
}

// Node holds the phrases whose words end here.
type Node struct {
	Children map[rune]*Node
	Phrases  []string
}

func NewTrie() *Trie {
	return &Trie{
		Root: &Node{
			Children: make(map[rune]*Node),
		},
	}
}

func (t *Trie) Insert(word Token, phrase string) {
	node := t.Root
	for _, r := range word {
		if _, ok := node.Children[r]; !ok {
			node.Children[r] = &Node{
				Children: make(map[rune]*Node),
			}
		}
		node = node.Children[r]
	}
	if !slices.Contains(node.Phrases, phrase) {
		node.Phrases = append(node.Phrases, phrase)
	}
}

// InsertPhrase indexes every word of phrase.
func (t *Trie) InsertPhrase(phrase string) {
	SplitWords(phrase, func(word Token) bool {
		t.Insert(word, phrase)
		return true
	})
}

func (t *Trie) find(prefix Token) *Node {
	node := t.Root
	for _, r := range prefix {
		child, ok := node.Children[r]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// FindMatches returns the distinct phrases containing a word starting with prefix, sorted.
func (t *Trie) FindMatches(prefix Token) []string {
	node := t.find(prefix)
	if node == nil {
		return nil
	}
	seen := map[string]struct{}{}
	matches := make([]string, 0)
	t.collect(node, seen, &matches)
	slices.Sort(matches)
	return matches
}

func (t *Trie) collect(node *Node, seen map[string]struct{}, matches *[]string) {
	for _, phrase := range node.Phrases {
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		*matches = append(*matches, phrase)
	}
	for _, child := range node.Children {
		t.collect(child, seen, matches)
	}
}
