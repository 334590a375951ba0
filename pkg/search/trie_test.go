package search

import "testing"

func TestTrie(t *testing.T) {
	trie := NewTrie()
	trie.InsertPhrase("Hello world")
	trie.InsertPhrase("Hell gate")
	trie.InsertPhrase("Cat")
	trie.InsertPhrase("Dog")
	trie.InsertPhrase("Doggo")
	trie.InsertPhrase("Doggy dog")

	if matching := trie.FindMatches("wor"); len(matching) != 1 || matching[0] != "Hello world" {
		t.Errorf("Expected world prefix to find Hello world, got %v", matching)
	}
	matching := trie.FindMatches("dog")
	if len(matching) != 3 {
		t.Errorf("Expected 3 phrases for dog, got %v", matching)
	}

	matching = trie.FindMatches("he")
	if len(matching) != 2 || matching[0] != "Hell gate" {
		t.Errorf("Expected 2 sorted phrases for he, got %v", matching)
	}
	if trie.FindMatches("x") != nil {
		t.Error("Expected no matches for x")
	}
}
