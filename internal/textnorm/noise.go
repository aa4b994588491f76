package textnorm

import "strings"

// DefaultNoiseWords are the words the capture page's own prompt tends to
// leak into screenshots
var DefaultNoiseWords = []string{"hi", "my", "name", "mika"}

// NoiseSet is a read-only, case-insensitive word set
type NoiseSet struct {
	words map[string]struct{}
}

// NewNoiseSet builds a set from words; a nil slice yields DefaultNoiseWords
func NewNoiseSet(words []string) NoiseSet {
	if words == nil {
		words = DefaultNoiseWords
	}
	set := NoiseSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set.words[w] = struct{}{}
		}
	}
	return set
}

func (n NoiseSet) Contains(word string) bool {
	_, ok := n.words[strings.ToLower(word)]
	return ok
}

func (n NoiseSet) Len() int {
	return len(n.words)
}
