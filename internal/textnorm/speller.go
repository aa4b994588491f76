package textnorm

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
)

// MaxEditDistance bounds how far a suggestion may be from the misspelled word
const MaxEditDistance = 2

// Speller is the spelling capability the normalizer needs
type Speller interface {
	IsKnown(word string) bool
	Suggest(word string) []string
}

// DictionarySpeller suggests dictionary words by edit distance
type DictionarySpeller struct {
	dict *Dictionary
}

func NewSpeller(dict *Dictionary) *DictionarySpeller {
	return &DictionarySpeller{dict: dict}
}

func (s *DictionarySpeller) IsKnown(word string) bool {
	return s.dict.IsKnown(word)
}

type candidate struct {
	word     string
	distance int
	freq     int
}

// Suggest returns known words within MaxEditDistance, closest first, then most
// frequent, then alphabetical. Only purely alphabetic words get suggestions.
func (s *DictionarySpeller) Suggest(word string) []string {
	if word == "" || !isAlphabetic(word) {
		return nil
	}
	lower := strings.ToLower(word)
	n := utf8.RuneCountInString(lower)

	var candidates []candidate
	s.dict.each(func(w string, freq int) {
		if abs(utf8.RuneCountInString(w)-n) > MaxEditDistance {
			return
		}
		if d := levenshtein.Distance(lower, w); d <= MaxEditDistance {
			candidates = append(candidates, candidate{word: w, distance: d, freq: freq})
		}
	})

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		return a.word < b.word
	})

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = matchCase(word, c.word)
	}
	return out
}

// matchCase copies the capitalization style of original onto suggestion
func matchCase(original, suggestion string) string {
	switch {
	case original == strings.ToUpper(original) && utf8.RuneCountInString(original) > 1:
		return strings.ToUpper(suggestion)
	case unicode.IsUpper(firstRune(original)):
		r, size := utf8.DecodeRuneInString(suggestion)
		return string(unicode.ToUpper(r)) + suggestion[size:]
	default:
		return suggestion
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
