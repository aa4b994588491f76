package classifier

import (
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Tokenizer splits narrative text into sentences and words
type Tokenizer interface {
	SplitSentences(text string) []string
	SplitWords(text string) []string
}

// PunktTokenizer uses the pre-trained English Punkt model for sentence
// boundaries, so abbreviations like "Dr." do not end a sentence
type PunktTokenizer struct {
	sentences *sentences.DefaultSentenceTokenizer
}

func NewPunktTokenizer() (*PunktTokenizer, error) {
	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &PunktTokenizer{sentences: t}, nil
}

func (t *PunktTokenizer) SplitSentences(text string) []string {
	var out []string
	for _, s := range t.sentences.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SplitWords separates words from punctuation. Apostrophes stay inside the
// word so contractions are not mistaken for two alphanumeric words.
func (t *PunktTokenizer) SplitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
