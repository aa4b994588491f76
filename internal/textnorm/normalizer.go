package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/codycollier/wer"
	"github.com/sirupsen/logrus"

	"go-screen-interpreter/internal/logger"
)

// MinKeptRatio is the share of corrected tokens that noise filtering must keep;
// below it the filtered text is discarded in favour of the corrected text
const MinKeptRatio = 0.5

// Report describes one normalization run
type Report struct {
	Original  []string
	Corrected []string
	Filtered  []string
	Text      string
	// UsedFallback is set when filtering removed too much and the corrected
	// tokens were used instead
	UsedFallback bool
	// CorrectionRate is the word error rate between OCR tokens and corrected
	// tokens, i.e. how much the speller rewrote
	CorrectionRate float64
}

// Normalizer spell-corrects OCR text and drops capture-UI boilerplate.
// It holds only read-only state and is safe for concurrent use.
type Normalizer struct {
	speller Speller
	noise   NoiseSet
}

func NewNormalizer(speller Speller, noise NoiseSet) *Normalizer {
	return &Normalizer{speller: speller, noise: noise}
}

// Normalize returns the cleaned text; an empty result means nothing significant was read
func (n *Normalizer) Normalize(text string) string {
	return n.Report(text).Text
}

// Report runs normalization and returns every intermediate step
func (n *Normalizer) Report(text string) Report {
	original := strings.Fields(text)

	corrected := make([]string, len(original))
	for i, tok := range original {
		corrected[i] = n.correct(tok)
	}

	// Noise matches the whole token, so "hi," is content, not boilerplate
	filtered := make([]string, 0, len(corrected))
	for _, tok := range corrected {
		if !n.noise.Contains(tok) {
			filtered = append(filtered, tok)
		}
	}

	r := Report{Original: original, Corrected: corrected, Filtered: filtered}
	if float64(len(filtered)) < float64(len(corrected))*MinKeptRatio {
		r.UsedFallback = true
		r.Text = strings.Join(corrected, " ")
	} else {
		r.Text = strings.Join(filtered, " ")
	}

	if len(original) > 0 {
		r.CorrectionRate, _ = wer.WER(original, corrected)
	}

	logger.WithFields(logrus.Fields{
		"tokens":          len(original),
		"kept":            len(filtered),
		"used_fallback":   r.UsedFallback,
		"correction_rate": r.CorrectionRate,
	}).Debug("Text normalized")

	return r
}

// correct replaces an unknown word with the best suggestion. Surrounding
// punctuation is preserved; tokens containing digits or symbols and noise
// words pass through untouched.
func (n *Normalizer) correct(token string) string {
	start, end := coreBounds(token)
	if start >= end {
		return token
	}
	word := token[start:end]
	if !isAlphabetic(word) || n.noise.Contains(word) || n.speller.IsKnown(word) {
		return token
	}
	suggestions := n.speller.Suggest(word)
	if len(suggestions) == 0 {
		return token
	}
	return token[:start] + suggestions[0] + token[end:]
}

func coreBounds(token string) (int, int) {
	isWordRune := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	start := strings.IndexFunc(token, isWordRune)
	if start < 0 {
		return 0, 0
	}
	end := strings.LastIndexFunc(token, isWordRune)
	_, size := utf8.DecodeRuneInString(token[end:])
	return start, end + size
}
