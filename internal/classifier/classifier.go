// Package classifier decides what normalized screenshot text is (math or
// narrative) and interprets it accordingly.
package classifier

import (
	"context"
	"strings"

	"go-screen-interpreter/pkg/models"
)

// MathSymbols are the characters that route text to the math strategy
const MathSymbols = "0123456789+-*/=()x^"

const (
	// SummaryMinSentences is the sentence count from which text is summarized
	SummaryMinSentences = 3
	// SummarySentences is how many leading sentences a summary keeps
	SummarySentences = 2
	// MaxKeywords bounds the keyword list
	MaxKeywords = 5
	// MinKeywordLength is the shortest word considered a keyword
	MinKeywordLength = 4
)

// Classifier routes text to a strategy. It holds no per-call state, so the
// same input always yields the same result apart from the lookup context.
type Classifier struct {
	tokenizer Tokenizer
	math      Strategy
	summary   Strategy
	keywords  Strategy
}

// New creates a classifier with the standard summary and keyword strategies
func New(tokenizer Tokenizer, math Strategy) *Classifier {
	return NewWithStrategies(
		tokenizer,
		math,
		NewSummaryStrategy(tokenizer, SummarySentences),
		NewKeywordStrategy(tokenizer, MaxKeywords, MinKeywordLength),
	)
}

func NewWithStrategies(tokenizer Tokenizer, math, summary, keywords Strategy) *Classifier {
	return &Classifier{tokenizer: tokenizer, math: math, summary: summary, keywords: keywords}
}

// IsMath reports whether text contains any math symbol
func IsMath(text string) bool {
	return strings.ContainsAny(text, MathSymbols)
}

// Route returns the strategy that will interpret text
func (c *Classifier) Route(text string) Strategy {
	if IsMath(text) {
		return c.math
	}
	if len(c.tokenizer.SplitSentences(text)) >= SummaryMinSentences {
		return c.summary
	}
	return c.keywords
}

func (c *Classifier) Classify(ctx context.Context, text string) models.AnalysisResult {
	return c.Route(text).Interpret(ctx, text)
}
