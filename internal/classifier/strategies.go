package classifier

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"go-screen-interpreter/internal/logger"
	"go-screen-interpreter/internal/lookup"
	"go-screen-interpreter/internal/mathexpr"
	"go-screen-interpreter/pkg/models"
)

// Strategy turns normalized text into one kind of interpretation
type Strategy interface {
	Interpret(ctx context.Context, text string) models.AnalysisResult
	GetStrategyName() string
}

// EvaluateFunc solves a math expression; mathexpr.Evaluate in production
type EvaluateFunc func(ctx context.Context, text string) (mathexpr.Solution, error)

// DefaultLookupTimeout bounds the context lookup for a solved expression
const DefaultLookupTimeout = 5 * time.Second

// MathStrategy solves the text and decorates the solution with looked-up context
type MathStrategy struct {
	evaluate EvaluateFunc
	lookup   lookup.Lookuper
	timeout  time.Duration
}

// NewMathStrategy creates a math strategy. A nil lookup always yields the
// default context; a non-positive timeout selects DefaultLookupTimeout.
func NewMathStrategy(evaluate EvaluateFunc, lookuper lookup.Lookuper, timeout time.Duration) *MathStrategy {
	if evaluate == nil {
		evaluate = mathexpr.Evaluate
	}
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &MathStrategy{evaluate: evaluate, lookup: lookuper, timeout: timeout}
}

func (s *MathStrategy) Interpret(ctx context.Context, text string) models.AnalysisResult {
	solution, err := s.evaluate(ctx, text)
	if err != nil {
		fields := logrus.Fields{"expression": text}
		var evalErr *mathexpr.EvaluationError
		if errors.As(err, &evalErr) {
			fields["failure"] = evalErr.Kind
		}
		logger.WithFields(fields).WithError(err).Debug("Math evaluation failed")
		return models.MathUnsolved(text)
	}
	return models.MathSolved(text, solution.Text, s.lookupContext(ctx, text))
}

// lookupContext never fails: any lookup problem yields the default text
func (s *MathStrategy) lookupContext(ctx context.Context, query string) string {
	if s.lookup == nil {
		return models.DefaultMathContext
	}
	lctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.lookup.Lookup(lctx, query)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"query":   query,
			"timeout": s.timeout.String(),
		}).WithError(err).Warn("Context lookup failed, using default")
		return models.DefaultMathContext
	}
	return answer.Context(models.DefaultMathContext)
}

func (s *MathStrategy) GetStrategyName() string {
	return "math"
}

// SummaryStrategy keeps the leading sentences of the text
type SummaryStrategy struct {
	tokenizer Tokenizer
	sentences int
}

func NewSummaryStrategy(tokenizer Tokenizer, sentences int) *SummaryStrategy {
	return &SummaryStrategy{tokenizer: tokenizer, sentences: sentences}
}

func (s *SummaryStrategy) Interpret(ctx context.Context, text string) models.AnalysisResult {
	sentences := s.tokenizer.SplitSentences(text)
	if len(sentences) > s.sentences {
		sentences = sentences[:s.sentences]
	}
	return models.Summary(strings.Join(sentences, " "))
}

func (s *SummaryStrategy) GetStrategyName() string {
	return "summary"
}

// KeywordStrategy picks the first long alphanumeric words
type KeywordStrategy struct {
	tokenizer Tokenizer
	limit     int
	minLength int
}

// NewKeywordStrategy keeps up to limit words at least minLength runes long
func NewKeywordStrategy(tokenizer Tokenizer, limit, minLength int) *KeywordStrategy {
	return &KeywordStrategy{tokenizer: tokenizer, limit: limit, minLength: minLength}
}

func (s *KeywordStrategy) Interpret(ctx context.Context, text string) models.AnalysisResult {
	keywords := make([]string, 0, s.limit)
	for _, w := range s.tokenizer.SplitWords(text) {
		if len(keywords) == s.limit {
			break
		}
		if utf8.RuneCountInString(w) >= s.minLength && isAlphanumeric(w) {
			keywords = append(keywords, w)
		}
	}
	return models.Keywords(keywords)
}

func (s *KeywordStrategy) GetStrategyName() string {
	return "keywords"
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
