package models

import (
	"fmt"
	"strings"
)

// ResultKind tags the shape of an AnalysisResult
type ResultKind string

const (
	KindLowConfidence ResultKind = "low_confidence"
	KindInsignificant ResultKind = "insignificant"
	KindMathSolved    ResultKind = "math_solved"
	KindMathUnsolved  ResultKind = "math_unsolved"
	KindSummary       ResultKind = "summary"
	KindKeywords      ResultKind = "keywords"
)

// DefaultMathContext is used when the context lookup yields nothing usable
const DefaultMathContext = "No additional context."

// AnalysisResult is the human-facing interpretation of one screenshot.
// Only the fields belonging to Kind are populated.
type AnalysisResult struct {
	Kind    ResultKind `json:"kind"`
	Message string     `json:"message"`

	Expression string   `json:"expression,omitempty"`
	Solution   string   `json:"solution,omitempty"`
	Context    string   `json:"context,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`

	// Confidence is the OCR confidence that led to this result
	Confidence float64 `json:"confidence"`
}

// LowConfidence is returned when OCR could not read the capture reliably
func LowConfidence() AnalysisResult {
	return AnalysisResult{
		Kind:    KindLowConfidence,
		Message: "OCR confidence low. Please retake screenshot with clearer text.",
	}
}

// Insignificant is returned when nothing remains after normalization
func Insignificant() AnalysisResult {
	return AnalysisResult{
		Kind:    KindInsignificant,
		Message: "Insignificant text.",
	}
}

// MathSolved reports a successfully evaluated expression
func MathSolved(expression, solution, context string) AnalysisResult {
	return AnalysisResult{
		Kind:       KindMathSolved,
		Message:    fmt.Sprintf("Math solution: %s. Context: %s", solution, context),
		Expression: expression,
		Solution:   solution,
		Context:    context,
	}
}

// MathUnsolved reports text that looked like math but could not be evaluated
func MathUnsolved(expression string) AnalysisResult {
	return AnalysisResult{
		Kind:       KindMathUnsolved,
		Message:    fmt.Sprintf("Math detected but unable to solve: %s", expression),
		Expression: expression,
	}
}

// Summary reports a positional summary of narrative text
func Summary(text string) AnalysisResult {
	return AnalysisResult{
		Kind:    KindSummary,
		Message: fmt.Sprintf("Summary: %s", text),
		Summary: text,
	}
}

// Keywords reports the salient words of a short narrative text
func Keywords(keywords []string) AnalysisResult {
	return AnalysisResult{
		Kind:     KindKeywords,
		Message:  fmt.Sprintf("Key topics: %s", strings.Join(keywords, " ")),
		Keywords: keywords,
	}
}
