// Package ocr recognizes text in preprocessed captures.
//
// Engine is the raw capability (Tesseract in production). Orchestrator drives
// it with a structured profile first and falls back to automatic page
// segmentation exactly once when the aggregate confidence is too low.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// Tesseract page segmentation modes used by the profiles
const (
	PageSegAuto        = 3
	PageSegSingleBlock = 6
)

// EngineModeDefault asks Tesseract for the best available engine
const EngineModeDefault = 3

// Profile is a named OCR configuration expressing layout assumptions
type Profile struct {
	Name        string
	EngineMode  int
	PageSegMode int
}

var (
	// ProfileStructured assumes a single uniform block of text
	ProfileStructured = Profile{Name: "structured", EngineMode: EngineModeDefault, PageSegMode: PageSegSingleBlock}
	// ProfileAutomatic lets the engine segment an arbitrary layout
	ProfileAutomatic = Profile{Name: "automatic", EngineMode: EngineModeDefault, PageSegMode: PageSegAuto}
)

// Token is one recognized word. Confidence is nil when the engine gave no score.
type Token struct {
	Text       string
	Confidence *float64
}

// Result is the output of a single engine invocation
type Result struct {
	Text   string
	Tokens []Token
}

// Confidence is the mean of all present token scores, 0 when none are present
func (r Result) Confidence() float64 {
	var sum float64
	var n int
	for _, tok := range r.Tokens {
		if tok.Confidence == nil {
			continue
		}
		sum += *tok.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Engine recognizes text in a bitmap under a profile
type Engine interface {
	Recognize(ctx context.Context, img image.Image, profile Profile) (Result, error)
}

// ErrEngineUnavailable is returned when the binary was built without an OCR backend
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// EngineError wraps a fault of the engine itself, as opposed to a poor read
type EngineError struct {
	Profile string
	Err     error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr engine failed with %s profile: %v", e.Profile, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Score is a convenience for building tokens
func Score(v float64) *float64 {
	return &v
}
