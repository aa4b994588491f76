// Package pipeline composes preprocessing, OCR, normalization and
// classification into a single screenshot analysis.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"go-screen-interpreter/internal/observer"
	"go-screen-interpreter/internal/ocr"
	"go-screen-interpreter/internal/preprocess"
	"go-screen-interpreter/pkg/models"
)

// DecodeError means the uploaded bytes are not an image
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Normalizer cleans recognized text; empty output means nothing significant
type Normalizer interface {
	Normalize(text string) string
}

// Classifier interprets normalized text
type Classifier interface {
	Classify(ctx context.Context, text string) models.AnalysisResult
}

type requestIDKey struct{}

// WithRequestID tags ctx so pipeline events can be correlated with a request
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Pipeline is safe for concurrent use; every dependency is read-only
type Pipeline struct {
	preprocessor preprocess.Preprocessor
	recognizer   ocr.Recognizer
	normalizer   Normalizer
	classifier   Classifier
	events       observer.Subject
}

// New creates a pipeline. events may be nil.
func New(
	preprocessor preprocess.Preprocessor,
	recognizer ocr.Recognizer,
	normalizer Normalizer,
	classifier Classifier,
	events observer.Subject,
) *Pipeline {
	return &Pipeline{
		preprocessor: preprocessor,
		recognizer:   recognizer,
		normalizer:   normalizer,
		classifier:   classifier,
		events:       events,
	}
}

// Analyze decodes raw image bytes and interprets the text they contain.
// Only undecodable input and OCR engine faults are errors; poor or empty
// reads are ordinary results.
func (p *Pipeline) Analyze(ctx context.Context, raw []byte) (models.AnalysisResult, error) {
	start := time.Now()
	p.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Metadata: map[string]interface{}{"bytes": len(raw)}})

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		derr := &DecodeError{Err: err}
		p.fail(ctx, start, derr)
		return models.AnalysisResult{}, derr
	}
	return p.run(ctx, start, img, format)
}

// AnalyzeImage interprets an already decoded image
func (p *Pipeline) AnalyzeImage(ctx context.Context, img image.Image) (models.AnalysisResult, error) {
	start := time.Now()
	p.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted})
	return p.run(ctx, start, img, "")
}

func (p *Pipeline) run(ctx context.Context, start time.Time, img image.Image, format string) (models.AnalysisResult, error) {
	prepared := p.preprocessor.Preprocess(img)

	rec, err := p.recognizer.Recognize(ctx, prepared)
	if err != nil {
		p.fail(ctx, start, err)
		return models.AnalysisResult{}, err
	}
	if rec.FellBack() {
		p.publish(ctx, observer.AnalysisEvent{
			EventType:  observer.OCRFallback,
			Confidence: rec.Confidence,
			Metadata:   map[string]interface{}{"profile": rec.Profile},
		})
	}

	result := p.interpret(ctx, rec)
	result.Confidence = rec.Confidence

	metadata := map[string]interface{}{
		"ocr_attempts": rec.Attempts,
		"ocr_profile":  rec.Profile,
	}
	if format != "" {
		metadata["format"] = format
	}
	p.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		ProcessingTime: time.Since(start),
		Success:        true,
		Kind:           string(result.Kind),
		Confidence:     rec.Confidence,
		Metadata:       metadata,
	})
	return result, nil
}

// interpret applies the terminal short-circuits before classification
func (p *Pipeline) interpret(ctx context.Context, rec ocr.Recognition) models.AnalysisResult {
	if rec.Confidence < ocr.MinConfidence {
		return models.LowConfidence()
	}
	text := strings.TrimSpace(p.normalizer.Normalize(rec.Text))
	if text == "" {
		return models.Insignificant()
	}
	return p.classifier.Classify(ctx, text)
}

func (p *Pipeline) fail(ctx context.Context, start time.Time, err error) {
	p.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
}

func (p *Pipeline) publish(ctx context.Context, event observer.AnalysisEvent) {
	if p.events == nil {
		return
	}
	event.RequestID = requestID(ctx)
	p.events.NotifyObservers(ctx, event)
}
