package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"go-screen-interpreter/internal/logger"

	"github.com/sirupsen/logrus"
)

// MinConfidence is the aggregate confidence below which a read is not trusted
const MinConfidence = 40.0

// Stage identifies which attempt produced a Recognition
type Stage string

const (
	StagePrimary  Stage = "primary"
	StageFallback Stage = "fallback"
)

// Recognition is the final text and confidence of one orchestrated run
type Recognition struct {
	Text       string
	Confidence float64
	Stage      Stage
	Profile    string
	Attempts   int
}

// FellBack reports whether the fallback profile produced this recognition
func (r Recognition) FellBack() bool {
	return r.Stage == StageFallback
}

// Recognizer is what the pipeline depends on
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (Recognition, error)
}

// Orchestrator runs Primary -> [confidence < MinConfidence] -> Fallback -> Done.
// There is no loop: the engine is invoked at most twice per call.
type Orchestrator struct {
	engine   Engine
	primary  Profile
	fallback Profile
}

// NewOrchestrator uses the structured profile first and the automatic one as fallback
func NewOrchestrator(engine Engine) *Orchestrator {
	return &Orchestrator{
		engine:   engine,
		primary:  ProfileStructured,
		fallback: ProfileAutomatic,
	}
}

func (o *Orchestrator) Recognize(ctx context.Context, img image.Image) (Recognition, error) {
	primary, err := o.attempt(ctx, img, o.primary, StagePrimary)
	if err != nil {
		return Recognition{}, err
	}
	primary.Attempts = 1
	if primary.Confidence >= MinConfidence {
		return primary, nil
	}

	logger.WithFields(logrus.Fields{
		"profile":    o.primary.Name,
		"confidence": primary.Confidence,
	}).Debug("Low OCR confidence, retrying with fallback profile")

	// The primary text is discarded entirely; the fallback result stands
	// whatever its confidence.
	fallback, err := o.attempt(ctx, img, o.fallback, StageFallback)
	if err != nil {
		return Recognition{}, err
	}
	fallback.Attempts = 2
	return fallback, nil
}

func (o *Orchestrator) attempt(ctx context.Context, img image.Image, profile Profile, stage Stage) (Recognition, error) {
	result, err := o.engine.Recognize(ctx, img, profile)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Recognition{}, fmt.Errorf("%s ocr attempt: %w", stage, err)
		}
		return Recognition{}, &EngineError{Profile: profile.Name, Err: err}
	}
	return Recognition{
		Text:       strings.TrimSpace(result.Text),
		Confidence: result.Confidence(),
		Stage:      stage,
		Profile:    profile.Name,
	}, nil
}
