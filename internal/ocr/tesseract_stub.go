//go:build !cgo

package ocr

import (
	"context"
	"image"
)

type unavailableEngine struct{}

// NewTesseractEngine returns an engine that always faults: Tesseract needs cgo
func NewTesseractEngine(language, tessdataPrefix string) (Engine, error) {
	return unavailableEngine{}, nil
}

func (unavailableEngine) Recognize(ctx context.Context, img image.Image, profile Profile) (Result, error) {
	return Result{}, ErrEngineUnavailable
}
