//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine with the gosseract client
type TesseractEngine struct {
	language       string
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine for one language
func NewTesseractEngine(language, tessdataPrefix string) (Engine, error) {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{
		language:       language,
		tessdataPrefix: tessdataPrefix,
		clientFactory:  gosseract.NewClient,
	}, nil
}

// Recognize uses a fresh client per call; gosseract clients are not safe for concurrent use.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, profile Profile) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("encode image: %w", err)
	}

	client := e.clientFactory()
	defer client.Close()

	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(e.language); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(profile.PageSegMode)); err != nil {
		return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text without word boxes means no scores, which reads as confidence 0
		return Result{Text: text}, nil
	}

	tokens := make([]Token, 0, len(boxes))
	for _, box := range boxes {
		tok := Token{Text: box.Word}
		if box.Confidence >= 0 {
			tok.Confidence = Score(box.Confidence)
		}
		tokens = append(tokens, tok)
	}

	return Result{Text: text, Tokens: tokens}, nil
}
