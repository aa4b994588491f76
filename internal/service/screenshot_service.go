package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "go-screen-interpreter/internal/errors"
	"go-screen-interpreter/internal/ingest"
	"go-screen-interpreter/internal/logger"
	"go-screen-interpreter/internal/ocr"
	"go-screen-interpreter/internal/pipeline"
	"go-screen-interpreter/internal/storage"
	"go-screen-interpreter/pkg/models"
)

// ResponseMessage is the fixed acknowledgement the capture page expects
const ResponseMessage = "Screenshot saved and analyzed"

// ScreenshotService handles one uploaded capture end to end
type ScreenshotService interface {
	AnalyzeScreenshot(ctx context.Context, req models.ScreenshotRequest) (*models.ScreenshotResponse, error)
}

// Analyzer is the pipeline capability the service needs
type Analyzer interface {
	Analyze(ctx context.Context, raw []byte) (models.AnalysisResult, error)
}

type screenshotService struct {
	analyzer Analyzer
	store    storage.ScreenshotStore
	now      func() time.Time
}

// NewScreenshotService creates a new screenshot service
func NewScreenshotService(analyzer Analyzer, store storage.ScreenshotStore) ScreenshotService {
	if store == nil {
		store = storage.NewNopStore()
	}
	return &screenshotService{analyzer: analyzer, store: store, now: time.Now}
}

// AnalyzeScreenshot decodes the data URI, keeps an audit copy and runs the pipeline.
// A failing store is logged and does not fail the request.
func (s *screenshotService) AnalyzeScreenshot(ctx context.Context, req models.ScreenshotRequest) (*models.ScreenshotResponse, error) {
	uri, err := ingest.DecodeDataURI(req.Image)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid image data", err)
	}
	if uri.MediaType != "" && !strings.HasPrefix(uri.MediaType, "image/") {
		return nil, apperrors.NewValidationError("unsupported media type "+uri.MediaType, nil)
	}

	name := storage.NewScreenshotName(s.now(), uri.MediaType)
	location, err := s.store.Save(ctx, name, uri.Data)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"store":    s.store.GetStoreName(),
			"filename": name,
		}).Warn("Failed to store screenshot")
	} else if location != "" {
		logger.WithFields(logrus.Fields{
			"location": location,
			"bytes":    len(uri.Data),
		}).Debug("Screenshot stored")
	}

	result, err := s.analyzer.Analyze(ctx, uri.Data)
	if err != nil {
		return nil, classifyError(err)
	}

	return &models.ScreenshotResponse{
		Message:    ResponseMessage,
		Filename:   name,
		Analysis:   result.Message,
		Kind:       result.Kind,
		Confidence: result.Confidence,
	}, nil
}

// classifyError maps pipeline failures onto application errors
func classifyError(err error) error {
	var decodeErr *pipeline.DecodeError
	var engineErr *ocr.EngineError
	switch {
	case errors.As(err, &decodeErr):
		return apperrors.NewDecodeError("uploaded data is not a decodable image", err)
	case errors.As(err, &engineErr):
		return apperrors.NewOCREngineError("OCR engine failed", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("analysis did not finish in time", err)
	default:
		return apperrors.NewInternalError("analysis failed", err)
	}
}
