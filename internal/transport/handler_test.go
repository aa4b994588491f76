package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-screen-interpreter/internal/config"
	apperrors "go-screen-interpreter/internal/errors"
	"go-screen-interpreter/internal/ocr"
	"go-screen-interpreter/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	resp   *models.ScreenshotResponse
	err    error
	got    models.ScreenshotRequest
	calls  int
	hasDDL bool
}

func (f *fakeService) AnalyzeScreenshot(ctx context.Context, req models.ScreenshotRequest) (*models.ScreenshotResponse, error) {
	f.calls++
	f.got = req
	_, f.hasDDL = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	return &resp, nil
}

type fakeMetrics struct{}

func (fakeMetrics) GetMetrics() map[string]interface{} {
	return map[string]interface{}{"total_analyses": int64(3)}
}

type fakePool struct{}

func (fakePool) GetStats() ocr.PoolStats { return ocr.PoolStats{Workers: 2, TotalJobs: 5} }

func testConfig() *config.Config {
	return &config.Config{RequestTimeout: time.Second, MaxRequestBodySize: 1024}
}

func okService() *fakeService {
	return &fakeService{resp: &models.ScreenshotResponse{
		Message:    "Screenshot saved and analyzed",
		Filename:   "screenshot_1_abcd1234.png",
		Analysis:   "Summary: First. Second.",
		Kind:       models.KindSummary,
		Confidence: 88,
	}}
}

func TestUploadScreenshot_Success(t *testing.T) {
	svc := okService()
	h := NewHandler(svc, nil, nil, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/upload-screenshot", strings.NewReader(`{"image":"data:image/png;base64,AAAA"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.ScreenshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Analysis != "Summary: First. Second." || resp.Message != "Screenshot saved and analyzed" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.RequestID != "req-42" || rec.Header().Get(RequestIDHeader) != "req-42" {
		t.Errorf("request id not propagated: body %q header %q", resp.RequestID, rec.Header().Get(RequestIDHeader))
	}
	if svc.got.Image != "data:image/png;base64,AAAA" {
		t.Errorf("service received %q", svc.got.Image)
	}
	if !svc.hasDDL {
		t.Error("the request timeout should be applied to the service context")
	}
}

func TestUploadScreenshot_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed JSON", `{"image":`, http.StatusBadRequest},
		{"missing image", `{}`, http.StatusBadRequest},
		{"too large", `{"image":"` + strings.Repeat("A", 2048) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := okService()
			h := NewHandler(svc, nil, nil, testConfig())

			req := httptest.NewRequest(http.MethodPost, "/upload-screenshot", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if svc.calls != 0 {
				t.Error("service must not be called for a rejected request")
			}
			var errResp models.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil || errResp.RequestID == "" {
				t.Errorf("expected an error body with a request id, got %s", rec.Body.String())
			}
		})
	}
}

func TestUploadScreenshot_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.NewValidationError("invalid image data", nil), http.StatusBadRequest},
		{"decode", apperrors.NewDecodeError("not an image", nil), http.StatusUnprocessableEntity},
		{"engine", apperrors.NewOCREngineError("OCR engine failed", nil), http.StatusBadGateway},
		{"timeout", apperrors.NewTimeoutError("too slow", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"plain deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"plain cancel", context.Canceled, http.StatusGatewayTimeout},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, nil, nil, testConfig())

			req := httptest.NewRequest(http.MethodPost, "/upload-screenshot", strings.NewReader(`{"image":"AAAA"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestCapturePage(t *testing.T) {
	h := NewHandler(okService(), nil, nil, testConfig())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	for _, want := range []string{"camera-dropdown", "/upload-screenshot", "screenshot-btn"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("page is missing %q", want)
		}
	}
}

func TestHealthAndStats(t *testing.T) {
	h := NewHandler(okService(), fakeMetrics{}, fakePool{}, testConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"available"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("a request id should be generated when none is supplied")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	var body struct {
		Analyses map[string]interface{} `json:"analyses"`
		Pool     ocr.PoolStats          `json:"ocr_pool"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid stats JSON: %v", err)
	}
	if body.Analyses["total_analyses"] != float64(3) || body.Pool.Workers != 2 || body.Pool.TotalJobs != 5 {
		t.Errorf("unexpected stats %+v", body)
	}
}
