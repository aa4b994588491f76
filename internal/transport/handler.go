package transport

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-screen-interpreter/internal/config"
	apperrors "go-screen-interpreter/internal/errors"
	"go-screen-interpreter/internal/logger"
	"go-screen-interpreter/internal/ocr"
	"go-screen-interpreter/internal/pipeline"
	"go-screen-interpreter/internal/service"
	"go-screen-interpreter/pkg/models"
)

// RequestIDHeader is echoed on every response
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

//go:embed web/index.html
var indexPage []byte

// MetricsSource exposes analysis counters
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

// PoolStatsSource exposes OCR worker pool counters
type PoolStatsSource interface {
	GetStats() ocr.PoolStats
}

// NewHandler builds the gin router. metrics and pool may be nil.
func NewHandler(svc service.ScreenshotService, metrics MetricsSource, pool PoolStatsSource, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestID(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/", capturePage)
	r.GET("/health", healthCheck)
	r.GET("/stats", stats(metrics, pool))
	r.POST("/upload-screenshot", uploadScreenshot(svc, cfg))

	return r
}

func capturePage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func uploadScreenshot(svc service.ScreenshotService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		id := c.GetString(requestIDKey)

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()
		ctx = pipeline.WithRequestID(ctx, id)

		log := logger.ForRequest(id)
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing screenshot upload")

		var req models.ScreenshotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.AnalyzeScreenshot(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "screenshot analysis failed", err)
			return
		}
		resp.RequestID = id

		log.WithFields(logrus.Fields{
			"filename":           resp.Filename,
			"kind":               resp.Kind,
			"confidence":         resp.Confidence,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Screenshot analyzed")

		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func stats(metrics MetricsSource, pool PoolStatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{}
		if metrics != nil {
			body["analyses"] = metrics.GetMetrics()
		}
		if pool != nil {
			body["ocr_pool"] = pool.GetStats()
		}
		c.JSON(http.StatusOK, body)
	}
}

// Middleware and helper functions

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Matches the service's timeout classification
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, code int, message string, err error) {
	id := c.GetString(requestIDKey)
	logger.ForRequest(id).WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:     http.StatusText(code),
		Message:   fmt.Sprintf("%s: %v", message, err),
		RequestID: id,
	})
}
