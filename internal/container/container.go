package container

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"go-screen-interpreter/internal/classifier"
	"go-screen-interpreter/internal/config"
	"go-screen-interpreter/internal/factory"
	"go-screen-interpreter/internal/logger"
	"go-screen-interpreter/internal/lookup"
	"go-screen-interpreter/internal/observer"
	"go-screen-interpreter/internal/ocr"
	"go-screen-interpreter/internal/pipeline"
	"go-screen-interpreter/internal/preprocess"
	"go-screen-interpreter/internal/service"
	"go-screen-interpreter/internal/storage"
	"go-screen-interpreter/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config            *config.Config
	store             storage.ScreenshotStore
	pool              *ocr.WorkerPool
	events            *observer.EventPublisher
	metrics           *observer.MetricsObserver
	pipeline          *pipeline.Pipeline
	screenshotService service.ScreenshotService
	handler           http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	factories := factory.NewComponentFactory(cfg)

	store, err := factories.StorageFactory.CreateStorage(factory.StorageType(cfg.ScreenshotStore))
	if err != nil {
		return nil, fmt.Errorf("failed to create screenshot store: %w", err)
	}

	engine, err := factories.EngineFactory.CreateEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	normalizer, err := factories.TextFactory.CreateNormalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}

	tokenizer, err := classifier.NewPunktTokenizer()
	if err != nil {
		return nil, fmt.Errorf("failed to create sentence tokenizer: %w", err)
	}

	pool := ocr.NewWorkerPool(cfg.OCRWorkers)
	pool.Start()
	recognizer := ocr.NewOrchestrator(ocr.NewPooledEngine(engine, pool))

	math := classifier.NewMathStrategy(nil, lookup.NewClient(cfg.LookupURL), cfg.LookupTimeout)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	p := pipeline.New(
		preprocess.NewPreprocessor(),
		recognizer,
		normalizer,
		classifier.New(tokenizer, math),
		events,
	)

	screenshotService := service.NewScreenshotService(p, store)
	handler := transport.NewHandler(screenshotService, metrics, pool, cfg)

	logger.WithFields(logrus.Fields{
		"store":       store.GetStoreName(),
		"ocr_workers": cfg.OCRWorkers,
		"language":    cfg.OCRLanguage,
		"lookup_url":  cfg.LookupURL,
	}).Info("Dependencies initialized")

	return &Container{
		config:            cfg,
		store:             store,
		pool:              pool,
		events:            events,
		metrics:           metrics,
		pipeline:          p,
		screenshotService: screenshotService,
		handler:           handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Pipeline returns the analysis pipeline
func (c *Container) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}

// Close stops the OCR pool and waits for pending event deliveries.
// Call it after the HTTP server has shut down.
func (c *Container) Close() {
	c.pool.Close()
	c.events.Wait()
}
