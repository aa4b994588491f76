package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go-screen-interpreter/pkg/validation"
)

// Screenshot store backends
const (
	StoreLocal = "local"
	StoreAzure = "azure"
	StoreNone  = "none"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	// Context lookup for solved math
	LookupURL     string
	LookupTimeout time.Duration

	// OCR engine
	OCRLanguage    string
	OCRWorkers     int
	TessdataPrefix string

	// Text normalization. NoiseWords nil means the built-in set.
	DictionaryPath string
	NoiseWords     []string

	// Screenshot audit store
	ScreenshotStore       string
	ScreenshotDir         string
	AzureStorageAccount   string
	AzureStorageKey       string
	AzureStorageContainer string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 20*1024*1024), // 20MB, data URIs inflate by a third
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),

		LookupURL:     getEnvOrDefault("LOOKUP_URL", "https://api.duckduckgo.com/"),
		LookupTimeout: parseDurationOrDefault("LOOKUP_TIMEOUT", 5*time.Second),

		OCRLanguage:    getEnvOrDefault("OCR_LANGUAGE", "eng"),
		OCRWorkers:     int(parseIntOrDefault("OCR_WORKERS", int64(runtime.NumCPU()))),
		TessdataPrefix: os.Getenv("TESSDATA_PREFIX"),

		DictionaryPath: os.Getenv("DICTIONARY_PATH"),
		NoiseWords:     parseListOrNil("NOISE_WORDS"),

		ScreenshotStore:       strings.ToLower(getEnvOrDefault("SCREENSHOT_STORE", StoreLocal)),
		ScreenshotDir:         getEnvOrDefault("SCREENSHOT_DIR", "screenshots"),
		AzureStorageAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureStorageContainer: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "screenshots"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.LookupTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, lookup=%s)", c.RequestTimeout, c.LookupTimeout)
	}
	if err := validation.NewURLValidator().ValidateEndpoint(c.LookupURL); err != nil {
		return fmt.Errorf("invalid LOOKUP_URL: %w", err)
	}
	if c.OCRWorkers <= 0 {
		return fmt.Errorf("OCR_WORKERS must be > 0 (got %d)", c.OCRWorkers)
	}
	switch c.ScreenshotStore {
	case StoreLocal, StoreNone:
	case StoreAzure:
		if c.AzureStorageAccount == "" || c.AzureStorageKey == "" {
			return fmt.Errorf("SCREENSHOT_STORE=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return fmt.Errorf("invalid SCREENSHOT_STORE: %q", c.ScreenshotStore)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseListOrNil splits a comma separated value; unset returns nil so callers can
// tell "not configured" from "configured empty".
func parseListOrNil(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
