// Package storage keeps an audit copy of every uploaded screenshot.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScreenshotStore persists uploaded captures. Save returns where the
// screenshot ended up (a path or URL), or "" when nothing was stored.
type ScreenshotStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	GetStoreName() string
}

// NewScreenshotName builds "screenshot_<unix>_<id>.<ext>". The random suffix
// keeps uploads within the same second apart.
func NewScreenshotName(now time.Time, mediaType string) string {
	id := uuid.New().String()[:8]
	return fmt.Sprintf("screenshot_%d_%s%s", now.Unix(), id, ExtensionFor(mediaType))
}

// ExtensionFor maps an image media type to a file extension, defaulting to .png
func ExtensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".png"
	}
}

// NopStore discards screenshots
type NopStore struct{}

func NewNopStore() ScreenshotStore {
	return NopStore{}
}

func (NopStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	return "", nil
}

func (NopStore) GetStoreName() string {
	return "none"
}
