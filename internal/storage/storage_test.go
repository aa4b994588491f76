package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestNewScreenshotName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		mediaType string
		pattern   string
	}{
		{"image/png", `^screenshot_1700000000_[0-9a-f]{8}\.png$`},
		{"image/jpeg", `^screenshot_1700000000_[0-9a-f]{8}\.jpg$`},
		{"", `^screenshot_1700000000_[0-9a-f]{8}\.png$`},
		{"image/webp", `^screenshot_1700000000_[0-9a-f]{8}\.webp$`},
	}
	for _, tt := range tests {
		name := NewScreenshotName(now, tt.mediaType)
		if !regexp.MustCompile(tt.pattern).MatchString(name) {
			t.Errorf("NewScreenshotName(%q) = %q, want match %s", tt.mediaType, name, tt.pattern)
		}
	}

	if NewScreenshotName(now, "") == NewScreenshotName(now, "") {
		t.Error("names within the same second must differ")
	}
}

func TestLocalStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}

	data := []byte("png bytes")
	location, err := store.Save(context.Background(), "screenshot_1_abcd1234.png", data)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if location != filepath.Join(dir, "screenshot_1_abcd1234.png") {
		t.Errorf("unexpected location %q", location)
	}
	got, err := os.ReadFile(location)
	if err != nil || !bytes.Equal(got, data) {
		t.Errorf("stored content mismatch: %q, %v", got, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files should not be left behind, found %d entries", len(entries))
	}
}

func TestLocalStore_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}
	location, err := store.Save(context.Background(), "../../escape.png", []byte("x"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if filepath.Dir(location) != dir {
		t.Errorf("screenshot escaped the store directory: %q", location)
	}
}

func TestLocalStore_CancelledContext(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "a.png", []byte("x")); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestNewLocalStore_EmptyDir(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Error("expected an error for an empty directory")
	}
}

func TestNopStore(t *testing.T) {
	location, err := NewNopStore().Save(context.Background(), "a.png", []byte("x"))
	if err != nil || location != "" {
		t.Errorf("NopStore.Save() = %q, %v", location, err)
	}
}

func TestNewAzureStore(t *testing.T) {
	if _, err := NewAzureStore("account", "not base64!", "screenshots"); err == nil {
		t.Error("expected an error for an invalid shared key")
	}

	store, err := NewAzureStore("account", "c2VjcmV0", "screenshots")
	if err != nil {
		t.Fatalf("NewAzureStore() error: %v", err)
	}
	az := store.(*AzureStore)
	if got := az.blobURL("screenshot_1_ab.png"); got != "https://account.blob.core.windows.net/screenshots/screenshot_1_ab.png" {
		t.Errorf("unexpected blob URL %q", got)
	}
}
