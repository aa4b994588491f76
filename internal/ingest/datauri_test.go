package ingest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0xfb, 0xff}
	std := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name      string
		input     string
		mediaType string
	}{
		{"canvas output", "data:image/png;base64," + std, "image/png"},
		{"extra parameters", "data:image/jpeg;name=frame.jpg;base64," + std, "image/jpeg"},
		{"bare payload", std, ""},
		{"unpadded", "data:image/png;base64," + base64.RawStdEncoding.EncodeToString(raw), "image/png"},
		{"url alphabet", "data:image/png;base64," + base64.URLEncoding.EncodeToString(raw), "image/png"},
		{"wrapped lines", "data:image/png;base64," + std[:4] + "\n" + std[4:], "image/png"},
		{"upper-case type", "data:IMAGE/PNG;base64," + std, "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDataURI(tt.input)
			if err != nil {
				t.Fatalf("DecodeDataURI() error: %v", err)
			}
			if got.MediaType != tt.mediaType {
				t.Errorf("MediaType = %q, want %q", got.MediaType, tt.mediaType)
			}
			if !bytes.Equal(got.Data, raw) {
				t.Errorf("Data = %v, want %v", got.Data, raw)
			}
		})
	}
}

func TestDecodeDataURI_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmpty},
		{"blank", "   ", ErrEmpty},
		{"no payload after comma", "data:image/png;base64,", ErrEmpty},
		{"not base64", "data:image/svg+xml,<svg/>", ErrNotBase64},
		{"bad characters", "data:image/png;base64,@@@@", ErrBadEncoding},
		{"bad bare payload", "not*base64", ErrBadEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURI(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeDataURI(%q) error = %v, want %v", tt.input, err, tt.want)
			}
		})
	}

	if _, err := DecodeDataURI("data:image/png;base64"); err == nil {
		t.Error("expected an error for a data URI without a comma")
	}
}
