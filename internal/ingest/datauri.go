// Package ingest turns browser captures into raw image bytes.
package ingest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty       = errors.New("image data is empty")
	ErrNotBase64   = errors.New("data URI is not base64 encoded")
	ErrBadEncoding = errors.New("image data is not valid base64")
)

// DataURI is a decoded "data:" URL
type DataURI struct {
	MediaType string
	Data      []byte
}

// DecodeDataURI accepts "data:<type>;base64,<payload>" as produced by
// canvas.toDataURL. A bare base64 payload is also accepted, in which case the
// media type is left empty.
func DecodeDataURI(s string) (DataURI, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DataURI{}, ErrEmpty
	}

	var uri DataURI
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, rest, ok := strings.Cut(s[len("data:"):], ",")
		if !ok {
			return DataURI{}, fmt.Errorf("data URI has no payload")
		}
		params := strings.Split(header, ";")
		if params[len(params)-1] != "base64" {
			return DataURI{}, ErrNotBase64
		}
		uri.MediaType = strings.ToLower(strings.TrimSpace(params[0]))
		payload = rest
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return DataURI{}, ErrEmpty
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return DataURI{}, fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}
	uri.Data = data
	return uri, nil
}

// decodeBase64 tolerates missing padding and the URL-safe alphabet
func decodeBase64(payload string) ([]byte, error) {
	trimmed := strings.TrimRight(payload, "=")
	if strings.ContainsAny(trimmed, "-_") {
		return base64.RawURLEncoding.DecodeString(trimmed)
	}
	return base64.RawStdEncoding.DecodeString(trimmed)
}
