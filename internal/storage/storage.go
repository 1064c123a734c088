// Package storage persists base64 image payloads as blobs and hands back a
// public URL for them.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"notas/internal/config"
	apperrors "notas/internal/errors"
)

const (
	fallbackExtension   = ".png"
	fallbackContentType = "image/png"
)

// Backend writes blob bytes under key and returns their public URL.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageStore decodes image payloads and stores them through a Backend.
type ImageStore struct {
	backend Backend
	newName func() string
}

// NewImageStore creates an image store on top of backend.
func NewImageStore(backend Backend) *ImageStore {
	return &ImageStore{backend: backend, newName: uuid.NewString}
}

// Store decodes payload, which is either raw base64 or a data URI
// ("data:image/png;base64,...."), and writes it into dir under a fresh
// unique name. Nothing is rolled back if a later step fails.
func (s *ImageStore) Store(ctx context.Context, payload, dir string) (string, error) {
	data, err := DecodePayload(payload)
	if err != nil {
		return "", err
	}

	ext, contentType := detect(data)
	key := path.Join(strings.Trim(dir, "/"), s.newName()+ext)

	url, err := s.backend.Put(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}
	return url, nil
}

// DecodePayload returns the bytes encoded in payload. Only the part after
// the first comma is decoded when a comma is present.
func DecodePayload(payload string) ([]byte, error) {
	if _, after, found := strings.Cut(payload, ","); found {
		payload = after
	}
	payload = strings.TrimSpace(payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients strip the padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImageDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", apperrors.ErrImageDecode)
	}
	return data, nil
}

// detect picks the file extension and content type. Anything that does not
// sniff as an image is stored as png, which is what clients send.
func detect(data []byte) (ext, contentType string) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") || mt.Extension() == "" {
		return fallbackExtension, fallbackContentType
	}
	return mt.Extension(), mt.String()
}

// NewBackend returns the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case config.StorageLocal, "":
		return NewLocalBackend(cfg.Root, cfg.PublicURL)
	case config.StorageS3:
		return NewS3Backend(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
