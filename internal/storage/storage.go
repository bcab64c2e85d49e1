// Package storage stores media objects under opaque keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fbclone/internal/config"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("storage: object not found")

// Storage is the object store behind uploaded media.
type Storage interface {
	// Put stores r under key. size is -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns the object. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// URL resolves key to something a client can fetch, valid for at least expires.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// New builds the backend selected by MEDIA_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendLocal:
		return NewLocalStorage(LocalConfig{
			BasePath:  cfg.MediaLocalDir,
			PublicURL: cfg.MediaPublicURL,
		})
	case config.MediaBackendS3:
		return NewS3Storage(ctx, S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
			PublicURL:       cfg.MediaPublicURL,
		})
	}
	return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
}
