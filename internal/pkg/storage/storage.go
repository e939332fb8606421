package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned by Get when the key does not exist
var ErrNotFound = errors.New("stored file not found")

// Storage defines the interface for file storage backends.
type Storage interface {
	// Put stores reader under key, replacing any existing object.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get opens a stored object. Returns ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key. Returns nil if the file doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a file given its key.
	GetURL(key string) string
}

// Config selects and configures a backend
type Config struct {
	Driver string // "local" or "s3"

	LocalDir     string
	LocalBaseURL string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// New builds the backend named by cfg.Driver
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
