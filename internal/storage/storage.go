package storage

import (
	"context"
	"io"

	"github.com/mbecker/postal/internal"
)

// ObjectStore defines the interface for fetching bulk datasets by bucket
// and key. Implementations can use the local filesystem or S3-compatible
// object storage.
type ObjectStore interface {
	// Get retrieves an object. Returns an io.ReadCloser that must be
	// closed by the caller.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// NewObjectStore creates an ObjectStore implementation based on
// configuration. Returns LocalStore for "local" provider, S3Store for "s3".
func NewObjectStore(cfg internal.StorageConfig) (ObjectStore, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStore(cfg.LocalPath)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
