package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore implements ObjectStore using the local filesystem. Buckets
// map to subdirectories under the base path. This is the development
// implementation; production deployments use S3Store.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a new local filesystem object store rooted at
// basePath (created if it doesn't exist).
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Get opens the object stored at basePath/bucket/key.
func (s *LocalStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, bucket, key)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound(bucket, key)
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return file, nil
}
