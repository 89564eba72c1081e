package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker/postal/internal/storage"
)

func TestLocalStore_Get(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "addresses"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "addresses", "batch.csv"), []byte("street,city,state,zip\n"), 0644))

	store, err := storage.NewLocalStore(base)
	require.NoError(t, err)

	obj, err := store.Get(context.Background(), "addresses", "batch.csv")
	require.NoError(t, err)
	defer obj.Close()

	content, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, "street,city,state,zip\n", string(content))
}

func TestLocalStore_Get_NotFound(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "addresses", "missing.csv")

	require.Error(t, err)
	var storageErr *storage.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "not_found", storageErr.ErrorCode())
}
