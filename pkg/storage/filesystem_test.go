package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "test")
	require.NoError(t, err)

	addr, err := store.SaveStream("materials/upload.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "materials/upload.txt", addr)
	assert.True(t, store.Exists(addr))

	file, err := store.Open(addr)
	require.NoError(t, err)
	content, err := os.ReadFile(file.Name())
	require.NoError(t, file.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, store.Delete(addr))
	assert.False(t, store.Exists(addr))
}

func TestLocalStorageDeleteIsIdempotent(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "test")
	require.NoError(t, err)

	// Deleting a blob that was never written must succeed.
	require.NoError(t, store.Delete("materials/ghost.txt"))
	require.NoError(t, store.Delete("materials/ghost.txt"))
}

func TestLocalStorageNamespacesByEnvironment(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base, "staging")
	require.NoError(t, err)

	_, err = store.SaveStream("materials/a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "staging", "materials", "a.txt"), store.Path("materials/a.txt"))
}
