package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage persists blobs on disk under a base directory. The directory
// is namespaced by environment so parallel deployments never share blob
// addresses.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the namespaced base directory exists and returns a
// handle.
func NewLocalStorage(baseDir, env string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./blobs"
	}
	if env != "" {
		baseDir = filepath.Join(baseDir, env)
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies from reader into the target path and returns the blob
// address (the relative path).
func (s *LocalStorage) SaveStream(path string, r io.Reader) (string, error) {
	abs := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("prepare blob directory: %w", err)
	}
	file, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write blob stream: %w", err)
	}
	return path, nil
}

// Open returns a read-only handle for the stored blob.
func (s *LocalStorage) Open(path string) (*os.File, error) {
	file, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("open blob file: %w", err)
	}
	return file, nil
}

// Delete removes a stored blob. Deleting an absent blob is not an error, so
// the operation is safe to repeat.
func (s *LocalStorage) Delete(path string) error {
	if err := os.Remove(s.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob file: %w", err)
	}
	return nil
}

// Exists reports whether a blob is present at the given address.
func (s *LocalStorage) Exists(path string) bool {
	_, err := os.Stat(s.resolve(path))
	return err == nil
}

// Path exposes the underlying absolute path for an address.
func (s *LocalStorage) Path(path string) string {
	return s.resolve(path)
}

func (s *LocalStorage) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.baseDir, path)
}
