package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalBlobStore writes documents to a directory on disk and returns URLs
// under the configured public base. It stands in for an object store.
type LocalBlobStore struct {
	dir     string
	baseURL string
}

// NewLocalBlobStore creates a blob store rooted at dir.
func NewLocalBlobStore(dir, baseURL string) *LocalBlobStore {
	return &LocalBlobStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Upload writes the document and returns its public URL.
func (s *LocalBlobStore) Upload(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/" + name, nil
}
