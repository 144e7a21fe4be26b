package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore persists blobs on disk under a base directory.
type LocalStore struct {
	baseDir   string
	publicURL string
}

// NewLocalStore ensures the base directory exists and returns a handle.
func NewLocalStore(baseDir, publicURL string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Upload copies the blob into the base directory under the given key.
func (s *LocalStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error) {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare upload directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	written, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &UploadResult{Key: key, URL: s.URL(key), Size: written}, nil
}

// Delete removes a stored blob if present.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// URL returns the stable public URL for a key.
func (s *LocalStore) URL(key string) string {
	return s.publicURL + "/" + key
}

func (s *LocalStore) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
