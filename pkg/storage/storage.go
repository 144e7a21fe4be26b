package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/campus-vault/campusvault-api/pkg/config"
)

// UploadResult describes a stored blob.
type UploadResult struct {
	Key  string
	URL  string
	Size int64
}

// BlobStore abstracts the blob backend used for resource files.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New selects the blob backend based on configuration.
func New(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Type {
	case "minio":
		return NewMinioStore(cfg.Minio)
	case "local", "":
		return NewLocalStore(cfg.LocalDir, cfg.PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
