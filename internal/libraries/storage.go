package libraries

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"prismora-backend/internal/config"
)

// FileStore persists uploaded files and returns the public URL.
type FileStore interface {
	Save(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// NewFileStore builds the backend named by cfg.Backend.
func NewFileStore(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalFileStore(cfg.UploadDir, cfg.PublicPrefix), nil
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET not set")
		}
		client, err := NewGCSClient(ctx)
		if err != nil {
			return nil, err
		}
		return NewGCSFileStore(client, cfg.GCSBucket), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Backend)
	}
}

// LocalFileStore writes files below Root and serves them under PublicPrefix.
type LocalFileStore struct {
	Root         string
	PublicPrefix string
}

func NewLocalFileStore(root, publicPrefix string) *LocalFileStore {
	return &LocalFileStore{Root: root, PublicPrefix: publicPrefix}
}

func (s *LocalFileStore) Save(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	clean := path.Clean("/" + objectPath)
	dest := filepath.Join(s.Root, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(s.PublicPrefix, "/") + clean, nil
}
