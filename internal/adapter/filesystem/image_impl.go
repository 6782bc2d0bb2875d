package filesystem

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/user/counterteams-service/internal/repository"
)

// ImageRepoImpl stores image bytes as files named by their key. The content
// type is derived from the key's extension.
type ImageRepoImpl struct {
	dir string
}

// NewImageRepo creates the image directory if needed.
func NewImageRepo(dir string) (*ImageRepoImpl, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageRepoImpl{dir: dir}, nil
}

func (r *ImageRepoImpl) path(key string) string {
	return filepath.Join(r.dir, filepath.Base(key))
}

func (r *ImageRepoImpl) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := renameio.WriteFile(r.path(key), data, 0o644); err != nil {
		return fmt.Errorf("%w: write image %s: %v", repository.ErrStore, key, err)
	}
	return nil
}

func (r *ImageRepoImpl) Get(ctx context.Context, key string) ([]byte, string, error) {
	data, err := os.ReadFile(r.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", repository.ErrImageNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: read image %s: %v", repository.ErrStore, key, err)
	}
	return data, contentTypeFor(key), nil
}

func (r *ImageRepoImpl) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(r.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
