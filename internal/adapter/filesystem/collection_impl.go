package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

// CollectionRepoImpl keeps the collection in a single JSON file.
type CollectionRepoImpl struct {
	path string
}

// NewCollectionRepo creates a file-backed collection store at path.
func NewCollectionRepo(path string) *CollectionRepoImpl {
	return &CollectionRepoImpl{path: path}
}

func (r *CollectionRepoImpl) Load(ctx context.Context) (entity.Collection, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return entity.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", repository.ErrStore, r.path, err)
	}
	c, err := entity.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrCorruptCollection, r.path, err)
	}
	return c, nil
}

func (r *CollectionRepoImpl) Save(ctx context.Context, c entity.Collection) error {
	data, err := c.MarshalDocument()
	if err != nil {
		return fmt.Errorf("%w: encode collection: %v", repository.ErrStore, err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %v", repository.ErrStore, r.path, err)
	}
	// renameio replaces the file in one rename, so readers see either the old
	// or the new document.
	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", repository.ErrStore, r.path, err)
	}
	return nil
}

// Ping checks that the directory holding the collection is usable.
func (r *CollectionRepoImpl) Ping(ctx context.Context) error {
	_, err := os.Stat(r.path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
