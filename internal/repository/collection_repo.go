package repository

import (
	"context"

	"github.com/user/counterteams-service/internal/entity"
)

// CollectionRepository persists the whole boss collection as one document.
type CollectionRepository interface {
	// Load returns the stored collection. Absent data is an empty collection;
	// undecodable data yields ErrCorruptCollection.
	Load(ctx context.Context) (entity.Collection, error)
	// Save overwrites the stored collection in one step, so readers never see a
	// partially written document.
	Save(ctx context.Context, c entity.Collection) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
