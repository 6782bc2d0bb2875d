package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

const defaultCollectionName = "counter_teams"

const schema = `
	CREATE TABLE IF NOT EXISTS counter_collections (
		name       TEXT PRIMARY KEY,
		document   BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// CollectionRepoImpl keeps the collection document in one row. The document is
// stored as raw bytes so it round-trips unchanged.
type CollectionRepoImpl struct {
	db   *pgxpool.Pool
	name string
}

// NewCollectionRepo creates a new instance of CollectionRepoImpl.
func NewCollectionRepo(db *pgxpool.Pool) *CollectionRepoImpl {
	return &CollectionRepoImpl{db: db, name: defaultCollectionName}
}

// EnsureSchema creates the backing table if it does not exist.
func (r *CollectionRepoImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

func (r *CollectionRepoImpl) Load(ctx context.Context) (entity.Collection, error) {
	query := `SELECT document FROM counter_collections WHERE name = $1;`

	var document []byte
	err := r.db.QueryRow(ctx, query, r.name).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select collection: %v", repository.ErrStore, err)
	}

	c, err := entity.UnmarshalDocument(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorruptCollection, err)
	}
	return c, nil
}

// Save upserts the document in a single statement.
func (r *CollectionRepoImpl) Save(ctx context.Context, c entity.Collection) error {
	document, err := c.MarshalDocument()
	if err != nil {
		return fmt.Errorf("%w: encode collection: %v", repository.ErrStore, err)
	}

	query := `
		INSERT INTO counter_collections (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.db.Exec(ctx, query, r.name, document); err != nil {
		return fmt.Errorf("%w: upsert collection: %v", repository.ErrStore, err)
	}
	return nil
}

func (r *CollectionRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
