package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

const collectionKey = "counterteams:collection"

// CollectionRepoImpl stores the whole collection under a single Redis key.
// SET replaces the value atomically, so readers never see a partial document.
type CollectionRepoImpl struct {
	client *redis.Client
}

// NewCollectionRepo creates a new instance of CollectionRepoImpl.
func NewCollectionRepo(client *redis.Client) *CollectionRepoImpl {
	return &CollectionRepoImpl{client: client}
}

func (r *CollectionRepoImpl) Load(ctx context.Context) (entity.Collection, error) {
	data, err := r.client.Get(ctx, collectionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", repository.ErrStore, err)
	}
	c, err := entity.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorruptCollection, err)
	}
	return c, nil
}

func (r *CollectionRepoImpl) Save(ctx context.Context, c entity.Collection) error {
	data, err := c.MarshalDocument()
	if err != nil {
		return fmt.Errorf("%w: encode collection: %v", repository.ErrStore, err)
	}
	if err := r.client.Set(ctx, collectionKey, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", repository.ErrStore, err)
	}
	return nil
}

func (r *CollectionRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
