package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

const collectionKey = "collection"

// CollectionRepoImpl stores the collection as a single JetStream KeyValue entry.
type CollectionRepoImpl struct {
	kv jetstream.KeyValue
}

// NewCollectionRepo opens or creates the KeyValue bucket.
func NewCollectionRepo(ctx context.Context, js jetstream.JetStream, bucket string) (*CollectionRepoImpl, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "counter team collection",
		History:     5,
	})
	if err != nil {
		return nil, fmt.Errorf("open kv bucket %s: %w", bucket, err)
	}
	return &CollectionRepoImpl{kv: kv}, nil
}

func (r *CollectionRepoImpl) Load(ctx context.Context) (entity.Collection, error) {
	kve, err := r.kv.Get(ctx, collectionKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return entity.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: kv get: %v", repository.ErrStore, err)
	}
	c, err := entity.UnmarshalDocument(kve.Value())
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
	if _, err := r.kv.Put(ctx, collectionKey, data); err != nil {
		return fmt.Errorf("%w: kv put: %v", repository.ErrStore, err)
	}
	return nil
}

func (r *CollectionRepoImpl) Ping(ctx context.Context) error {
	if _, err := r.kv.Status(ctx); err != nil {
		return fmt.Errorf("%w: kv status: %v", repository.ErrStore, err)
	}
	return nil
}
