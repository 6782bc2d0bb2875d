package nats

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/user/counterteams-service/internal/repository"
)

const contentTypeHeader = "Content-Type"

// ImageRepoImpl stores image bytes in a JetStream object store.
type ImageRepoImpl struct {
	obs jetstream.ObjectStore
}

// NewImageRepo opens or creates the object store bucket.
func NewImageRepo(ctx context.Context, js jetstream.JetStream, bucket string) (*ImageRepoImpl, error) {
	obs, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: "cached counter images",
	})
	if err != nil {
		return nil, fmt.Errorf("open object store %s: %w", bucket, err)
	}
	return &ImageRepoImpl{obs: obs}, nil
}

func (r *ImageRepoImpl) Put(ctx context.Context, key string, data []byte, contentType string) error {
	meta := jetstream.ObjectMeta{
		Name:    key,
		Headers: nats.Header{contentTypeHeader: []string{contentType}},
	}
	if _, err := r.obs.Put(ctx, meta, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: object put %s: %v", repository.ErrStore, key, err)
	}
	return nil
}

func (r *ImageRepoImpl) Get(ctx context.Context, key string) ([]byte, string, error) {
	info, err := r.obs.GetInfo(ctx, key)
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return nil, "", repository.ErrImageNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: object info %s: %v", repository.ErrStore, key, err)
	}
	data, err := r.obs.GetBytes(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("%w: object get %s: %v", repository.ErrStore, key, err)
	}
	return data, info.Headers.Get(contentTypeHeader), nil
}

func (r *ImageRepoImpl) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.obs.GetInfo(ctx, key)
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
