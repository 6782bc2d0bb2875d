package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/counterteams-service/internal/repository"
)

const imageKeyPrefix = "counterteams:image:"

// ImageRepoImpl stores each image as a hash holding its bytes and content type.
type ImageRepoImpl struct {
	client *redis.Client
}

// NewImageRepo creates a new instance of ImageRepoImpl.
func NewImageRepo(client *redis.Client) *ImageRepoImpl {
	return &ImageRepoImpl{client: client}
}

func (r *ImageRepoImpl) generateKey(key string) string {
	return imageKeyPrefix + key
}

func (r *ImageRepoImpl) Put(ctx context.Context, key string, data []byte, contentType string) error {
	err := r.client.HSet(ctx, r.generateKey(key), "data", data, "content_type", contentType).Err()
	if err != nil {
		return fmt.Errorf("%w: redis hset %s: %v", repository.ErrStore, key, err)
	}
	return nil
}

func (r *ImageRepoImpl) Get(ctx context.Context, key string) ([]byte, string, error) {
	fields, err := r.client.HGetAll(ctx, r.generateKey(key)).Result()
	if err != nil {
		return nil, "", fmt.Errorf("%w: redis hgetall %s: %v", repository.ErrStore, key, err)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, "", repository.ErrImageNotFound
	}
	return []byte(data), fields["content_type"], nil
}

func (r *ImageRepoImpl) Exists(ctx context.Context, key string) (bool, error) {
	// EXISTS returns 1 if the key exists, 0 otherwise.
	val, err := r.client.Exists(ctx, r.generateKey(key)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}
