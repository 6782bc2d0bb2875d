package repository

import "context"

// ImageRepository defines the byte store for cached images, keyed by content address.
type ImageRepository interface {
	// Put stores the bytes for key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the stored bytes and content type. Unknown keys yield ErrImageNotFound.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Exists reports whether key is already stored.
	Exists(ctx context.Context, key string) (bool, error)
}
