package repository

import "context"

// DownloaderRepository fetches raw image bytes from the web.
type DownloaderRepository interface {
	// Download returns the body and its content type.
	Download(ctx context.Context, url string) ([]byte, string, error)
}
