package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch is returned when a page could not be rendered.
	ErrFetch = errors.New("page fetch failed")
	// ErrFetchTimeout is a fetch that ran out of time. It also matches ErrFetch.
	ErrFetchTimeout = fmt.Errorf("%w: timed out", ErrFetch)
	// ErrExtraction is returned when a rendered page lacks the expected structure.
	ErrExtraction = errors.New("required page structure not found")
	// ErrImageDownload is returned when image bytes could not be retrieved.
	ErrImageDownload = errors.New("image download failed")
	// ErrImageNotFound is returned by image stores for unknown keys.
	ErrImageNotFound = errors.New("image not found")
	// ErrStore is returned when the durable medium could not be read or written.
	ErrStore = errors.New("store operation failed")
	// ErrCorruptCollection is returned when a stored collection cannot be decoded.
	ErrCorruptCollection = fmt.Errorf("%w: corrupt collection document", ErrStore)
)
