package extractor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/user/counterteams-service/internal/repository"
)

type fakeDownloader struct {
	mu      sync.Mutex
	failing map[string]bool
	calls   []string
}

func (d *fakeDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, url)
	for suffix := range d.failing {
		if strings.HasSuffix(url, suffix) {
			return nil, "", fmt.Errorf("%w: %s", repository.ErrImageDownload, url)
		}
	}
	return []byte("bytes:" + url), "image/png", nil
}

func (d *fakeDownloader) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type memoryImages struct {
	mu    sync.Mutex
	items map[string][]byte
	types map[string]string
}

func newMemoryImages() *memoryImages {
	return &memoryImages{items: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryImages) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryImages) Get(ctx context.Context, key string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[key]
	if !ok {
		return nil, "", repository.ErrImageNotFound
	}
	return data, m.types[key], nil
}

func (m *memoryImages) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok, nil
}
