package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

type fakeRenderer struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	calls   []string
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRenderer) Render(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "", fmt.Errorf("%w: no page for %s", repository.ErrFetch, url)
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// lineExtractor treats the document as "title|header,header|cell,cell".
type lineExtractor struct {
	stamp string
}

func (e lineExtractor) Extract(ctx context.Context, boss entity.Boss, document string) (*entity.Entry, error) {
	parts := strings.Split(document, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: malformed test document", repository.ErrExtraction)
	}
	entry := entity.Entry{
		Title:       parts[0],
		URL:         boss.URL,
		Headers:     strings.Split(parts[1], ","),
		Rows:        [][]string{strings.Split(parts[2], ",")},
		LastUpdated: e.stamp,
	}.Normalize()
	return &entry, nil
}

type memoryStore struct {
	mu      sync.Mutex
	data    entity.Collection
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore) Load(ctx context.Context) (entity.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data.Clone(), nil
}

func (m *memoryStore) Save(ctx context.Context, c entity.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = c.Clone()
	return nil
}

func (m *memoryStore) snapshot() entity.Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone()
}

type memoryImages struct {
	items map[string][]byte
}

func (m *memoryImages) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.items[key] = data
	return nil
}

func (m *memoryImages) Get(ctx context.Context, key string) ([]byte, string, error) {
	data, ok := m.items[key]
	if !ok {
		return nil, "", repository.ErrImageNotFound
	}
	return data, "image/png", nil
}

func (m *memoryImages) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.items[key]
	return ok, nil
}
