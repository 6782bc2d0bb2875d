package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/extractor"
	"github.com/user/counterteams-service/internal/repository"
	"github.com/user/counterteams-service/pkg/metrics"
)

var midMonth = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return midMonth }

func testBosses() []entity.Boss {
	return []entity.Boss{
		{ID: "giovanni", URL: "https://example.com/giovanni", HeaderStart: 2, HeaderEnd: 7, BodySkip: 1},
		{ID: "arlo", URL: "https://example.com/arlo", HeaderStart: 1, HeaderEnd: 8, BodySkip: 1},
	}
}

func newTestRefresher(renderer *fakeRenderer, store *memoryStore) *Refresher {
	stamp := entity.FormatTimestamp(midMonth)
	return NewRefresher(testBosses(), renderer, lineExtractor{stamp: stamp}, store, clock)
}

func TestRunIsolatesBossFailures(t *testing.T) {
	previous := entity.Entry{
		Title:       "Old Giovanni",
		URL:         "https://example.com/giovanni",
		Headers:     []string{"old"},
		Rows:        [][]string{{"old"}},
		LastUpdated: entity.FormatTimestamp(midMonth.Add(-30 * 24 * time.Hour)),
	}.Normalize()
	store := &memoryStore{data: entity.Collection{"giovanni": previous}}
	renderer := &fakeRenderer{
		errs:  map[string]error{"https://example.com/giovanni": repository.ErrFetchTimeout},
		pages: map[string]string{"https://example.com/arlo": "Arlo|H1,H2|a,b"},
	}
	before := testutil.ToFloat64(metrics.RefreshesTotal.WithLabelValues("giovanni", "failure", "timeout"))

	summary, err := newTestRefresher(renderer, store).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"arlo"}, summary.Refreshed)
	assert.Contains(t, summary.Failed, "giovanni")
	assert.True(t, summary.Persisted)
	assert.NotEmpty(t, summary.RunID)

	saved := store.snapshot()
	assert.Equal(t, previous, saved["giovanni"])
	assert.Equal(t, "Arlo", saved["arlo"].Title)
	assert.Equal(t, []string{"H1", "H2"}, saved["arlo"].Headers)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RefreshesTotal.WithLabelValues("giovanni", "failure", "timeout")))
}

func TestRunKeepsEntryOnExtractionFailure(t *testing.T) {
	store := &memoryStore{}
	renderer := &fakeRenderer{pages: map[string]string{
		"https://example.com/giovanni": "not a table",
		"https://example.com/arlo":     "Arlo|H|a",
	}}

	summary, err := newTestRefresher(renderer, store).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"arlo"}, summary.Refreshed)
	assert.Contains(t, summary.Failed["giovanni"], "required page structure not found")
	assert.NotContains(t, store.snapshot(), "giovanni")
}

func TestRunSkipsFreshEntriesUnlessForced(t *testing.T) {
	fresh := *completeEntry(midMonth.Add(-time.Hour))
	store := &memoryStore{data: entity.Collection{"giovanni": fresh, "arlo": fresh}}
	renderer := &fakeRenderer{pages: map[string]string{
		"https://example.com/giovanni": "Giovanni|H|a",
		"https://example.com/arlo":     "Arlo|H|a",
	}}
	refresher := newTestRefresher(renderer, store)

	summary, err := refresher.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"giovanni", "arlo"}, summary.Skipped)
	assert.Empty(t, summary.Refreshed)
	assert.Equal(t, 0, renderer.callCount())
	assert.Equal(t, 0, store.saves)

	summary, err = refresher.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"giovanni", "arlo"}, summary.Refreshed)
	assert.Equal(t, 2, renderer.callCount())
	assert.Equal(t, 1, store.saves)
}

func TestRunRejectsConcurrentTrigger(t *testing.T) {
	renderer := &fakeRenderer{
		pages:   map[string]string{"https://example.com/giovanni": "G|H|a", "https://example.com/arlo": "A|H|a"},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	refresher := newTestRefresher(renderer, &memoryStore{})

	done := make(chan error, 1)
	go func() {
		_, err := refresher.Run(context.Background(), true)
		done <- err
	}()
	<-renderer.entered

	_, err := refresher.Run(context.Background(), true)
	assert.ErrorIs(t, err, ErrRefreshInProgress)

	renderer.release <- struct{}{}
	<-renderer.entered
	renderer.release <- struct{}{}
	require.NoError(t, <-done)
}

func TestRunReportsSaveFailureAndRetriesPending(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("disk full")}
	renderer := &fakeRenderer{pages: map[string]string{
		"https://example.com/giovanni": "Giovanni|H|a",
		"https://example.com/arlo":     "Arlo|H|a",
	}}
	refresher := newTestRefresher(renderer, store)

	summary, err := refresher.Run(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrStore)
	assert.False(t, summary.Persisted)
	assert.Equal(t, []string{"giovanni", "arlo"}, summary.Refreshed)

	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()
	renderer.pages = map[string]string{}

	summary, err = refresher.Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, summary.Persisted)
	assert.Equal(t, []string{"giovanni", "arlo"}, summary.Skipped)
	assert.Equal(t, "Giovanni", store.snapshot()["giovanni"].Title)
}

func TestRunLoadFailures(t *testing.T) {
	t.Run("corrupt collection starts empty", func(t *testing.T) {
		store := &memoryStore{loadErr: repository.ErrCorruptCollection}
		renderer := &fakeRenderer{pages: map[string]string{
			"https://example.com/giovanni": "G|H|a",
			"https://example.com/arlo":     "A|H|a",
		}}
		summary, err := newTestRefresher(renderer, store).Run(context.Background(), false)
		require.NoError(t, err)
		assert.Len(t, summary.Refreshed, 2)
		assert.Equal(t, 1, store.saves)
	})

	t.Run("unreachable store aborts the run", func(t *testing.T) {
		store := &memoryStore{loadErr: repository.ErrStore}
		renderer := &fakeRenderer{}

		_, err := newTestRefresher(renderer, store).Run(context.Background(), false)
		assert.ErrorIs(t, err, repository.ErrStore)
		assert.Equal(t, 0, renderer.callCount())
		assert.Equal(t, 0, store.saves)
	})
}

func TestRunWithPageExtractor(t *testing.T) {
	page := `<html><body><h1>Giovanni</h1>
<h2>H0</h2><h2>H1</h2><h2>H2</h2><h2>H3</h2><h2>H4</h2><h2>H5</h2><h2>H6</h2><h2>H7</h2>
<table><tbody><tr><td>Counters List</td></tr></tbody></table>
<table><tbody><tr><td>Counters List</td></tr><tr><td>Mewtwo</td></tr></tbody></table>
</body></html>`
	store := &memoryStore{}
	renderer := &fakeRenderer{
		pages: map[string]string{"https://example.com/giovanni": page},
		errs:  map[string]error{"https://example.com/arlo": errors.New("browser crashed")},
	}
	refresher := NewRefresher(testBosses(), renderer, extractor.New(nil, clock), store, clock)

	summary, err := refresher.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"giovanni"}, summary.Refreshed)

	saved := store.snapshot()["giovanni"]
	assert.Equal(t, []string{"H2", "H3", "H4", "H5", "H6"}, saved.Headers)
	assert.Equal(t, [][]string{{"Mewtwo"}}, saved.Rows)
	assert.Equal(t, entity.FormatTimestamp(midMonth), saved.LastUpdated)
}

func TestRunKeepsCompleteEntryWhenPageIsIncomplete(t *testing.T) {
	stale := entity.Entry{
		Title:       "Giovanni Counters",
		URL:         "https://example.com/giovanni",
		Headers:     []string{"Persian", "Kingler", "Nidoking"},
		Rows:        [][]string{{"Machamp", "Lucario", "Garchomp"}},
		LastUpdated: entity.FormatTimestamp(midMonth.Add(-30 * 24 * time.Hour)),
	}
	store := &memoryStore{data: entity.Collection{"giovanni": stale}}
	incomplete := `<html><body><h2>A</h2><h2>B</h2><h2>C</h2><table><tbody>Counters List</tbody></table></body></html>`
	renderer := &fakeRenderer{pages: map[string]string{
		"https://example.com/giovanni": incomplete,
		"https://example.com/arlo":     incomplete,
	}}
	refresher := NewRefresher(testBosses(), renderer, extractor.New(nil, clock), store, clock)

	summary, err := refresher.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, summary.Refreshed)
	assert.Contains(t, summary.Failed, "giovanni")
	assert.Contains(t, summary.Failed, "arlo")

	saved := store.snapshot()
	assert.Equal(t, stale, saved["giovanni"])
	assert.NotContains(t, saved, "arlo")
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "timeout", errorType(repository.ErrFetchTimeout))
	assert.Equal(t, "fetch", errorType(repository.ErrFetch))
	assert.Equal(t, "extraction", errorType(repository.ErrExtraction))
	assert.Equal(t, "unknown", errorType(errors.New("boom")))
}
