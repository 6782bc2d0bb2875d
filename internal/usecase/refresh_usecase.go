package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
	"github.com/user/counterteams-service/pkg/metrics"
)

// ErrRefreshInProgress is returned when a run is triggered while another one
// still owns the collection.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// EntryExtractor builds an entry from a rendered page.
type EntryExtractor interface {
	Extract(ctx context.Context, boss entity.Boss, document string) (*entity.Entry, error)
}

// Refresher re-extracts stale bosses and persists the collection. Only one run
// executes at a time.
type Refresher struct {
	bosses    []entity.Boss
	renderer  repository.RendererRepository
	extractor EntryExtractor
	store     repository.CollectionRepository
	now       func() time.Time

	running sync.Mutex
	// pending holds entries extracted by a run whose save failed. They are
	// merged into the next run so the work is not lost.
	pending entity.Collection
}

// NewRefresher creates a Refresher. now defaults to time.Now.
func NewRefresher(
	bosses []entity.Boss,
	renderer repository.RendererRepository,
	extractor EntryExtractor,
	store repository.CollectionRepository,
	now func() time.Time,
) *Refresher {
	if now == nil {
		now = time.Now
	}
	return &Refresher{
		bosses:    bosses,
		renderer:  renderer,
		extractor: extractor,
		store:     store,
		now:       now,
	}
}

// Run refreshes every boss whose entry is due, or all of them when force is
// set. Per-boss failures are reported in the summary and leave the previous
// entry untouched; only a store failure makes Run return an error, in which
// case the summary is still returned.
func (r *Refresher) Run(ctx context.Context, force bool) (entity.RefreshSummary, error) {
	if !r.running.TryLock() {
		metrics.RefreshRunsTotal.WithLabelValues("rejected").Inc()
		return entity.RefreshSummary{}, ErrRefreshInProgress
	}
	defer r.running.Unlock()

	summary := entity.RefreshSummary{
		RunID:     uuid.NewString(),
		Refreshed: []string{},
		Skipped:   []string{},
		Failed:    map[string]string{},
	}
	log := slog.With("run_id", summary.RunID)
	log.Info("Starting refresh run", "force", force)

	current, err := r.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCorruptCollection) {
			metrics.RefreshRunsTotal.WithLabelValues("persist_failed").Inc()
			return summary, fmt.Errorf("load collection: %w", err)
		}
		log.Warn("Stored collection is corrupt, starting from empty", "error", err)
		current = entity.Collection{}
	}
	next := r.mergePending(current)

	now := r.now()
	for _, boss := range r.bosses {
		var existing *entity.Entry
		if e, ok := next[boss.ID]; ok {
			existing = &e
		}
		if !force && !RefreshDue(now, existing) {
			metrics.RefreshesTotal.WithLabelValues(boss.ID, "skipped", "").Inc()
			summary.Skipped = append(summary.Skipped, boss.ID)
			continue
		}

		entry, err := r.refreshBoss(ctx, boss)
		if err != nil {
			log.Error("Refresh failed, keeping previous entry", "boss", boss.ID, "error", err)
			summary.Failed[boss.ID] = err.Error()
			continue
		}
		next[boss.ID] = *entry
		summary.Refreshed = append(summary.Refreshed, boss.ID)
	}

	if len(summary.Refreshed) == 0 && r.pending == nil {
		log.Info("Nothing refreshed, collection unchanged", "skipped", len(summary.Skipped), "failed", len(summary.Failed))
		summary.Persisted = true
		metrics.RefreshRunsTotal.WithLabelValues("persisted").Inc()
		return summary, nil
	}

	if err := r.store.Save(ctx, next); err != nil {
		r.pending = next
		metrics.RefreshRunsTotal.WithLabelValues("persist_failed").Inc()
		if !errors.Is(err, repository.ErrStore) {
			err = fmt.Errorf("%w: %v", repository.ErrStore, err)
		}
		log.Error("Failed to persist collection", "error", err)
		return summary, fmt.Errorf("save collection: %w", err)
	}
	r.pending = nil
	summary.Persisted = true
	metrics.RefreshRunsTotal.WithLabelValues("persisted").Inc()
	for _, id := range summary.Refreshed {
		metrics.LastRefreshTimestamp.WithLabelValues(id).Set(float64(now.Unix()))
	}

	log.Info("Refresh run finished", "refreshed", summary.Refreshed, "skipped", len(summary.Skipped), "failed", len(summary.Failed))
	return summary, nil
}

// mergePending overlays entries from a failed save onto the loaded collection,
// unless the store already holds something at least as new.
func (r *Refresher) mergePending(current entity.Collection) entity.Collection {
	next := current.Clone()
	for id, entry := range r.pending {
		stored, ok := next[id]
		if !ok || newer(entry, stored) {
			next[id] = entry
		}
	}
	return next
}

func newer(a, b entity.Entry) bool {
	at, aok := a.UpdatedAt()
	bt, bok := b.UpdatedAt()
	if !bok {
		return aok
	}
	return aok && at.After(bt)
}

func (r *Refresher) refreshBoss(ctx context.Context, boss entity.Boss) (*entity.Entry, error) {
	startTime := time.Now()
	defer func() {
		metrics.RefreshDuration.WithLabelValues(boss.ID).Observe(time.Since(startTime).Seconds())
	}()

	document, err := r.renderer.Render(ctx, boss.URL)
	if err != nil {
		if !errors.Is(err, repository.ErrFetch) {
			err = fmt.Errorf("%w: %v", repository.ErrFetch, err)
		}
		return nil, r.recordFailure(boss, fmt.Errorf("render %s: %w", boss.ID, err))
	}

	entry, err := r.extractor.Extract(ctx, boss, document)
	if err != nil {
		return nil, r.recordFailure(boss, fmt.Errorf("extract %s: %w", boss.ID, err))
	}

	metrics.RefreshesTotal.WithLabelValues(boss.ID, "success", "").Inc()
	slog.Info("Boss refreshed", "boss", boss.ID, "headers", len(entry.Headers), "rows", len(entry.Rows), "duration_ms", time.Since(startTime).Milliseconds())
	return entry, nil
}

func (r *Refresher) recordFailure(boss entity.Boss, err error) error {
	metrics.RefreshesTotal.WithLabelValues(boss.ID, "failure", errorType(err)).Inc()
	return err
}

func errorType(err error) string {
	switch {
	case errors.Is(err, repository.ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrFetch):
		return "fetch"
	case errors.Is(err, repository.ErrExtraction):
		return "extraction"
	default:
		return "unknown"
	}
}
