package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
	"github.com/user/counterteams-service/internal/usecase"
)

// Runner performs one refresh run.
type Runner interface {
	RefreshNow(ctx context.Context, force bool) (entity.RefreshSummary, error)
}

// Scheduler triggers periodic staleness checks. The refresher decides per
// boss whether anything is actually re-extracted.
type Scheduler struct {
	runner   Runner
	store    repository.CollectionRepository
	interval time.Duration
}

func New(runner Runner, store repository.CollectionRepository, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		store:    store,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled and any in-flight run has returned.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	if s.collectionEmpty(ctx) {
		slog.Info("Stored collection is empty, refreshing at startup")
		s.tick(ctx)
	}

	c.Start()
	slog.Info("Scheduler started", "interval", s.interval.String())

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	summary, err := s.runner.RefreshNow(ctx, false)
	if errors.Is(err, usecase.ErrRefreshInProgress) {
		slog.Info("Scheduled refresh skipped, another run is in progress")
		return
	}
	if err != nil {
		slog.Error("Scheduled refresh failed", "run_id", summary.RunID, "error", err)
		return
	}
	slog.Info("Scheduled refresh finished",
		"run_id", summary.RunID,
		"refreshed", len(summary.Refreshed),
		"skipped", len(summary.Skipped),
		"failed", len(summary.Failed),
	)
}

// collectionEmpty treats an unreadable store as empty so a fresh deployment
// with a corrupt file still gets populated.
func (s *Scheduler) collectionEmpty(ctx context.Context) bool {
	c, err := s.store.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load collection at startup", "error", err)
		return true
	}
	return len(c) == 0
}

// cronLogger routes cron's internal logging into slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
