// Package scheduler runs the periodic historical sync.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Kavirubc/ticket-dedup/internal/clock"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Syncer performs one full sync of every tracked project.
type Syncer interface {
	SyncAll(ctx context.Context) []models.SyncStats
}

// Scheduler syncs once at start and then once per interval until its
// context is cancelled. A sync in flight is not interrupted; the loop
// stops at the next wait.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a scheduler. A nil clock uses real time.
func New(syncer Syncer, interval time.Duration, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		clock:    clk,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled and then returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	s.logger.Info("sync scheduler started", "interval", s.interval)
	for {
		s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("sync scheduler stopped")
			return nil
		case <-s.clock.After(s.interval):
		}

		// Cancellation and the timer can be ready together.
		if ctx.Err() != nil {
			s.logger.Info("sync scheduler stopped")
			return nil
		}
	}
}

// RunOnce performs one full sync and logs a summary.
func (s *Scheduler) RunOnce(ctx context.Context) []models.SyncStats {
	start := s.clock.Now()
	stats := s.syncer.SyncAll(ctx)

	var fetched, failed int
	for _, st := range stats {
		fetched += st.Fetched
		if st.Errors > 0 {
			failed++
		}
	}
	s.logger.Info("sync cycle finished",
		"projects", len(stats),
		"failed_projects", failed,
		"tickets", fetched,
		"started", start.Format(time.RFC3339))
	return stats
}
