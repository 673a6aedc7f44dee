package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// SyncSource is the ticket source side of a sync.
type SyncSource interface {
	FetchTicket(ctx context.Context, key string) (*models.Ticket, error)
	ListTickets(ctx context.Context, project string, maxTickets int) ([]*models.Ticket, error)
}

// SyncStore is the write side of the local store used by a sync.
type SyncStore interface {
	Upsert(ctx context.Context, ticket *models.Ticket) error
	BulkUpsert(ctx context.Context, tickets []*models.Ticket) error
}

// TicketIndexer receives every ticket written by a sync.
type TicketIndexer interface {
	Index(ctx context.Context, tickets []*models.Ticket) (int, error)
}

// SyncOptions controls which projects are synced and how.
type SyncOptions struct {
	Projects   []string
	MaxTickets int
	// Concurrency bounds how many projects sync at once. Values below 1
	// sync one project at a time.
	Concurrency int
}

// Syncer pulls historical tickets from the ticket source into the local
// store.
type Syncer struct {
	source SyncSource
	store  SyncStore
	index  TicketIndexer
	opts   SyncOptions
	logger *slog.Logger
}

// NewSyncer creates a new syncer
func NewSyncer(source SyncSource, store SyncStore, opts SyncOptions, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Syncer{
		source: source,
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// WithIndex also feeds synced tickets to index.
func (s *Syncer) WithIndex(index TicketIndexer) *Syncer {
	s.index = index
	return s
}

// Projects returns the projects SyncAll covers.
func (s *Syncer) Projects() []string {
	return s.opts.Projects
}

// SyncAll syncs every configured project. A failing project is logged and
// recorded in its stats; the others still run. Stats follow the order of
// the configured projects.
func (s *Syncer) SyncAll(ctx context.Context) []models.SyncStats {
	stats := make([]models.SyncStats, len(s.opts.Projects))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, project := range s.opts.Projects {
		g.Go(func() error {
			if ctx.Err() != nil {
				stats[i] = models.SyncStats{Project: project, Errors: 1}
				return nil
			}
			st, err := s.SyncProject(ctx, project)
			if err != nil {
				s.logger.Error("project sync failed", "project", project, "error", err)
			}
			stats[i] = st
			return nil
		})
	}
	_ = g.Wait()

	return stats
}

// SyncProject fetches up to MaxTickets tickets of project and upserts
// them in one batch.
func (s *Syncer) SyncProject(ctx context.Context, project string) (stats models.SyncStats, err error) {
	start := time.Now()
	stats.Project = project
	defer func() {
		stats.DurationMs = int(time.Since(start).Milliseconds())
	}()

	s.logger.Info("syncing project", "project", project, "max_tickets", s.opts.MaxTickets)
	tickets, err := s.source.ListTickets(ctx, project, s.opts.MaxTickets)
	if err != nil {
		stats.Errors++
		return stats, fmt.Errorf("failed to fetch tickets for %s: %w", project, err)
	}
	stats.Fetched = len(tickets)

	if err := s.store.BulkUpsert(ctx, tickets); err != nil {
		stats.Errors++
		return stats, fmt.Errorf("failed to store tickets for %s: %w", project, err)
	}
	stats.Upserted = len(tickets)

	if s.index != nil && len(tickets) > 0 {
		indexed, err := s.index.Index(ctx, tickets)
		if err != nil {
			s.logger.Warn("semantic indexing failed", "project", project, "error", err)
		}
		if indexed < len(tickets) {
			stats.Errors += len(tickets) - indexed
		}
	}

	s.logger.Info("project synced", "project", project, "fetched", stats.Fetched, "upserted", stats.Upserted)
	return stats, nil
}

// Refresh re-fetches one ticket and stores it. A ticket the source does
// not know yields (nil, nil).
func (s *Syncer) Refresh(ctx context.Context, key string) (*models.Ticket, error) {
	ticket, err := s.source.FetchTicket(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	if ticket == nil {
		return nil, nil
	}

	if err := s.store.Upsert(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", key, err)
	}

	if s.index != nil {
		if _, err := s.index.Index(ctx, []*models.Ticket{ticket}); err != nil {
			s.logger.Warn("semantic indexing failed", "key", ticket.Key, "error", err)
		}
	}
	return ticket, nil
}
