package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Kavirubc/ticket-dedup/internal/clock"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// LocalStore is the subset of the local store used by search.
type LocalStore interface {
	Search(ctx context.Context, term string, limit int) ([]*models.Ticket, error)
	Upsert(ctx context.Context, ticket *models.Ticket) error
}

// LiveSource is the subset of the ticket source used by search.
type LiveSource interface {
	FetchTicket(ctx context.Context, key string) (*models.Ticket, error)
	SearchTickets(ctx context.Context, query string, maxResults int) ([]*models.Ticket, error)
}

// Searcher handles ad-hoc searches across the local store and the live source
type Searcher struct {
	store    LocalStore
	source   LiveSource
	projects []string
	clock    clock.Clock
	logger   *slog.Logger
}

// NewSearcher creates a new searcher. A nil source limits searches to the
// local store.
func NewSearcher(store LocalStore, source LiveSource, projects []string, clk clock.Clock, logger *slog.Logger) *Searcher {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Searcher{
		store:    store,
		source:   source,
		projects: projects,
		clock:    clk,
		logger:   logger,
	}
}

// Search finds tickets matching term locally and in the live source and
// returns the merged window [offset, offset+limit). A failing live source
// degrades to local results only.
func (s *Searcher) Search(ctx context.Context, term string, offset, limit int) ([]Entry, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []Entry{}, nil
	}
	want := offset + limit

	local, err := s.store.Search(ctx, term, want)
	if err != nil {
		return nil, fmt.Errorf("failed to search local store: %w", err)
	}

	live := s.searchLive(ctx, term, want)
	merged := Merge(local, live)

	if offset >= len(merged) {
		return []Entry{}, nil
	}
	end := min(offset+limit, len(merged))
	return merged[offset:end], nil
}

func (s *Searcher) searchLive(ctx context.Context, term string, maxResults int) []*models.Ticket {
	if s.source == nil {
		return nil
	}

	query := BuildQuery(term, s.projects, s.clock.Now())
	if query.Key != "" {
		ticket, err := s.source.FetchTicket(ctx, query.Key)
		if err != nil {
			s.logger.Warn("live lookup failed", "key", query.Key, "error", err)
			return nil
		}
		if ticket == nil {
			return nil
		}
		return []*models.Ticket{ticket}
	}

	tickets, err := s.source.SearchTickets(ctx, query.Expression, maxResults)
	if err != nil {
		s.logger.Warn("live search failed, using local results only",
			"query", query.Expression,
			"error", err,
		)
		return nil
	}
	return tickets
}

// SaveLive fetches a ticket from the live source and persists it. It
// returns nil when the source does not know the key.
func (s *Searcher) SaveLive(ctx context.Context, key string) (*models.Ticket, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no live source configured")
	}

	ticket, err := s.source.FetchTicket(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticket %s: %w", key, err)
	}
	if ticket == nil {
		return nil, nil
	}

	if err := s.store.Upsert(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to save ticket %s: %w", key, err)
	}
	return ticket, nil
}
