package steps

import (
	"context"
	"fmt"

	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// TicketWriter stores a ticket, creating or overwriting it by key.
type TicketWriter interface {
	Upsert(ctx context.Context, ticket *models.Ticket) error
}

// TicketIndexer adds tickets to the semantic index.
type TicketIndexer interface {
	Index(ctx context.Context, tickets []*models.Ticket) (int, error)
}

// Persist upserts the fetched ticket into the local store and, when an
// index is configured, into the semantic index.
type Persist struct {
	store TicketWriter
	index TicketIndexer
}

// NewPersist creates a new persist step. index may be nil.
func NewPersist(store TicketWriter, index TicketIndexer) *Persist {
	return &Persist{store: store, index: index}
}

func (s *Persist) Name() string {
	return "persist"
}

func (s *Persist) Run(ctx *core.Context) error {
	if err := s.store.Upsert(ctx.Ctx, ctx.Ticket); err != nil {
		return fmt.Errorf("failed to persist %s: %w", ctx.Ticket.Key, err)
	}
	ctx.Result.Persisted = true
	ctx.Advance(core.StatePersisted)

	if s.index != nil {
		if _, err := s.index.Index(ctx.Ctx, []*models.Ticket{ctx.Ticket}); err != nil {
			ctx.Logger.Warn("failed to index ticket", "key", ctx.Ticket.Key, "error", err)
		} else {
			ctx.Result.Indexed = true
		}
	}
	return nil
}
