package steps

import (
	"context"

	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// TicketFetcher loads a full ticket from the ticket source.
type TicketFetcher interface {
	FetchTicket(ctx context.Context, key string) (*models.Ticket, error)
}

// Fetch loads the announced ticket. An unavailable ticket stops the
// pipeline with a warning; there is no retry.
type Fetch struct {
	source TicketFetcher
}

// NewFetch creates a new fetch step
func NewFetch(source TicketFetcher) *Fetch {
	return &Fetch{source: source}
}

func (s *Fetch) Name() string {
	return "fetch"
}

func (s *Fetch) Run(ctx *core.Context) error {
	key := ctx.Notification.Key
	ticket, err := s.source.FetchTicket(ctx.Ctx, key)
	if err != nil {
		ctx.Logger.Warn("ticket fetch failed", "key", key, "error", err)
		return ctx.Skip("ticket unavailable")
	}
	if ticket == nil {
		ctx.Logger.Warn("ticket not found at source", "key", key)
		return ctx.Skip("ticket not found")
	}

	ctx.Ticket = ticket
	ctx.Result.Key = ticket.Key
	ctx.Advance(core.StateFetched)
	return nil
}
