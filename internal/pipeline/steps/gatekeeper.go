package steps

import (
	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
)

// Gatekeeper admits ticket-creation events. Every other event type ends
// the pipeline as a no-op. Sync scoping does not apply here.
type Gatekeeper struct{}

// NewGatekeeper creates a new gatekeeper step
func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

func (s *Gatekeeper) Run(ctx *core.Context) error {
	n := ctx.Notification
	if !n.Created {
		return ctx.Skip("not a ticket creation event")
	}
	if n.Key == "" {
		return ctx.Skip("event names no ticket")
	}

	ctx.Advance(core.StateReceived)
	return nil
}
