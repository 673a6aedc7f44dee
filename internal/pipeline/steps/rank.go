package steps

import (
	"context"
	"fmt"

	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Analyzer ranks the stored corpus against a request.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) ([]models.SimilarityResult, error)
}

// Rank compares the persisted ticket with the historical corpus using the
// configured threshold and result limit.
type Rank struct {
	analyzer Analyzer
}

// NewRank creates a new rank step
func NewRank(analyzer Analyzer) *Rank {
	return &Rank{analyzer: analyzer}
}

func (s *Rank) Name() string {
	return "rank"
}

func (s *Rank) Run(ctx *core.Context) error {
	sim := ctx.Config.Similarity
	req := models.RequestFromTicket(ctx.Ticket, sim.MinimumThreshold, sim.MaxResults)

	matches, err := s.analyzer.Analyze(ctx.Ctx, req)
	if err != nil {
		return fmt.Errorf("failed to rank %s: %w", ctx.Ticket.Key, err)
	}

	ctx.Matches = matches
	ctx.Result.Matches = matches
	ctx.Advance(core.StateRanked)
	ctx.Logger.Info("ranked ticket", "key", ctx.Ticket.Key, "matches", len(matches))
	return nil
}
