package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Kavirubc/ticket-dedup/internal/embedding"
	"github.com/Kavirubc/ticket-dedup/internal/vectordb"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

const indexBatchSize = 64

// VectorIndex stores ticket vectors and finds nearest neighbours.
type VectorIndex interface {
	UpsertTickets(ctx context.Context, tickets []*models.Ticket, vectors [][]float32) error
	NearestKeys(ctx context.Context, vector []float32, project string, limit int) ([]vectordb.Match, error)
}

// SemanticIndex embeds tickets into a vector index and proposes
// candidates by vector proximity.
type SemanticIndex struct {
	embedder   embedding.Provider
	vdb        VectorIndex
	candidates int
	logger     *slog.Logger
}

// NewSemanticIndex creates a semantic index returning up to candidates
// keys per request.
func NewSemanticIndex(embedder embedding.Provider, vdb VectorIndex, candidates int, logger *slog.Logger) *SemanticIndex {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if candidates <= 0 {
		candidates = 50
	}
	return &SemanticIndex{
		embedder:   embedder,
		vdb:        vdb,
		candidates: candidates,
		logger:     logger,
	}
}

// Index embeds and stores tickets in batches. It returns the number of
// tickets indexed; a failed batch is logged and skipped.
func (si *SemanticIndex) Index(ctx context.Context, tickets []*models.Ticket) (int, error) {
	indexed := 0
	var lastErr error
	for i := 0; i < len(tickets); i += indexBatchSize {
		end := min(i+indexBatchSize, len(tickets))
		batch := tickets[i:end]

		if err := si.indexBatch(ctx, batch); err != nil {
			if ctx.Err() != nil {
				return indexed, ctx.Err()
			}
			si.logger.Warn("index batch failed", "from", i, "to", end, "error", err)
			lastErr = err
			continue
		}
		indexed += len(batch)
	}
	if indexed == 0 && lastErr != nil {
		return 0, lastErr
	}
	return indexed, nil
}

// indexBatch processes and indexes a batch of tickets
func (si *SemanticIndex) indexBatch(ctx context.Context, tickets []*models.Ticket) error {
	texts := make([]string, len(tickets))
	for i, t := range tickets {
		texts[i] = embedding.PrepareTicketText(t)
	}

	vectors, err := si.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if err := si.vdb.UpsertTickets(ctx, tickets, vectors); err != nil {
		return fmt.Errorf("failed to upsert batch: %w", err)
	}
	return nil
}

// CandidateKeys returns the keys of the stored tickets nearest to req,
// excluding req.ExcludeKey.
func (si *SemanticIndex) CandidateKeys(ctx context.Context, req models.AnalysisRequest) ([]string, error) {
	text := embedding.PrepareTicketText(&models.Ticket{
		Title:       req.Title,
		Description: req.Description,
		Files:       req.Files,
	})
	vector, err := si.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	// one extra in case the request's own ticket comes back
	matches, err := si.vdb.NearestKeys(ctx, vector, req.ProjectKey, si.candidates+1)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if req.ExcludeKey != "" && models.SameKey(m.Key, req.ExcludeKey) {
			continue
		}
		keys = append(keys, m.Key)
	}
	if len(keys) > si.candidates {
		keys = keys[:si.candidates]
	}
	return keys, nil
}
