// Package processor loads corpora, keeps the local store in step with the
// ticket source and runs ad-hoc analyses.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Kavirubc/ticket-dedup/internal/similarity"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// CorpusStore is the read side of the local store used to build corpora.
type CorpusStore interface {
	GetByKeys(ctx context.Context, keys []string) ([]*models.Ticket, error)
	GetByProject(ctx context.Context, project string, offset, limit int) ([]*models.Ticket, error)
	GetAll(ctx context.Context, offset, limit int) ([]*models.Ticket, error)
}

// CandidateFinder proposes the keys of tickets worth scoring for a request.
type CandidateFinder interface {
	CandidateKeys(ctx context.Context, req models.AnalysisRequest) ([]string, error)
}

// Analyzer ranks stored tickets against an analysis request
type Analyzer struct {
	store         CorpusStore
	ranker        *similarity.Ranker
	candidates    CandidateFinder
	maxHistorical int
	logger        *slog.Logger
}

// NewAnalyzer creates an analyzer. maxHistorical caps the corpus size;
// zero or less loads every stored ticket.
func NewAnalyzer(store CorpusStore, ranker *similarity.Ranker, maxHistorical int, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		store:         store,
		ranker:        ranker,
		maxHistorical: maxHistorical,
		logger:        logger,
	}
}

// WithCandidates narrows corpora to the tickets proposed by finder.
func (a *Analyzer) WithCandidates(finder CandidateFinder) *Analyzer {
	a.candidates = finder
	return a
}

// Analyze validates req, loads its corpus and ranks it.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) ([]models.SimilarityResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	corpus, err := a.Corpus(ctx, req)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("ranking corpus", "project", req.ProjectKey, "corpus", len(corpus))
	return a.ranker.Rank(req, corpus)
}

// Corpus loads the historical tickets to compare req against: the
// request's project when set, otherwise everything, newest first. When a
// candidate finder is configured its proposals are used instead; any
// failure there falls back to the full corpus.
func (a *Analyzer) Corpus(ctx context.Context, req models.AnalysisRequest) ([]*models.Ticket, error) {
	if a.candidates != nil {
		corpus, err := a.candidateCorpus(ctx, req)
		if err != nil {
			a.logger.Warn("semantic candidates unavailable, using full corpus", "error", err)
		} else if len(corpus) > 0 {
			return corpus, nil
		}
	}

	var (
		corpus []*models.Ticket
		err    error
	)
	if req.ProjectKey != "" {
		corpus, err = a.store.GetByProject(ctx, req.ProjectKey, 0, a.maxHistorical)
	} else {
		corpus, err = a.store.GetAll(ctx, 0, a.maxHistorical)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return corpus, nil
}

func (a *Analyzer) candidateCorpus(ctx context.Context, req models.AnalysisRequest) ([]*models.Ticket, error) {
	keys, err := a.candidates.CandidateKeys(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	corpus, err := a.store.GetByKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	return corpus, nil
}
