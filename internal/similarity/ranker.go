package similarity

import (
	"sort"
	"strings"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Ranker scores a corpus against a candidate and keeps the best matches.
type Ranker struct {
	scorer *Scorer
}

// NewRanker creates a ranker backed by scorer.
func NewRanker(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Scorer returns the underlying scorer.
func (r *Ranker) Scorer() *Scorer {
	return r.scorer
}

type scored struct {
	ticket *models.Ticket
	score  float64
}

// Rank returns corpus tickets scoring at least req.MinimumThreshold,
// best first, truncated to req.MaxResults. Tickets outside
// req.ProjectKey (when set) and the ticket named by req.ExcludeKey are
// skipped. Ties keep corpus order. An empty corpus yields an empty,
// non-nil slice.
func (r *Ranker) Rank(req models.AnalysisRequest, corpus []*models.Ticket) ([]models.SimilarityResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidate := &models.Ticket{
		Title:       req.Title,
		Description: req.Description,
		Files:       req.Files,
		ProjectKey:  req.ProjectKey,
	}

	var kept []scored
	for _, t := range corpus {
		if t == nil {
			continue
		}
		if req.ProjectKey != "" && !strings.EqualFold(t.ProjectKey, req.ProjectKey) {
			continue
		}
		if req.ExcludeKey != "" && models.SameKey(t.Key, req.ExcludeKey) {
			continue
		}

		score := r.scorer.Score(candidate, t)
		if score >= req.MinimumThreshold {
			kept = append(kept, scored{ticket: t, score: score})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	limit := max(req.MaxResults, 0)
	if len(kept) > limit {
		kept = kept[:limit]
	}

	results := make([]models.SimilarityResult, 0, len(kept))
	for _, k := range kept {
		results = append(results, models.SimilarityResult{
			Key:         k.ticket.Key,
			Title:       k.ticket.Title,
			Description: k.ticket.Description,
			Score:       k.score,
			Reason:      r.MatchReason(candidate, k.ticket, k.score),
			CreatedAt:   k.ticket.CreatedAt,
			ResolvedAt:  k.ticket.ResolvedAt,
			Status:      k.ticket.Status,
			Resolution:  k.ticket.Resolution,
			Files:       k.ticket.Files,
			ExternalRef: k.ticket.ExternalRef(),
			URL:         k.ticket.URL,
		})
	}

	return results, nil
}
