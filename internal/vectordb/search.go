package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// Match is a ticket key found near a query vector
type Match struct {
	Key   string
	Score float64
}

// NearestKeys returns up to limit ticket keys closest to vector, best
// first. A non-empty project restricts the search to that project.
func (c *Client) NearestKeys(ctx context.Context, vector []float32, project string, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, nil
	}

	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		Filter:         projectFilter(project),
		WithPayload:    qdrant.NewWithPayloadInclude(payloadKey),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return matchesFromPoints(points), nil
}

func projectFilter(project string) *qdrant.Filter {
	if project == "" {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(payloadProject, strings.ToLower(project)),
		},
	}
}

// matchesFromPoints keeps point order and drops points without a key.
func matchesFromPoints(points []*qdrant.ScoredPoint) []Match {
	matches := make([]Match, 0, len(points))
	for _, p := range points {
		v := p.GetPayload()[payloadKey]
		if v == nil || v.GetStringValue() == "" {
			continue
		}
		matches = append(matches, Match{Key: v.GetStringValue(), Score: float64(p.GetScore())})
	}
	return matches
}
