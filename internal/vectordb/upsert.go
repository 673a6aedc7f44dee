package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Payload field names
const (
	payloadKey       = "key"
	payloadProject   = "project"
	payloadTitle     = "title"
	payloadStatus    = "status"
	payloadBodyHash  = "body_hash"
	payloadCreatedAt = "created_at"
)

// UpsertTickets inserts or updates ticket vectors. vectors[i] belongs to
// tickets[i].
func (c *Client) UpsertTickets(ctx context.Context, tickets []*models.Ticket, vectors [][]float32) error {
	if len(tickets) != len(vectors) {
		return fmt.Errorf("tickets and vectors length mismatch: %d != %d", len(tickets), len(vectors))
	}
	if len(tickets) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(tickets))
	for i, t := range tickets {
		points[i] = ticketToPoint(t, vectors[i])
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// DeleteTickets removes the vectors for the given ticket keys
func (c *Client) DeleteTickets(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]*qdrant.PointId, len(keys))
	for i, key := range keys {
		ids[i] = qdrant.NewIDUUID(models.TicketUUID(key))
	}

	_, err := c.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: c.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: ids},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// ticketToPoint converts a Ticket to a Qdrant point. The project is
// stored lowercased so filters match regardless of case.
func ticketToPoint(t *models.Ticket, vector []float32) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(t.UUID()),
		Vectors: qdrant.NewVectors(vector...),
		Payload: map[string]*qdrant.Value{
			payloadKey:       qdrant.NewValueString(t.Key),
			payloadProject:   qdrant.NewValueString(strings.ToLower(t.ProjectKey)),
			payloadTitle:     qdrant.NewValueString(t.Title),
			payloadStatus:    qdrant.NewValueString(strings.ToLower(t.Status)),
			payloadBodyHash:  qdrant.NewValueString(t.BodyHash()),
			payloadCreatedAt: qdrant.NewValueInt(t.CreatedAt.Unix()),
		},
	}
}
