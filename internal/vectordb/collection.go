package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// EnsureCollection creates the ticket collection with the given vector
// size if it doesn't exist.
func (c *Client) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid vector dimensions: %d", dimensions)
	}

	exists, err := c.qdrant.CollectionExists(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = c.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Payload indexes for filtering
	for _, field := range []string{payloadProject, payloadKey, payloadStatus} {
		_, err = c.qdrant.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: c.collection,
			FieldName:      field,
			FieldType:      qdrant.PtrOf(qdrant.FieldType_FieldTypeKeyword),
		})
		if err != nil {
			// not fatal, filters still work unindexed
			c.logger.Warn("failed to create payload index", "collection", c.collection, "field", field, "error", err)
		}
	}

	c.logger.Info("created vector collection", "collection", c.collection, "dimensions", dimensions)
	return nil
}

// DeleteCollection removes the ticket collection
func (c *Client) DeleteCollection(ctx context.Context) error {
	return c.qdrant.DeleteCollection(ctx, c.collection)
}
