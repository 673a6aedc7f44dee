// Package vectordb stores ticket embeddings in Qdrant and answers
// nearest-neighbour queries used to narrow the ranking corpus.
package vectordb

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Kavirubc/ticket-dedup/internal/config"
)

const defaultPort = 6334

// Client wraps Qdrant operations on a single ticket collection
type Client struct {
	qdrant     *qdrant.Client
	collection string
	logger     *slog.Logger
}

// NewClient creates a new Qdrant client
func NewClient(cfg *config.QdrantConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	host, port, useTLS := parseHostPort(cfg.URL)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "tickets"
	}
	return &Client{qdrant: client, collection: collection, logger: logger}, nil
}

// parseHostPort extracts host, gRPC port and TLS mode from a URL string.
// Qdrant Cloud hosts always use TLS.
func parseHostPort(raw string) (string, int, bool) {
	useTLS := strings.HasPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "http://")
	raw = strings.TrimSuffix(raw, "/")

	host, port := raw, defaultPort
	if idx := strings.LastIndex(raw, ":"); idx != -1 {
		host = raw[:idx]
		_, _ = fmt.Sscanf(raw[idx+1:], "%d", &port)
		if port <= 0 {
			port = defaultPort
		}
	}
	if strings.Contains(host, "qdrant.io") || strings.Contains(host, "qdrant.cloud") {
		useTLS = true
	}
	return host, port, useTLS
}

// Collection returns the collection this client reads and writes.
func (c *Client) Collection() string {
	return c.collection
}

// Close closes the connection
func (c *Client) Close() error {
	if c.qdrant != nil {
		return c.qdrant.Close()
	}
	return nil
}
