package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/Kavirubc/ticket-dedup/internal/config"
)

// openAIBatchLimit is the most inputs one embeddings request accepts.
const openAIBatchLimit = 2048

// OpenAIProvider embeds ticket text with the OpenAI embeddings API.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIProvider creates an OpenAI provider from cfg. Model and
// dimensions fall back to text-embedding-3-small at 768, matching the
// Gemini default so either can fill the same collection.
func NewOpenAIProvider(cfg *config.ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	return &OpenAIProvider{
		client:     openai.NewClient(cfg.APIKey),
		model:      openai.EmbeddingModel(orDefault(cfg.Model, string(openai.SmallEmbedding3))),
		dimensions: dimensionsOrDefault(cfg.Dimensions),
	}, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, p, text)
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return inBatches(texts, openAIBatchLimit, func(batch []string) ([][]float32, error) {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      batch,
			Model:      p.model,
			Dimensions: p.dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("openai: failed to embed %d texts: %w", len(batch), err)
		}
		return openAIVectors(resp.Data, len(batch), p.dimensions)
	})
}

// Close is a no-op; the HTTP client is shared.
func (p *OpenAIProvider) Close() error {
	return nil
}

// openAIVectors places each embedding at its input index. The API does not
// promise input order.
func openAIVectors(data []openai.Embedding, n, dims int) ([][]float32, error) {
	vectors := make([][]float32, n)
	for _, d := range data {
		if d.Index < 0 || d.Index >= n {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		if vectors[d.Index] != nil {
			return nil, fmt.Errorf("openai: duplicate embedding index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("openai: missing embedding %d", i)
		}
	}
	if err := checkDimensions(vectors, dims); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return vectors, nil
}
