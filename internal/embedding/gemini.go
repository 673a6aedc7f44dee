package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Kavirubc/ticket-dedup/internal/config"
)

const (
	defaultGeminiModel = "gemini-embedding-001"

	// geminiBatchLimit is the most contents one EmbedContent call accepts.
	geminiBatchLimit = 100

	// Tickets are compared with each other, not used as search queries.
	geminiTaskType = "SEMANTIC_SIMILARITY"
)

// GeminiProvider embeds ticket text with the Gemini API.
type GeminiProvider struct {
	models     *genai.Models
	model      string
	dimensions int
}

// NewGeminiProvider creates a Gemini provider from cfg. Model and
// dimensions fall back to gemini-embedding-001 at 768.
func NewGeminiProvider(ctx context.Context, cfg *config.ProviderConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		models:     client.Models,
		model:      orDefault(cfg.Model, defaultGeminiModel),
		dimensions: dimensionsOrDefault(cfg.Dimensions),
	}, nil
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, p, text)
}

func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return inBatches(texts, geminiBatchLimit, func(batch []string) ([][]float32, error) {
		dims := int32(p.dimensions)
		resp, err := p.models.EmbedContent(ctx, p.model, geminiContents(batch), &genai.EmbedContentConfig{
			TaskType:             geminiTaskType,
			OutputDimensionality: &dims,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: failed to embed %d texts: %w", len(batch), err)
		}
		return geminiVectors(resp, p.dimensions)
	})
}

// Close is a no-op; the genai client holds no connections.
func (p *GeminiProvider) Close() error {
	return nil
}

func geminiContents(texts []string) []*genai.Content {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(text)}}
	}
	return contents
}

// geminiVectors unpacks a response, rejecting vectors of the wrong size.
func geminiVectors(resp *genai.EmbedContentResponse, dims int) ([][]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("gemini: empty response")
	}
	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("gemini: missing embedding %d", i)
		}
		vectors[i] = emb.Values
	}
	if err := checkDimensions(vectors, dims); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return vectors, nil
}
