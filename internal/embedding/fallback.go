package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Kavirubc/ticket-dedup/internal/config"
)

// FallbackProvider wraps primary and fallback providers
type FallbackProvider struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
}

// NewFallbackProvider creates a provider with primary and optional fallback
func NewFallbackProvider(ctx context.Context, cfg *config.EmbeddingConfig, logger *slog.Logger) (*FallbackProvider, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	primary, err := createProvider(ctx, &cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	var fallback Provider
	if cfg.Fallback.Provider != "" && cfg.Fallback.APIKey != "" {
		fallback, err = createProvider(ctx, &cfg.Fallback)
		if err != nil {
			logger.Warn("failed to create fallback embedding provider", "provider", cfg.Fallback.Provider, "error", err)
			fallback = nil
		}
	}

	return NewFallback(primary, fallback, logger), nil
}

// NewFallback combines two providers. fallback may be nil.
func NewFallback(primary, fallback Provider, logger *slog.Logger) *FallbackProvider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FallbackProvider{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// createProvider creates a provider based on config
func createProvider(ctx context.Context, cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Embed generates an embedding with fallback on failure
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding, err := p.primary.Embed(ctx, text)
	if err == nil {
		return embedding, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("primary embedding failed (no fallback): %w", err)
	}

	p.logger.Warn("primary embedding failed, trying fallback", "error", err)
	return p.fallback.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts with fallback
func (p *FallbackProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := p.primary.EmbedBatch(ctx, texts)
	if err == nil {
		return embeddings, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("primary embedding failed (no fallback): %w", err)
	}

	p.logger.Warn("primary batch embedding failed, trying fallback", "count", len(texts), "error", err)
	return p.fallback.EmbedBatch(ctx, texts)
}

// Close releases resources
func (p *FallbackProvider) Close() error {
	var errs []error
	if err := p.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.fallback != nil {
		if err := p.fallback.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
