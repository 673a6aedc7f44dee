// Package embedding turns tickets into vectors for the semantic candidate
// index.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// maxTextRunes keeps embedding input around 1500 tokens.
const maxTextRunes = 6000

// Provider defines the interface for embedding generation
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// PrepareTicketText renders the parts of a ticket that describe the
// problem: title, description and affected files.
func PrepareTicketText(t *models.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n\nDescription: %s", t.Title, CleanText(t.Description))
	if len(t.Files) > 0 {
		fmt.Fprintf(&b, "\n\nFiles: %s", strings.Join(t.Files, ", "))
	}
	return TruncateText(b.String(), maxTextRunes)
}

// TruncateText truncates text to maxLen characters
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

// CleanText removes excessive whitespace from text
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// inBatches calls fn on consecutive slices of at most size texts and
// concatenates the results.
func inBatches(texts []string, size int, fn func([]string) ([][]float32, error)) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		vectors, err := fn(texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("provider returned %d embeddings for %d texts", len(vectors), end-start)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// defaultDimensions sizes vectors when the config leaves it unset.
const defaultDimensions = 768

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func dimensionsOrDefault(dims int) int {
	if dims <= 0 {
		return defaultDimensions
	}
	return dims
}

// embedOne embeds a single text through p's batch path.
func embedOne(ctx context.Context, p Provider, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// checkDimensions rejects vectors that would not fit the collection.
func checkDimensions(vectors [][]float32, dims int) error {
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(v), dims)
		}
	}
	return nil
}
