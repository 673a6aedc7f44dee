package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Kavirubc/ticket-dedup/internal/config"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

type stubProvider struct {
	err    error
	calls  int
	closed bool
}

func (s *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (s *stubProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (s *stubProvider) Close() error {
	s.closed = true
	return nil
}

func TestPrepareTicketText(t *testing.T) {
	text := PrepareTicketText(&models.Ticket{
		Title:       "Login fails",
		Description: "  first line\n\n\n  second line  ",
		Files:       []string{"auth/login.go", "auth/session.go"},
	})
	assert.Equal(t, "Title: Login fails\n\nDescription: first line\nsecond line\n\nFiles: auth/login.go, auth/session.go", text)

	noFiles := PrepareTicketText(&models.Ticket{Title: "x"})
	assert.NotContains(t, noFiles, "Files:")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "héll...", TruncateText("héllo", 4))
	long := PrepareTicketText(&models.Ticket{Title: strings.Repeat("a", maxTextRunes*2)})
	assert.Len(t, []rune(long), maxTextRunes+3)
}

func TestInBatches(t *testing.T) {
	var sizes []int
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	out, err := inBatches(texts, 2, func(batch []string) ([][]float32, error) {
		sizes = append(sizes, len(batch))
		vs := make([][]float32, len(batch))
		for i, b := range batch {
			vs[i] = []float32{float32(len(b))}
		}
		return vs, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
	require.Len(t, out, 5)
	assert.Equal(t, float32(5), out[4][0])

	_, err = inBatches(texts, 10, func([]string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	assert.Error(t, err)
}

func TestFallbackProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("primary succeeds", func(t *testing.T) {
		primary, fallback := &stubProvider{}, &stubProvider{}
		p := NewFallback(primary, fallback, nil)
		v, err := p.Embed(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, []float32{3}, v)
		assert.Zero(t, fallback.calls)
	})

	t.Run("falls back on error", func(t *testing.T) {
		primary := &stubProvider{err: errors.New("quota")}
		fallback := &stubProvider{}
		p := NewFallback(primary, fallback, nil)
		vs, err := p.EmbedBatch(ctx, []string{"a", "bb"})
		require.NoError(t, err)
		assert.Len(t, vs, 2)
		assert.Equal(t, 1, fallback.calls)
	})

	t.Run("no fallback", func(t *testing.T) {
		p := NewFallback(&stubProvider{err: errors.New("quota")}, nil, nil)
		_, err := p.Embed(ctx, "a")
		assert.ErrorContains(t, err, "no fallback")
	})

	t.Run("close closes both", func(t *testing.T) {
		primary, fallback := &stubProvider{}, &stubProvider{}
		require.NoError(t, NewFallback(primary, fallback, nil).Close())
		assert.True(t, primary.closed)
		assert.True(t, fallback.closed)
	})
}

func TestOpenAIVectors(t *testing.T) {
	data := []openai.Embedding{
		{Index: 1, Embedding: []float32{0, 1}},
		{Index: 0, Embedding: []float32{1, 0}},
	}
	vectors, err := openAIVectors(data, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)

	_, err = openAIVectors(data[:1], 2, 2)
	assert.ErrorContains(t, err, "missing embedding 0")

	_, err = openAIVectors([]openai.Embedding{{Index: 2, Embedding: []float32{1, 0}}}, 2, 2)
	assert.ErrorContains(t, err, "out of range")

	_, err = openAIVectors([]openai.Embedding{{Index: 0, Embedding: []float32{1}}, {Index: 0, Embedding: []float32{1}}}, 2, 1)
	assert.ErrorContains(t, err, "duplicate")

	_, err = openAIVectors(data, 2, 3)
	assert.ErrorContains(t, err, "has 2 dimensions, want 3")
}

func TestGeminiVectors(t *testing.T) {
	resp := &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{
		{Values: []float32{1, 0}},
		{Values: []float32{0, 1}},
	}}
	vectors, err := geminiVectors(resp, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)

	_, err = geminiVectors(resp, 768)
	assert.Error(t, err)

	_, err = geminiVectors(nil, 2)
	assert.Error(t, err)

	_, err = geminiVectors(&genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{nil}}, 2)
	assert.ErrorContains(t, err, "missing embedding 0")
}

func TestGeminiContents(t *testing.T) {
	contents := geminiContents([]string{"a", "b"})
	require.Len(t, contents, 2)
	require.Len(t, contents[1].Parts, 1)
	assert.Equal(t, "b", contents[1].Parts[0].Text)
}

func TestCreateProvider(t *testing.T) {
	_, err := createProvider(context.Background(), &config.ProviderConfig{Provider: "cohere"})
	assert.ErrorContains(t, err, "unknown provider")

	_, err = createProvider(context.Background(), &config.ProviderConfig{Provider: "openai"})
	assert.ErrorContains(t, err, "api key is required")

	p, err := createProvider(context.Background(), &config.ProviderConfig{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	openAI := p.(*OpenAIProvider)
	assert.Equal(t, openai.SmallEmbedding3, openAI.model)
	assert.Equal(t, defaultDimensions, openAI.dimensions)
}
