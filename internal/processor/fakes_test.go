package processor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Kavirubc/ticket-dedup/internal/vectordb"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

type memStore struct {
	mu      sync.Mutex
	tickets []*models.Ticket
	err     error
	limits  []int
}

func (m *memStore) GetByKeys(_ context.Context, keys []string) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Ticket
	for _, t := range m.tickets {
		for _, k := range keys {
			if models.SameKey(t.Key, k) {
				out = append(out, t)
				break
			}
		}
	}
	return out, m.err
}

func (m *memStore) GetByProject(_ context.Context, project string, offset, limit int) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
	var out []*models.Ticket
	for _, t := range m.tickets {
		if strings.EqualFold(t.ProjectKey, project) {
			out = append(out, t)
		}
	}
	return window(out, offset, limit), m.err
}

func (m *memStore) GetAll(_ context.Context, offset, limit int) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
	return window(m.tickets, offset, limit), m.err
}

func (m *memStore) Upsert(_ context.Context, t *models.Ticket) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.tickets {
		if models.SameKey(existing.Key, t.Key) {
			m.tickets[i] = t
			return nil
		}
	}
	m.tickets = append(m.tickets, t)
	return nil
}

func (m *memStore) BulkUpsert(ctx context.Context, tickets []*models.Ticket) error {
	if m.err != nil {
		return m.err
	}
	for _, t := range tickets {
		if err := m.Upsert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func window(in []*models.Ticket, offset, limit int) []*models.Ticket {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}

type memSource struct {
	mu      sync.Mutex
	byKey   map[string]*models.Ticket
	lists   map[string][]*models.Ticket
	failing map[string]bool
	listed  []string
}

func (s *memSource) FetchTicket(_ context.Context, key string) (*models.Ticket, error) {
	if s.failing[key] {
		return nil, errors.New("source unavailable")
	}
	return s.byKey[key], nil
}

func (s *memSource) ListTickets(_ context.Context, project string, maxTickets int) ([]*models.Ticket, error) {
	s.mu.Lock()
	s.listed = append(s.listed, project)
	s.mu.Unlock()
	if s.failing[project] {
		return nil, errors.New("source unavailable")
	}
	list := s.lists[project]
	if maxTickets > 0 && len(list) > maxTickets {
		list = list[:maxTickets]
	}
	return list, nil
}

type stubFinder struct {
	keys []string
	err  error
}

func (f stubFinder) CandidateKeys(context.Context, models.AnalysisRequest) ([]string, error) {
	return f.keys, f.err
}

type lenEmbedder struct {
	err error
}

func (e lenEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (e lenEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (lenEmbedder) Close() error { return nil }

type memVectors struct {
	upserted []string
	matches  []vectordb.Match
	project  string
	limit    int
}

func (v *memVectors) UpsertTickets(_ context.Context, tickets []*models.Ticket, vectors [][]float32) error {
	if len(tickets) != len(vectors) {
		return errors.New("length mismatch")
	}
	for _, t := range tickets {
		v.upserted = append(v.upserted, t.Key)
	}
	return nil
}

func (v *memVectors) NearestKeys(_ context.Context, _ []float32, project string, limit int) ([]vectordb.Match, error) {
	v.project = project
	v.limit = limit
	return v.matches, nil
}

type countingIndex struct {
	mu      sync.Mutex
	indexed []string
	err     error
}

func (c *countingIndex) Index(_ context.Context, tickets []*models.Ticket) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tickets {
		c.indexed = append(c.indexed, t.Key)
	}
	return len(tickets), nil
}
