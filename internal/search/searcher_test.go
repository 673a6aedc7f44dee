package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticket-dedup/internal/clock"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

type fakeStore struct {
	tickets  []*models.Ticket
	upserted []*models.Ticket
	err      error
}

func (f *fakeStore) Search(ctx context.Context, term string, limit int) ([]*models.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Ticket
	for _, t := range f.tickets {
		if strings.Contains(strings.ToLower(t.Title), strings.ToLower(term)) && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) Upsert(ctx context.Context, ticket *models.Ticket) error {
	f.upserted = append(f.upserted, ticket)
	return nil
}

type fakeSource struct {
	byKey   map[string]*models.Ticket
	results []*models.Ticket
	err     error
	queries []string
}

func (f *fakeSource) FetchTicket(ctx context.Context, key string) (*models.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byKey[key], nil
}

func (f *fakeSource) SearchTickets(ctx context.Context, query string, maxResults int) ([]*models.Ticket, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newTicket(key, title string, day int) *models.Ticket {
	return &models.Ticket{Key: key, Title: title, CreatedAt: time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC)}
}

func TestSearcher_Search_MergesLocalAndLive(t *testing.T) {
	store := &fakeStore{tickets: []*models.Ticket{newTicket("org/app#1", "Login crash", 1)}}
	source := &fakeSource{results: []*models.Ticket{
		newTicket("org/app#1", "Login crash", 1),
		newTicket("org/app#7", "Login crash on resume", 4),
	}}
	s := NewSearcher(store, source, []string{"org/app"}, clock.Fake(time.Now()), nil)

	entries, err := s.Search(context.Background(), "login", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Persisted, entries[0].Origin)
	assert.Equal(t, "org/app#7", entries[1].Ticket.Key)
	assert.Equal(t, LiveOnly, entries[1].Origin)
	assert.Equal(t, []string{"is:issue login in:title,body,comments repo:org/app"}, source.queries)
}

func TestSearcher_Search_Window(t *testing.T) {
	store := &fakeStore{tickets: []*models.Ticket{
		newTicket("org/app#3", "crash three", 3),
		newTicket("org/app#2", "crash two", 2),
		newTicket("org/app#1", "crash one", 1),
	}}
	s := NewSearcher(store, nil, nil, nil, nil)

	entries, err := s.Search(context.Background(), "crash", 1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "org/app#2", entries[0].Ticket.Key)

	entries, err = s.Search(context.Background(), "crash", 5, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearcher_Search_LiveFailureFallsBackToLocal(t *testing.T) {
	store := &fakeStore{tickets: []*models.Ticket{newTicket("org/app#1", "Login crash", 1)}}
	source := &fakeSource{err: errors.New("rate limited")}
	s := NewSearcher(store, source, nil, nil, nil)

	entries, err := s.Search(context.Background(), "login", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsPersisted())
}

func TestSearcher_Search_LocalFailureIsReturned(t *testing.T) {
	s := NewSearcher(&fakeStore{err: errors.New("disk full")}, &fakeSource{}, nil, nil, nil)

	_, err := s.Search(context.Background(), "login", 0, 10)
	assert.Error(t, err)
}

func TestSearcher_Search_KeyLookup(t *testing.T) {
	live := newTicket("org/app#9", "Upload fails", 2)
	source := &fakeSource{byKey: map[string]*models.Ticket{"org/app#9": live}}
	s := NewSearcher(&fakeStore{}, source, nil, nil, nil)

	entries, err := s.Search(context.Background(), "org/app#9", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, LiveOnly, entries[0].Origin)
	assert.Empty(t, source.queries)
}

func TestSearcher_SaveLive(t *testing.T) {
	live := newTicket("org/app#9", "Upload fails", 2)
	store := &fakeStore{}
	source := &fakeSource{byKey: map[string]*models.Ticket{"org/app#9": live}}
	s := NewSearcher(store, source, nil, nil, nil)

	got, err := s.SaveLive(context.Background(), "org/app#9")
	require.NoError(t, err)
	assert.Equal(t, live, got)
	assert.Equal(t, []*models.Ticket{live}, store.upserted)

	got, err = s.SaveLive(context.Background(), "org/app#404")
	require.NoError(t, err)
	assert.Nil(t, got)
}
