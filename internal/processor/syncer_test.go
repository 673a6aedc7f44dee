package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

func sourceFixture() *memSource {
	return &memSource{
		byKey: map[string]*models.Ticket{
			"acme/web#1": {Key: "acme/web#1", ProjectKey: "acme/web", Title: "fresh title"},
		},
		lists: map[string][]*models.Ticket{
			"acme/web": {
				{Key: "acme/web#1", ProjectKey: "acme/web", Title: "a"},
				{Key: "acme/web#2", ProjectKey: "acme/web", Title: "b"},
				{Key: "acme/web#3", ProjectKey: "acme/web", Title: "c"},
			},
			"acme/api": {
				{Key: "acme/api#1", ProjectKey: "acme/api", Title: "d"},
			},
		},
		failing: map[string]bool{"acme/broken": true, "acme/web#404": true},
	}
}

func TestSyncProject(t *testing.T) {
	store := &memStore{}
	s := NewSyncer(sourceFixture(), store, SyncOptions{MaxTickets: 2}, nil)

	stats, err := s.SyncProject(context.Background(), "acme/web")
	require.NoError(t, err)
	assert.Equal(t, "acme/web", stats.Project)
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 2, stats.Upserted)
	assert.Len(t, store.tickets, 2)
}

func TestSyncProjectStoreFailure(t *testing.T) {
	s := NewSyncer(sourceFixture(), &memStore{err: errors.New("readonly")}, SyncOptions{}, nil)
	stats, err := s.SyncProject(context.Background(), "acme/web")
	assert.Error(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Zero(t, stats.Upserted)
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		store := &memStore{}
		src := sourceFixture()
		s := NewSyncer(src, store, SyncOptions{
			Projects:    []string{"acme/broken", "acme/web", "acme/api"},
			Concurrency: concurrency,
		}, nil)

		stats := s.SyncAll(context.Background())
		require.Len(t, stats, 3)
		assert.Equal(t, "acme/broken", stats[0].Project)
		assert.Equal(t, 1, stats[0].Errors)
		assert.Equal(t, 3, stats[1].Upserted)
		assert.Equal(t, 1, stats[2].Upserted)
		assert.Len(t, store.tickets, 4)
		assert.ElementsMatch(t, []string{"acme/broken", "acme/web", "acme/api"}, src.listed)
	}
}

func TestSyncAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := sourceFixture()
	s := NewSyncer(src, &memStore{}, SyncOptions{Projects: []string{"acme/web"}}, nil)
	stats := s.SyncAll(ctx)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Errors)
	assert.Empty(t, src.listed)
}

func TestSyncIndexesTickets(t *testing.T) {
	index := &countingIndex{}
	s := NewSyncer(sourceFixture(), &memStore{}, SyncOptions{}, nil).WithIndex(index)

	_, err := s.SyncProject(context.Background(), "acme/api")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/api#1"}, index.indexed)

	failing := NewSyncer(sourceFixture(), &memStore{}, SyncOptions{}, nil).WithIndex(&countingIndex{err: errors.New("down")})
	stats, err := failing.SyncProject(context.Background(), "acme/web")
	require.NoError(t, err, "indexing failures do not fail the sync")
	assert.Equal(t, 3, stats.Upserted)
	assert.Equal(t, 3, stats.Errors)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	store := &memStore{tickets: []*models.Ticket{{Key: "acme/web#1", Title: "stale"}}}
	s := NewSyncer(sourceFixture(), store, SyncOptions{}, nil)

	ticket, err := s.Refresh(ctx, "acme/web#1")
	require.NoError(t, err)
	require.NotNil(t, ticket)
	require.Len(t, store.tickets, 1)
	assert.Equal(t, "fresh title", store.tickets[0].Title)

	missing, err := s.Refresh(ctx, "acme/web#77")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.Refresh(ctx, "acme/web#404")
	assert.Error(t, err)
}
