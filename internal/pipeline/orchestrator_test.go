package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticket-dedup/internal/config"
	"github.com/Kavirubc/ticket-dedup/internal/github"
	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
	"github.com/Kavirubc/ticket-dedup/internal/processor"
	"github.com/Kavirubc/ticket-dedup/internal/similarity"
	"github.com/Kavirubc/ticket-dedup/internal/store"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

type fakeSource struct {
	mu          sync.Mutex
	tickets     map[string]*models.Ticket
	fetchErr    error
	annotated   bool
	annotations map[string]string
	labels      map[string][]string
}

func newFakeSource(tickets ...*models.Ticket) *fakeSource {
	src := &fakeSource{
		tickets:     map[string]*models.Ticket{},
		annotations: map[string]string{},
		labels:      map[string][]string{},
	}
	for _, t := range tickets {
		src.tickets[t.Key] = t
	}
	return src
}

func (f *fakeSource) FetchTicket(_ context.Context, key string) (*models.Ticket, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.tickets[key], nil
}

func (f *fakeSource) HasAnnotation(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.annotations[key]
	return ok || f.annotated, nil
}

func (f *fakeSource) AddAnnotation(_ context.Context, key, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annotations[key] = text
	return true
}

func (f *fakeSource) AddLabels(_ context.Context, key string, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels[key] = append(f.labels[key], labels...)
	return nil
}

type failingRelated struct {
	*store.Store
}

func (failingRelated) SetRelatedTickets(context.Context, string, []string) error {
	return errors.New("database is locked")
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, models.AnalysisRequest) ([]models.SimilarityResult, error) {
	return nil, errors.New("corpus unreadable")
}

var base = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func historical() []*models.Ticket {
	resolved := base.Add(48 * time.Hour)
	return []*models.Ticket{
		{
			Key: "acme/web#1", ProjectKey: "acme/web", Status: "closed",
			Title:       "Login button unresponsive on mobile",
			Description: "Tapping the login button on iOS does nothing",
			Files:       []string{"src/auth/Login.cs", "src/auth/Session.cs", "src/ui/Button.cs", "src/ui/Theme.cs"},
			PRLinks:     []string{"https://github.com/acme/web/pull/12"},
			CreatedAt:   base, ResolvedAt: &resolved,
		},
		{
			Key: "acme/web#2", ProjectKey: "acme/web", Status: "open",
			Title: "Export to CSV drops unicode", Description: "Names with accents become question marks",
			CreatedAt: base.Add(time.Hour),
		},
		{
			Key: "acme/api#3", ProjectKey: "acme/api", Status: "open",
			Title: "Login button unresponsive on mobile", Description: "Tapping the login button on iOS does nothing",
			CreatedAt: base.Add(2 * time.Hour),
		},
	}
}

func newTicket() *models.Ticket {
	return &models.Ticket{
		Key: "acme/web#10", ProjectKey: "acme/web", Status: "open",
		Title:       "Login button not responding on mobile devices",
		Description: "Tapping the login button on iOS does nothing",
		Files:       []string{"src/auth/Login.cs"},
		CreatedAt:   base.Add(72 * time.Hour),
	}
}

type harness struct {
	cfg    *config.Config
	store  *store.Store
	source *fakeSource
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "tickets.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.BulkUpsert(context.Background(), historical()))

	cfg := config.Default()
	cfg.Sync.Projects = []string{"acme/web", "acme/api"}
	return &harness{cfg: cfg, store: s, source: newFakeSource(newTicket())}
}

func (h *harness) analyzer() *processor.Analyzer {
	ranker := similarity.NewRanker(similarity.NewScorer(similarity.DefaultWeights()))
	return processor.NewAnalyzer(h.store, ranker, h.cfg.Analysis.MaxHistoricalTickets, nil)
}

func (h *harness) orchestrator(dryRun bool) *Orchestrator {
	pipe := NewBuilder(h.source, h.store, h.analyzer(), dryRun).BuildDefault()
	return NewOrchestrator(h.cfg, pipe, nil)
}

func created(key, project string) core.Notification {
	return core.Notification{Created: true, Action: "opened", Key: key, Project: project}
}

func TestProcessAnnotatesNewTicket(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	result := h.orchestrator(false).Process(ctx, created("acme/web#10", "acme/web"))
	require.False(t, result.Failed, result.Error)
	assert.Equal(t, "annotated", result.State)
	assert.True(t, result.Persisted)
	require.NotEmpty(t, result.Matches)
	assert.Equal(t, "acme/web#1", result.Matches[0].Key)
	for _, m := range result.Matches {
		assert.True(t, strings.HasPrefix(m.Key, "acme/web#"), "corpus is scoped to the ticket's project")
	}
	assert.True(t, result.RelatedSaved)
	assert.True(t, result.CommentPosted)

	stored, err := h.store.GetByKey(ctx, "acme/web#10")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Contains(t, stored.RelatedKeys, "acme/web#1")

	comment := h.source.annotations["acme/web#10"]
	assert.Contains(t, comment, "**acme/web#1** - Login button unresponsive on mobile")
	assert.Contains(t, comment, "| Resolved: 2026-02-03")
	assert.Contains(t, comment, "PR: https://github.com/acme/web/pull/12")
	assert.Contains(t, comment, "(and 1 more)")
	assert.Contains(t, comment, github.AnnotationMarker)
}

func TestProcessSkipsNonCreationEvents(t *testing.T) {
	h := newHarness(t)
	n := created("acme/web#10", "acme/web")
	n.Created = false
	n.Action = "edited"

	result := h.orchestrator(false).Process(context.Background(), n)
	assert.True(t, result.Skipped)
	assert.Equal(t, "none", result.State)
	assert.False(t, result.Failed)

	stored, err := h.store.GetByKey(context.Background(), "acme/web#10")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestProcessCreationOutsideSyncedProjects(t *testing.T) {
	h := newHarness(t)
	h.source.tickets["other/repo#1"] = &models.Ticket{
		Key: "other/repo#1", ProjectKey: "other/repo", Title: "Export to CSV drops header row", CreatedAt: base,
	}

	result := h.orchestrator(false).Process(context.Background(), created("other/repo#1", "other/repo"))
	assert.False(t, result.Skipped, result.SkipReason)
	assert.False(t, result.Failed, result.Error)
	assert.True(t, result.Persisted)
	assert.Equal(t, "ranked", result.State)

	stored, err := h.store.GetByKey(context.Background(), "other/repo#1")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestProcessFetchUnavailable(t *testing.T) {
	h := newHarness(t)
	h.source.fetchErr = errors.New("502 bad gateway")

	result := h.orchestrator(false).Process(context.Background(), created("acme/web#10", "acme/web"))
	assert.True(t, result.Skipped)
	assert.False(t, result.Failed)
	assert.Equal(t, "received", result.State)
	assert.Equal(t, "ticket unavailable", result.SkipReason)
}

func TestProcessFetchNotFound(t *testing.T) {
	h := newHarness(t)

	result := h.orchestrator(false).Process(context.Background(), created("acme/web#99", "acme/web"))
	assert.True(t, result.Skipped)
	assert.False(t, result.Failed)
	assert.Equal(t, "received", result.State)
	assert.Equal(t, "ticket not found", result.SkipReason)

	stored, err := h.store.GetByKey(context.Background(), "acme/web#99")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestProcessNoMatchesCompletes(t *testing.T) {
	h := newHarness(t)
	h.source.tickets["acme/web#11"] = &models.Ticket{
		Key: "acme/web#11", ProjectKey: "acme/web", Title: "Quarterly invoice totals wrong", CreatedAt: base,
	}

	result := h.orchestrator(false).Process(context.Background(), created("acme/web#11", "acme/web"))
	assert.False(t, result.Failed)
	assert.False(t, result.Skipped)
	assert.Equal(t, "ranked", result.State)
	assert.Empty(t, result.Matches)
	assert.Empty(t, h.source.annotations)
}

func TestProcessRankFailureKeepsPersistedTicket(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	pipe := NewBuilder(h.source, h.store, failingAnalyzer{}, false).BuildDefault()

	result := NewOrchestrator(h.cfg, pipe, nil).Process(ctx, created("acme/web#10", "acme/web"))
	assert.True(t, result.Failed)
	assert.Contains(t, result.Error, "rank")
	assert.Equal(t, "persisted", result.State)

	stored, err := h.store.GetByKey(ctx, "acme/web#10")
	require.NoError(t, err)
	assert.NotNil(t, stored, "no rollback of earlier steps")
}

func TestProcessRelatedWriteFailure(t *testing.T) {
	h := newHarness(t)
	pipe := NewBuilder(h.source, failingRelated{h.store}, h.analyzer(), false).BuildDefault()

	result := NewOrchestrator(h.cfg, pipe, nil).Process(context.Background(), created("acme/web#10", "acme/web"))
	assert.True(t, result.Failed)
	assert.Equal(t, "ranked", result.State)
	assert.Empty(t, h.source.annotations)
}

func TestProcessDoesNotAnnotateTwice(t *testing.T) {
	h := newHarness(t)
	h.source.annotated = true

	result := h.orchestrator(false).Process(context.Background(), created("acme/web#10", "acme/web"))
	assert.Equal(t, "annotated", result.State)
	assert.False(t, result.CommentPosted)
	assert.Empty(t, h.source.annotations)
}

func TestProcessDryRunAndLabel(t *testing.T) {
	h := newHarness(t)
	h.cfg.Analysis.DuplicateLabel = "possible-duplicate"

	dry := h.orchestrator(true).Process(context.Background(), created("acme/web#10", "acme/web"))
	assert.True(t, dry.RelatedSaved)
	assert.False(t, dry.CommentPosted)
	assert.Empty(t, h.source.labels)

	live := h.orchestrator(false).Process(context.Background(), created("acme/web#10", "acme/web"))
	assert.True(t, live.Labeled)
	assert.Equal(t, []string{"possible-duplicate"}, h.source.labels["acme/web#10"])
}

func TestProcessEventFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "event.json")
	payload := `{"action":"opened","issue":{"number":10,"title":"x"},"repository":{"full_name":"acme/web"}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	result, err := h.orchestrator(true).ProcessEventFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "acme/web#10", result.Key)
	assert.True(t, result.Persisted)

	_, err = h.orchestrator(true).ProcessEventFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, &core.Result{Key: "acme/web#1", State: "received", Skipped: true, SkipReason: "ticket not found"})
	assert.Contains(t, buf.String(), "Skipped: ticket not found")

	buf.Reset()
	PrintResult(&buf, &core.Result{
		Key: "acme/web#1", State: "annotated", CommentPosted: true,
		Matches: []models.SimilarityResult{{Key: "acme/web#2", Title: "Other", Score: 0.5}},
	})
	assert.Contains(t, buf.String(), "acme/web#2 (50%) Other")
	assert.Contains(t, buf.String(), "Comment: posted")
}
