package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Kavirubc/ticket-dedup/internal/config"
	"github.com/Kavirubc/ticket-dedup/internal/embedding"
	"github.com/Kavirubc/ticket-dedup/internal/github"
	"github.com/Kavirubc/ticket-dedup/internal/processor"
	"github.com/Kavirubc/ticket-dedup/internal/similarity"
	"github.com/Kavirubc/ticket-dedup/internal/store"
	"github.com/Kavirubc/ticket-dedup/internal/vectordb"
)

// app holds the collaborators a command needs, built from config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	gh       *github.Client
	embedder *embedding.FallbackProvider
	vdb      *vectordb.Client
	semantic *processor.SemanticIndex
}

// loadConfig finds, loads and validates the config. Without a config
// file the defaults are used.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(config.FindConfigPath(cfgFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			printError("config error: %v", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newApp opens the store and the GitHub client. Semantic analysis is set
// up when enabled; if Qdrant or the embedding provider is unreachable the
// app continues with lexical ranking only.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Logging.Level)

	st, err := store.Open(store.Config{
		Path:     cfg.Storage.Path,
		PoolSize: cfg.Storage.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	gh, err := github.NewClient(github.Options{
		Token:             cfg.GitHub.Token,
		Host:              cfg.GitHub.Host,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, store: st, gh: gh}
	if cfg.Analysis.EnableSemanticAnalysis {
		if err := a.openSemantic(ctx); err != nil {
			logger.Warn("semantic analysis disabled", "error", err)
		}
	}
	return a, nil
}

func (a *app) openSemantic(ctx context.Context) error {
	embedder, err := embedding.NewFallbackProvider(ctx, &a.cfg.Embedding, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	vdb, err := vectordb.NewClient(&a.cfg.Qdrant, a.logger)
	if err != nil {
		embedder.Close()
		return fmt.Errorf("failed to create vector DB client: %w", err)
	}

	if err := vdb.EnsureCollection(ctx, a.cfg.Embedding.Primary.Dimensions); err != nil {
		embedder.Close()
		vdb.Close()
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	a.embedder = embedder
	a.vdb = vdb
	a.semantic = processor.NewSemanticIndex(embedder, vdb, a.cfg.Analysis.SemanticCandidates, a.logger)
	return nil
}

func (a *app) analyzer() *processor.Analyzer {
	sim := a.cfg.Similarity
	scorer := similarity.NewScorer(similarity.Weights{
		Title:       sim.TitleWeight,
		Description: sim.DescriptionWeight,
		FilePath:    sim.FilePathWeight,
		Label:       sim.LabelWeight,
	}, similarity.WithFilePathMatching(a.cfg.Analysis.EnableFilePathMatching))

	analyzer := processor.NewAnalyzer(a.store, similarity.NewRanker(scorer), a.cfg.Analysis.MaxHistoricalTickets, a.logger)
	if a.semantic != nil {
		analyzer.WithCandidates(a.semantic)
	}
	return analyzer
}

func (a *app) syncer() *processor.Syncer {
	syncer := processor.NewSyncer(a.gh, a.store, processor.SyncOptions{
		Projects:    a.cfg.Sync.Projects,
		MaxTickets:  a.cfg.Analysis.MaxHistoricalTickets,
		Concurrency: a.cfg.Sync.Concurrency,
	}, a.logger)
	if a.semantic != nil {
		syncer.WithIndex(a.semantic)
	}
	return syncer
}

// Close releases resources
func (a *app) Close() error {
	var errs []error
	if a.embedder != nil {
		errs = append(errs, a.embedder.Close())
	}
	if a.vdb != nil {
		errs = append(errs, a.vdb.Close())
	}
	errs = append(errs, a.gh.Close(), a.store.Close())
	return errors.Join(errs...)
}
