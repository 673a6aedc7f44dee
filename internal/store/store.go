// Package store persists the local ticket corpus in SQLite.
//
// The ticket key is the identity of a record. The tickets table carries a
// case-insensitive unique constraint on it and every write goes through an
// INSERT ... ON CONFLICT upsert, so concurrent writers of the same key
// serialize in SQLite instead of racing a read-modify-write.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrNotFound is returned by writes that target a key the store has never
// seen. Lookups report a missing key as a nil ticket instead.
var ErrNotFound = errors.New("ticket not found")

const defaultPoolSize = 4

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	ticket_key    TEXT NOT NULL UNIQUE COLLATE NOCASE,
	project_key   TEXT NOT NULL COLLATE NOCASE,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	ticket_type   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT '',
	priority      TEXT NOT NULL DEFAULT '',
	resolution    TEXT NOT NULL DEFAULT '',
	assignee      TEXT NOT NULL DEFAULT '',
	reporter      TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	test_cases    TEXT NOT NULL DEFAULT '',
	files         TEXT,
	labels        TEXT,
	components    TEXT,
	pr_links      TEXT,
	related_keys  TEXT,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	resolved_at   INTEGER,
	synced_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tickets_project ON tickets(project_key);
CREATE INDEX IF NOT EXISTS idx_tickets_created ON tickets(created_at);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
`

// Config holds the parameters for opening a store.
type Config struct {
	// Path is the SQLite database file. It is created if missing.
	Path string

	// PoolSize is the number of pooled connections. Defaults to 4.
	PoolSize int

	Logger *slog.Logger
}

// Store is the SQLite-backed local ticket store. It is safe for
// concurrent use.
type Store struct {
	pool   *sqlitex.Pool
	path   string
	logger *slog.Logger
	now    func() int64
}

// Open opens (creating if needed) the database at cfg.Path and applies the
// schema.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", cfg.Path, err)
	}

	s := &Store{
		pool:   pool,
		path:   cfg.Path,
		logger: logger,
		now:    nowNanos,
	}

	// Touch one connection so schema errors surface here rather than on
	// the first query.
	conn, err := pool.Take(context.Background())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: opening %s: %w", cfg.Path, err)
	}
	pool.Put(conn)

	logger.Info("ticket store opened", "path", cfg.Path, "pool_size", poolSize)
	return s, nil
}

// Close closes the connection pool. It blocks until all borrowed
// connections are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("store: closing %s: %w", s.path, err)
	}
	s.logger.Info("ticket store closed", "path", s.path)
	return nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("store: applying schema: %w", err)
	}
	return nil
}
