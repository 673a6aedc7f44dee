package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

const ticketColumns = `ticket_key, project_key, title, description, ticket_type, status,
	priority, resolution, assignee, reporter, url, test_cases,
	files, labels, components, pr_links, related_keys,
	created_at, updated_at, resolved_at`

// Upserts replace every mutable field. Related keys are only replaced when
// the incoming record carries some, so a sync does not erase relations
// recorded by the analysis pipeline.
const upsertQuery = `INSERT INTO tickets (` + ticketColumns + `, synced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(ticket_key) DO UPDATE SET
		project_key  = excluded.project_key,
		title        = excluded.title,
		description  = excluded.description,
		ticket_type  = excluded.ticket_type,
		status       = excluded.status,
		priority     = excluded.priority,
		resolution   = excluded.resolution,
		assignee     = excluded.assignee,
		reporter     = excluded.reporter,
		url          = excluded.url,
		test_cases   = excluded.test_cases,
		files        = excluded.files,
		labels       = excluded.labels,
		components   = excluded.components,
		pr_links     = excluded.pr_links,
		related_keys = COALESCE(excluded.related_keys, tickets.related_keys),
		created_at   = excluded.created_at,
		updated_at   = excluded.updated_at,
		resolved_at  = excluded.resolved_at,
		synced_at    = excluded.synced_at`

// GetByKey returns the ticket with the given key, or nil if the store has
// no such ticket.
func (s *Store) GetByKey(ctx context.Context, key string) (*models.Ticket, error) {
	tickets, err := s.query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE ticket_key = ?`,
		key)
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	if len(tickets) == 0 {
		return nil, nil
	}
	return tickets[0], nil
}

// GetByKeys returns the stored tickets among keys, newest first. Unknown
// keys are skipped.
func (s *Store) GetByKeys(ctx context.Context, keys []string) ([]*models.Ticket, error) {
	if len(keys) == 0 {
		return []*models.Ticket{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	tickets, err := s.query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE ticket_key IN (`+placeholders+`)
		ORDER BY created_at DESC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("store: get %d tickets: %w", len(keys), err)
	}
	return tickets, nil
}

// GetByProject returns a page of one project's tickets, newest first.
func (s *Store) GetByProject(ctx context.Context, project string, offset, limit int) ([]*models.Ticket, error) {
	tickets, err := s.query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE project_key = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		project, pageLimit(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("store: list project %s: %w", project, err)
	}
	return tickets, nil
}

// GetAll returns a page of all tickets, newest first.
func (s *Store) GetAll(ctx context.Context, offset, limit int) ([]*models.Ticket, error) {
	tickets, err := s.query(ctx,
		`SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		pageLimit(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("store: list tickets: %w", err)
	}
	return tickets, nil
}

// Search returns up to limit tickets whose key, title or description
// contains term, case-insensitively, newest first.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]*models.Ticket, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*models.Ticket{}, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	tickets, err := s.query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		WHERE lower(title) LIKE ?1 ESCAPE '\'
		   OR lower(description) LIKE ?1 ESCAPE '\'
		   OR lower(ticket_key) LIKE ?1 ESCAPE '\'
		ORDER BY created_at DESC LIMIT ?2`,
		pattern, pageLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("store: search %q: %w", term, err)
	}
	return tickets, nil
}

// Upsert inserts the ticket or overwrites the stored record with the same
// key.
func (s *Store) Upsert(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("store: upsert: nil ticket")
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: upsert: %w", err)
	}
	defer s.pool.Put(conn)

	if err := s.upsert(conn, ticket); err != nil {
		return fmt.Errorf("store: upsert %s: %w", ticket.Key, err)
	}
	return nil
}

// BulkUpsert upserts all tickets in one transaction. Either every ticket is
// written or none is.
func (s *Store) BulkUpsert(ctx context.Context, tickets []*models.Ticket) (err error) {
	if len(tickets) == 0 {
		return nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: bulk upsert: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for i, t := range tickets {
		if err = s.upsert(conn, t); err != nil {
			return fmt.Errorf("store: bulk upsert ticket %d: %w", i, err)
		}
	}

	s.logger.Debug("bulk upserted tickets", "count", len(tickets))
	return nil
}

// SetRelatedTickets replaces the related keys of a stored ticket.
func (s *Store) SetRelatedTickets(ctx context.Context, key string, related []string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: set related: %w", err)
	}
	defer s.pool.Put(conn)

	encoded, err := encodeList(related)
	if err != nil {
		return err
	}
	if encoded == nil {
		encoded = "[]"
	}

	err = sqlitex.Execute(conn, `UPDATE tickets SET related_keys = ? WHERE ticket_key = ?`,
		&sqlitex.ExecOptions{Args: []any{encoded, key}})
	if err != nil {
		return fmt.Errorf("store: set related %s: %w", key, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("store: set related %s: %w", key, ErrNotFound)
	}
	return nil
}

// Count returns the number of stored tickets.
func (s *Store) Count(ctx context.Context) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	defer s.pool.Put(conn)

	var count int
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM tickets`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return count, nil
}

// Stats summarizes the corpus by status and project.
func (s *Store) Stats(ctx context.Context) (*models.StoreStats, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	defer s.pool.Put(conn)

	stats := &models.StoreStats{ByProject: make(map[string]int)}
	err = sqlitex.Execute(conn,
		`SELECT project_key, lower(status), COUNT(*) FROM tickets GROUP BY project_key, lower(status)`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n := stmt.ColumnInt(2)
				stats.Total += n
				stats.ByProject[stmt.ColumnText(0)] += n
				switch stmt.ColumnText(1) {
				case "open":
					stats.Open += n
				case "closed":
					stats.Closed += n
				}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	return stats, nil
}

func (s *Store) upsert(conn *sqlite.Conn, t *models.Ticket) error {
	if t == nil || strings.TrimSpace(t.Key) == "" {
		return fmt.Errorf("ticket key is required")
	}

	var lists [5]any
	for i, list := range [][]string{t.Files, t.Labels, t.Components, t.PRLinks, t.RelatedKeys} {
		encoded, err := encodeList(list)
		if err != nil {
			return err
		}
		lists[i] = encoded
	}

	var resolvedAt any
	if t.ResolvedAt != nil {
		resolvedAt = t.ResolvedAt.UnixNano()
	}
	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = t.CreatedAt
	}

	return sqlitex.Execute(conn, upsertQuery, &sqlitex.ExecOptions{
		Args: []any{
			t.Key,
			t.ProjectKey,
			t.Title,
			t.Description,
			t.Type,
			t.Status,
			t.Priority,
			t.Resolution,
			t.Assignee,
			t.Reporter,
			t.URL,
			t.TestCases,
			lists[0],
			lists[1],
			lists[2],
			lists[3],
			lists[4],
			t.CreatedAt.UnixNano(),
			updatedAt.UnixNano(),
			resolvedAt,
			s.now(),
		},
	})
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*models.Ticket, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	tickets := []*models.Ticket{}
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			t, err := scanTicket(stmt)
			if err != nil {
				return err
			}
			tickets = append(tickets, t)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// scanTicket reads one row selected with ticketColumns.
func scanTicket(stmt *sqlite.Stmt) (*models.Ticket, error) {
	t := &models.Ticket{
		Key:         stmt.ColumnText(0),
		ProjectKey:  stmt.ColumnText(1),
		Title:       stmt.ColumnText(2),
		Description: stmt.ColumnText(3),
		Type:        stmt.ColumnText(4),
		Status:      stmt.ColumnText(5),
		Priority:    stmt.ColumnText(6),
		Resolution:  stmt.ColumnText(7),
		Assignee:    stmt.ColumnText(8),
		Reporter:    stmt.ColumnText(9),
		URL:         stmt.ColumnText(10),
		TestCases:   stmt.ColumnText(11),
		CreatedAt:   time.Unix(0, stmt.ColumnInt64(17)).UTC(),
		UpdatedAt:   time.Unix(0, stmt.ColumnInt64(18)).UTC(),
	}

	for i, dst := range []*[]string{&t.Files, &t.Labels, &t.Components, &t.PRLinks, &t.RelatedKeys} {
		column := 12 + i
		if stmt.ColumnIsNull(column) {
			continue
		}
		if err := json.Unmarshal([]byte(stmt.ColumnText(column)), dst); err != nil {
			return nil, fmt.Errorf("decode column %d of %s: %w", column, t.Key, err)
		}
	}

	if !stmt.ColumnIsNull(19) {
		resolved := time.Unix(0, stmt.ColumnInt64(19)).UTC()
		t.ResolvedAt = &resolved
	}
	return t, nil
}

// encodeList stores empty lists as NULL.
func encodeList(list []string) (any, error) {
	if len(list) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// pageLimit maps a non-positive limit to "no limit".
func pageLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nowNanos() int64 {
	return time.Now().UnixNano()
}
