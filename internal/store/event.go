package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// execer is the query surface shared by *sql.DB, *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sequenceCounter hands out the monotonic IDs for LLM request events so
// that `vetlearn llm view <id>` has a short, stable handle on both SQLite
// and PostgreSQL without dialect-specific auto-increment columns.
//
// The statements are plain SQL understood by both dialects. The mutex
// serializes within the process; the RETURNING clause makes the increment
// atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
}

// newSequenceCounter ensures the tracking table exists and is seeded.
func newSequenceCounter(ctx context.Context, db execer) (*sequenceCounter, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS event_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val BIGINT NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO event_sequence (id, next_val) VALUES (1, 1) ON CONFLICT DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, db execer) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := db.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
