package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Table names.
const (
	tableMethodology = "methodology_steps"
	tableChecklists  = "checklists"
	tableCases       = "case_scenarios"
	tablePractice    = "practice_logs"
	tableLLMEvents   = "llm_request_events"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ddl creates every table. The column types are the subset common to
// SQLite and PostgreSQL; documents are stored as JSON text.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS ` + tableMethodology + ` (
		step_number INTEGER NOT NULL PRIMARY KEY,
		step_name   TEXT NOT NULL,
		summary     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + tableChecklists + ` (
		name       TEXT NOT NULL PRIMARY KEY,
		version    TEXT NOT NULL,
		stages     TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + tableCases + ` (
		id         TEXT NOT NULL PRIMARY KEY,
		document   TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + tablePractice + ` (
		id           TEXT NOT NULL PRIMARY KEY,
		created_at   TEXT NOT NULL,
		user_name    TEXT NOT NULL,
		user_role    TEXT NOT NULL,
		case_id      TEXT NOT NULL,
		case_name    TEXT NOT NULL,
		chat_history TEXT NOT NULL,
		ai_feedback  TEXT NOT NULL,
		model        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_practice_user_created ON ` + tablePractice + ` (user_name, created_at)`,
	`CREATE TABLE IF NOT EXISTS ` + tableLLMEvents + ` (
		id            BIGINT NOT NULL PRIMARY KEY,
		created_at    TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    BIGINT NOT NULL,
		success       BOOLEAN NOT NULL,
		error_message TEXT NOT NULL,
		request_body  TEXT NOT NULL,
		response_body TEXT NOT NULL
	)`,
}

// migrate creates every table that does not exist yet and the event
// sequence.
func (s *Store) migrate(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		for _, stmt := range ddl {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create table: %w", err)
			}
		}
		seq, err := newSequenceCounter(ctx, conn)
		if err != nil {
			return err
		}
		s.seq = seq
		return nil
	})
}
