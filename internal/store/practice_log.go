package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// practiceLogRepo implements PracticeLogRepo and PracticeHistory.
type practiceLogRepo struct {
	s *Store
}

func (r *practiceLogRepo) AppendPracticeLog(ctx context.Context, e *PracticeLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	history := e.ChatHistory
	if history == nil {
		history = []ChatTurn{}
	}
	chat, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}

	query, args := entsql.Dialect(r.s.dialect).
		Insert(tablePractice).
		Columns("id", "created_at", "user_name", "user_role", "case_id", "case_name", "chat_history", "ai_feedback", "model").
		Values(e.ID, formatTime(e.Timestamp), e.UserName, e.UserRole, e.CaseID, e.CaseName, string(chat), e.Feedback, e.Model).
		Query()

	err = r.s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("save practice log: %w", err)
	}
	return nil
}

func (r *practiceLogRepo) CountPracticeLogs(ctx context.Context) (int, error) {
	b := entsql.Dialect(r.s.dialect)
	query, args := b.Select("COUNT(*)").From(b.Table(tablePractice)).Query()

	var n int
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count practice logs: %w", err)
	}
	return n, nil
}

var practiceLogColumns = []string{
	"id", "created_at", "user_name", "user_role", "case_id", "case_name", "chat_history", "ai_feedback", "model",
}

func (r *practiceLogRepo) QueryPracticeLogs(ctx context.Context, userName string, opts QueryOpts) ([]PracticeLogEntry, error) {
	b := entsql.Dialect(r.s.dialect)
	sel := b.Select(practiceLogColumns...).From(b.Table(tablePractice))

	var preds []*entsql.Predicate
	if userName != "" {
		preds = append(preds, entsql.EQ("user_name", userName))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", formatTime(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", formatTime(opts.To)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("created_at"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var out []PracticeLogEntry
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanPracticeLog(rows)
			if err != nil {
				return err
			}
			out = append(out, *e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query practice logs: %w", err)
	}
	return out, nil
}

func scanPracticeLog(row rowScanner) (*PracticeLogEntry, error) {
	var (
		e    PracticeLogEntry
		ts   string
		chat string
	)
	err := row.Scan(&e.ID, &ts, &e.UserName, &e.UserRole, &e.CaseID, &e.CaseName, &chat, &e.Feedback, &e.Model)
	if err != nil {
		return nil, err
	}
	e.Timestamp = parseTime(ts)
	if chat != "" {
		if err := json.Unmarshal([]byte(chat), &e.ChatHistory); err != nil {
			return nil, fmt.Errorf("decode chat history of %s: %w", e.ID, err)
		}
	}
	return &e, nil
}
