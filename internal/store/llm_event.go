package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"id", "created_at", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

// eventRepo implements EventRepo backed by the ent SQL builder and the
// event sequence counter.
type eventRepo struct {
	s *Store
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.s.withConn(ctx, func(conn *sql.Conn) error {
		seqNum, err := r.s.seq.Next(ctx, conn)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}

		query, args := entsql.Dialect(r.s.dialect).
			Insert(tableLLMEvents).
			Columns(llmEventColumns...).
			Values(
				seqNum,
				formatTime(time.Now()),
				data.Provider,
				data.Model,
				data.Purpose,
				data.InputTokens,
				data.OutputTokens,
				data.LatencyMs,
				data.Success,
				data.ErrorMessage,
				data.RequestBody,
				data.ResponseBody,
			).
			Query()
		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save LLM request event: %w", err)
		}
		return nil
	})
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	b := entsql.Dialect(r.s.dialect)
	sel := b.Select(llmEventColumns...).From(b.Table(tableLLMEvents))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("id", opts.Before))
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
	sel.OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var events []LLMEvent
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanLLMEvent(rows)
			if err != nil {
				return err
			}
			events = append(events, *e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	b := entsql.Dialect(r.s.dialect)
	query, args := b.Select(llmEventColumns...).
		From(b.Table(tableLLMEvents)).
		Where(entsql.EQ("id", id)).
		Query()

	var e *LLMEvent
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		e, err = scanLLMEvent(conn.QueryRowContext(ctx, query, args...))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	b := entsql.Dialect(r.s.dialect)
	query, args := b.Select("purpose", "COUNT(*)", "SUM(input_tokens)", "SUM(output_tokens)", "AVG(latency_ms)").
		From(b.Table(tableLLMEvents)).
		GroupBy("purpose").
		OrderBy(entsql.Asc("purpose")).
		Query()

	var out []PurposeUsage
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				u             PurposeUsage
				avgMs         float64
				inTok, outTok int64
			)
			if err := rows.Scan(&u.Purpose, &u.Calls, &inTok, &outTok, &avgMs); err != nil {
				return err
			}
			u.InputTokens, u.OutputTokens = int(inTok), int(outTok)
			u.AvgLatencyMs = int64(avgMs)
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	b := entsql.Dialect(r.s.dialect)
	query, args := b.Select("model", "COUNT(*)", "SUM(input_tokens)", "SUM(output_tokens)").
		From(b.Table(tableLLMEvents)).
		Where(entsql.EQ("success", true)).
		GroupBy("model").
		OrderBy(entsql.Asc("model")).
		Query()

	var out []ModelUsage
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				u             ModelUsage
				inTok, outTok int64
			)
			if err := rows.Scan(&u.Model, &u.Calls, &inTok, &outTok); err != nil {
				return err
			}
			u.InputTokens, u.OutputTokens = int(inTok), int(outTok)
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (*LLMEvent, error) {
	var (
		e  LLMEvent
		ts string
	)
	err := row.Scan(
		&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		return nil, err
	}
	e.Timestamp = parseTime(ts)
	return &e, nil
}
