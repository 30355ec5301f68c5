package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/tu613/vet-learning-app/internal/refdata"
)

// referenceRepo implements ReferenceRepo with the ent SQL builder.
type referenceRepo struct {
	s *Store
}

func (r *referenceRepo) MethodologySteps(ctx context.Context) ([]refdata.MethodologyStep, error) {
	b := entsql.Dialect(r.s.dialect)
	query, args := b.Select("step_number", "step_name", "summary").
		From(b.Table(tableMethodology)).
		OrderBy(entsql.Asc("step_number")).
		Query()

	var steps []refdata.MethodologyStep
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var st refdata.MethodologyStep
			if err := rows.Scan(&st.StepNumber, &st.StepName, &st.Summary); err != nil {
				return err
			}
			steps = append(steps, st)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query methodology steps: %w", err)
	}
	return steps, nil
}

func (r *referenceRepo) Checklist(ctx context.Context, name string) (*refdata.Checklist, error) {
	b := entsql.Dialect(r.s.dialect)
	query, args := b.Select("name", "version", "stages").
		From(b.Table(tableChecklists)).
		Where(entsql.EQ("name", name)).
		Query()

	var (
		cl     refdata.Checklist
		stages string
	)
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, args...).Scan(&cl.Name, &cl.Version, &stages)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query checklist %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(stages), &cl.Stages); err != nil {
		return nil, fmt.Errorf("decode checklist %q: %w", name, err)
	}
	return &cl, nil
}

func (r *referenceRepo) Cases(ctx context.Context) ([]refdata.CaseScenario, error) {
	b := entsql.Dialect(r.s.dialect)
	query, args := b.Select("id", "document").
		From(b.Table(tableCases)).
		OrderBy(entsql.Asc("id")).
		Query()

	var cases []refdata.CaseScenario
	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id, doc string
			if err := rows.Scan(&id, &doc); err != nil {
				return err
			}
			c := refdata.CaseScenario{ID: id}
			if err := json.Unmarshal([]byte(doc), &c.Doc); err != nil {
				return fmt.Errorf("decode case %s: %w", id, err)
			}
			cases = append(cases, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	sort.SliceStable(cases, func(i, j int) bool {
		return caseIDLess(cases[i].ID, cases[j].ID)
	})
	return cases, nil
}

// caseIDLess orders numeric IDs by value, ahead of all other IDs, which
// keep text order.
func caseIDLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func (r *referenceRepo) ReplaceMethodology(ctx context.Context, steps []refdata.MethodologyStep) error {
	b := entsql.Dialect(r.s.dialect)
	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := b.Delete(tableMethodology).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear methodology steps: %w", err)
		}
		if len(steps) == 0 {
			return nil
		}

		ins := b.Insert(tableMethodology).Columns("step_number", "step_name", "summary")
		for _, st := range steps {
			ins.Values(st.StepNumber, st.StepName, st.Summary)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert methodology steps: %w", err)
		}
		return nil
	})
}

func (r *referenceRepo) UpsertChecklist(ctx context.Context, cl refdata.Checklist) error {
	stages, err := json.Marshal(cl.Stages)
	if err != nil {
		return fmt.Errorf("encode checklist stages: %w", err)
	}

	query, args := entsql.Dialect(r.s.dialect).
		Insert(tableChecklists).
		Columns("name", "version", "stages", "updated_at").
		Values(cl.Name, cl.Version, string(stages), formatTime(time.Now())).
		OnConflict(entsql.ConflictColumns("name"), entsql.ResolveWithNewValues()).
		Query()

	err = r.s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert checklist %q: %w", cl.Name, err)
	}
	return nil
}

func (r *referenceRepo) UpsertCase(ctx context.Context, c refdata.CaseScenario) error {
	if c.ID == "" {
		return errors.New("upsert case: empty id")
	}
	doc, err := json.Marshal(c.Doc)
	if err != nil {
		return fmt.Errorf("encode case %s: %w", c.ID, err)
	}

	query, args := entsql.Dialect(r.s.dialect).
		Insert(tableCases).
		Columns("id", "document", "updated_at").
		Values(c.ID, string(doc), formatTime(time.Now())).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()

	err = r.s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert case %s: %w", c.ID, err)
	}
	return nil
}

func (r *referenceRepo) DeleteCase(ctx context.Context, id string) error {
	query, args := entsql.Dialect(r.s.dialect).
		Delete(tableCases).
		Where(entsql.EQ("id", id)).
		Query()

	err := r.s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete case %s: %w", id, err)
	}
	return nil
}
