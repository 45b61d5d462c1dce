package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var resultSelect = []string{
	colID, colSessionID, colTestType, colTestMode, colBookID, colModuleID,
	colTotalQuestions, colCorrectAnswers, colScorePercent, colTimeSpentSeconds,
	colDetails, colCreatedAt,
}

// resultRepo implements ResultRepo with the dialect-aware SQL builder.
type resultRepo struct {
	q querier
	b *entsql.DialectBuilder
}

func (r *resultRepo) Save(ctx context.Context, res *TestResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	res.CreatedAt = res.CreatedAt.UTC()

	var details any
	if len(res.Details) > 0 {
		details = string(res.Details)
	}
	query, args := r.b.Insert(tableResults).
		Columns(resultSelect...).
		Values(
			res.ID, res.SessionID, res.TestType, res.TestMode,
			nullableInt(res.BookID), nullableInt(res.ModuleID),
			res.TotalQuestions, res.CorrectAnswers, res.ScorePercent, res.TimeSpentSeconds,
			details, res.CreatedAt,
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save test result: %w", err)
	}
	return nil
}

func (r *resultRepo) Latest(ctx context.Context, limit int) ([]TestResult, error) {
	sel := r.b.Select(resultSelect...).
		From(r.b.Table(tableResults)).
		OrderBy(entsql.Desc(colCreatedAt))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query test results: %w", err)
	}
	defer rows.Close()

	var out []TestResult
	for rows.Next() {
		var (
			res          TestResult
			book, module sql.NullInt64
			details      []byte
		)
		if err := rows.Scan(
			&res.ID, &res.SessionID, &res.TestType, &res.TestMode, &book, &module,
			&res.TotalQuestions, &res.CorrectAnswers, &res.ScorePercent, &res.TimeSpentSeconds,
			&details, &res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan test result: %w", err)
		}
		res.BookID = intPtr(book)
		res.ModuleID = intPtr(module)
		if len(details) > 0 {
			res.Details = append([]byte(nil), details...)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test results: %w", err)
	}
	return out, nil
}

func (r *resultRepo) Count(ctx context.Context) (int, error) {
	query, args := r.b.Select(entsql.Count("*")).From(r.b.Table(tableResults)).Query()
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count test results: %w", err)
	}
	return n, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
