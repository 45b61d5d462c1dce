package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var errorSelect = []string{
	colQuestionID, colBookID, colModuleID, colErrorCount,
	colLastErrorAt, colLastCorrectAt, colNextReviewAt, colIntervalDays,
}

// errorRepo implements ErrorRepo with the dialect-aware SQL builder.
type errorRepo struct {
	q querier
	b *entsql.DialectBuilder
}

func (r *errorRepo) Get(ctx context.Context, questionID string) (*ErrorRecord, error) {
	query, args := r.b.Select(errorSelect...).
		From(r.b.Table(tableErrors)).
		Where(entsql.EQ(colQuestionID, questionID)).
		Query()
	rec, err := scanError(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get error record %s: %w", questionID, err)
	}
	return rec, nil
}

func (r *errorRepo) Put(ctx context.Context, rec *ErrorRecord) error {
	query, args := r.b.Insert(tableErrors).
		Columns(errorSelect...).
		Values(
			rec.QuestionID, rec.BookID, rec.ModuleID, rec.ErrorCount,
			nullableTime(rec.LastErrorAt), nullableTime(rec.LastCorrectAt),
			rec.NextReviewAt.UTC(), rec.IntervalDays,
		).
		OnConflict(entsql.ConflictColumns(colQuestionID), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put error record %s: %w", rec.QuestionID, err)
	}
	return nil
}

func (r *errorRepo) Due(ctx context.Context, now time.Time, limit int) ([]ErrorRecord, error) {
	sel := r.b.Select(errorSelect...).
		From(r.b.Table(tableErrors)).
		Where(entsql.LTE(colNextReviewAt, now.UTC())).
		OrderBy(entsql.Asc(colNextReviewAt), entsql.Asc(colQuestionID))
	return r.list(ctx, sel, limit)
}

func (r *errorRepo) CountDue(ctx context.Context, now time.Time) (int, error) {
	query, args := r.b.Select(entsql.Count("*")).
		From(r.b.Table(tableErrors)).
		Where(entsql.LTE(colNextReviewAt, now.UTC())).
		Query()
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count due errors: %w", err)
	}
	return n, nil
}

func (r *errorRepo) MostFrequent(ctx context.Context, limit int) ([]ErrorRecord, error) {
	sel := r.b.Select(errorSelect...).
		From(r.b.Table(tableErrors)).
		OrderBy(entsql.Desc(colErrorCount), entsql.Asc(colQuestionID))
	return r.list(ctx, sel, limit)
}

func (r *errorRepo) All(ctx context.Context) ([]ErrorRecord, error) {
	sel := r.b.Select(errorSelect...).
		From(r.b.Table(tableErrors)).
		OrderBy(entsql.Asc(colQuestionID))
	return r.list(ctx, sel, 0)
}

func (r *errorRepo) list(ctx context.Context, sel *entsql.Selector, limit int) ([]ErrorRecord, error) {
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error records: %w", err)
	}
	defer rows.Close()

	var out []ErrorRecord
	for rows.Next() {
		rec, err := scanError(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error records: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanError(s scanner) (*ErrorRecord, error) {
	var (
		rec                ErrorRecord
		lastErr, lastRight sql.NullTime
	)
	if err := s.Scan(
		&rec.QuestionID, &rec.BookID, &rec.ModuleID, &rec.ErrorCount,
		&lastErr, &lastRight, &rec.NextReviewAt, &rec.IntervalDays,
	); err != nil {
		return nil, err
	}
	rec.LastErrorAt = timePtr(lastErr)
	rec.LastCorrectAt = timePtr(lastRight)
	return &rec, nil
}
