package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var progressSelect = []string{
	colBookID, colModuleID, colQuestionsSeen, colQuestionsRight,
	colMastery, colUnlocked, colCompletedAt, colUpdatedAt,
}

// progressRepo implements ProgressRepo with the dialect-aware SQL builder.
type progressRepo struct {
	q querier
	b *entsql.DialectBuilder
}

func (r *progressRepo) Get(ctx context.Context, bookID, moduleID int) (*ModuleProgress, error) {
	query, args := r.b.Select(progressSelect...).
		From(r.b.Table(tableProgress)).
		Where(entsql.And(
			entsql.EQ(colBookID, bookID),
			entsql.EQ(colModuleID, moduleID),
		)).
		Query()
	p, err := scanProgress(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get module progress %d/%d: %w", bookID, moduleID, err)
	}
	return p, nil
}

func (r *progressRepo) Put(ctx context.Context, p *ModuleProgress) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	query, args := r.b.Insert(tableProgress).
		Columns(progressSelect...).
		Values(
			p.BookID, p.ModuleID, p.QuestionsSeen, p.QuestionsCorrect,
			p.MasteryPercent, p.Unlocked, nullableTime(p.CompletedAt), p.UpdatedAt.UTC(),
		).
		OnConflict(entsql.ConflictColumns(colBookID, colModuleID), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put module progress %d/%d: %w", p.BookID, p.ModuleID, err)
	}
	return nil
}

func (r *progressRepo) All(ctx context.Context) ([]ModuleProgress, error) {
	query, args := r.b.Select(progressSelect...).
		From(r.b.Table(tableProgress)).
		OrderBy(entsql.Asc(colBookID), entsql.Asc(colModuleID)).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query module progress: %w", err)
	}
	defer rows.Close()

	var out []ModuleProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module progress: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate module progress: %w", err)
	}
	return out, nil
}

func scanProgress(s scanner) (*ModuleProgress, error) {
	var (
		p         ModuleProgress
		completed sql.NullTime
	)
	if err := s.Scan(
		&p.BookID, &p.ModuleID, &p.QuestionsSeen, &p.QuestionsCorrect,
		&p.MasteryPercent, &p.Unlocked, &completed, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.CompletedAt = timePtr(completed)
	return &p, nil
}
