package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cfaprep/cfaprep/internal/store"
)

// ErrNotTracked is returned when a review is recorded for a question that
// has no error record.
var ErrNotTracked = errors.New("question has no error record")

// Scheduler manages the review schedule of missed questions on top of an
// error repository.
type Scheduler struct {
	repo store.ErrorRepo
	now  func() time.Time
}

// NewScheduler creates a scheduler. A nil now uses time.Now.
func NewScheduler(repo store.ErrorRepo, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{repo: repo, now: now}
}

// RecordError registers a wrong test answer, creating the record on first
// miss.
func (s *Scheduler) RecordError(ctx context.Context, questionID string, bookID, moduleID int) error {
	now := s.now().UTC()
	rec, err := s.repo.Get(ctx, questionID)
	if err != nil {
		return err
	}
	var rs *ReviewState
	if rec == nil {
		rs = NewReviewState(questionID, bookID, moduleID, now)
	} else {
		rs = FromRecord(*rec)
		rs.RecordError(now)
	}
	return s.repo.Put(ctx, rs.Record())
}

// RecordCorrect registers a correct test answer. Questions that were never
// missed are not tracked and are left alone.
func (s *Scheduler) RecordCorrect(ctx context.Context, questionID string) error {
	rec, err := s.repo.Get(ctx, questionID)
	if err != nil || rec == nil {
		return err
	}
	rs := FromRecord(*rec)
	rs.RecordCorrect(s.now().UTC())
	return s.repo.Put(ctx, rs.Record())
}

// RecordReview applies a review answer and returns the updated state.
func (s *Scheduler) RecordReview(ctx context.Context, questionID string, correct bool) (*ReviewState, error) {
	rec, err := s.repo.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("review %s: %w", questionID, ErrNotTracked)
	}
	rs := FromRecord(*rec)
	rs.RecordReview(correct, s.now().UTC())
	if err := s.repo.Put(ctx, rs.Record()); err != nil {
		return nil, err
	}
	return rs, nil
}

// Due returns up to limit due questions, oldest due first, along with the
// total number due.
func (s *Scheduler) Due(ctx context.Context, limit int) ([]*ReviewState, int, error) {
	now := s.now().UTC()
	recs, err := s.repo.Due(ctx, now, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountDue(ctx, now)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*ReviewState, len(recs))
	for i, rec := range recs {
		out[i] = FromRecord(rec)
	}
	return out, total, nil
}

// Stats summarizes every tracked question.
type Stats struct {
	TotalErrors int
	DueToday    int
	Mastered    int
	ByBook      map[int]int
}

// Stats computes error statistics at the current time.
func (s *Scheduler) Stats(ctx context.Context) (Stats, error) {
	recs, err := s.repo.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	states := make([]*ReviewState, len(recs))
	for i, rec := range recs {
		states[i] = FromRecord(rec)
	}
	return Summarize(states, s.now()), nil
}

// Summarize computes error statistics over states at now.
func Summarize(states []*ReviewState, now time.Time) Stats {
	st := Stats{TotalErrors: len(states), ByBook: make(map[int]int)}
	for _, rs := range states {
		if rs.IsDue(now) {
			st.DueToday++
		}
		if rs.Mastered() {
			st.Mastered++
		}
		st.ByBook[rs.BookID]++
	}
	return st
}
