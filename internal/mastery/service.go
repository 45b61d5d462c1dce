package mastery

import (
	"context"
	"time"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/store"
)

// Service provides module mastery bookkeeping on top of a progress repository.
type Service struct {
	repo store.ProgressRepo
	now  func() time.Time
}

// NewService creates a mastery service. A nil now uses time.Now.
func NewService(repo store.ProgressRepo, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// RecordResult folds a module test result into the module's progress. When
// the module is completed for the first time the next module of the book is
// unlocked. The returned transitions describe every state change.
func (s *Service) RecordResult(ctx context.Context, bookID, moduleID, seen, correct int) (*store.ModuleProgress, []*StateTransition, error) {
	now := s.now().UTC()
	prev, err := s.repo.Get(ctx, bookID, moduleID)
	if err != nil {
		return nil, nil, err
	}
	from := ResolveDisplayState(prev, moduleID)

	p := Apply(prev, bookID, moduleID, seen, correct, now)
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, nil, err
	}

	var transitions []*StateTransition
	if to := ResolveDisplayState(p, moduleID); to != from {
		transitions = append(transitions, &StateTransition{
			BookID: bookID, ModuleID: moduleID, From: from, To: to, Trigger: "test-result",
		})
	}
	if from != StateCompleted && IsCompleted(*p) {
		t, err := s.unlock(ctx, bookID, moduleID+1, now)
		if err != nil {
			return nil, nil, err
		}
		if t != nil {
			transitions = append(transitions, t)
		}
	}
	return p, transitions, nil
}

func (s *Service) unlock(ctx context.Context, bookID, moduleID int, now time.Time) (*StateTransition, error) {
	next, err := s.repo.Get(ctx, bookID, moduleID)
	if err != nil {
		return nil, err
	}
	from := ResolveDisplayState(next, moduleID)
	if next == nil {
		next = &store.ModuleProgress{BookID: bookID, ModuleID: moduleID}
	} else if next.Unlocked {
		return nil, nil
	}
	next.Unlocked = true
	next.UpdatedAt = now
	if err := s.repo.Put(ctx, next); err != nil {
		return nil, err
	}
	to := ResolveDisplayState(next, moduleID)
	if to == from {
		return nil, nil
	}
	return &StateTransition{BookID: bookID, ModuleID: moduleID, From: from, To: to, Trigger: "unlock"}, nil
}

// Module returns a module's progress in wire form. Untouched modules are
// reported with zero counts; only the first module of a book is unlocked.
func (s *Service) Module(ctx context.Context, bookID, moduleID int) (progress.ModuleProgress, error) {
	p, err := s.repo.Get(ctx, bookID, moduleID)
	if err != nil {
		return progress.ModuleProgress{}, err
	}
	if p == nil {
		return progress.ModuleProgress{BookID: bookID, ModuleID: moduleID, IsUnlocked: moduleID == 1}, nil
	}
	return toWire(*p), nil
}

// WeakModules returns every module row whose mastery is below WeakPercent.
func (s *Service) WeakModules(ctx context.Context) ([]store.ModuleProgress, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	var weak []store.ModuleProgress
	for _, p := range all {
		if IsWeak(p) {
			weak = append(weak, p)
		}
	}
	return weak, nil
}

// Overview aggregates every module row by book.
func (s *Service) Overview(ctx context.Context) (*progress.Overview, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(all), nil
}

// Summarize aggregates module rows, which must be ordered by book, into the
// overview wire form.
func Summarize(rows []store.ModuleProgress) *progress.Overview {
	ov := &progress.Overview{Books: []progress.BookProgress{}}
	for _, p := range rows {
		n := len(ov.Books)
		if n == 0 || ov.Books[n-1].BookID != p.BookID {
			ov.Books = append(ov.Books, progress.BookProgress{BookID: p.BookID})
			n++
		}
		b := &ov.Books[n-1]
		b.Modules = append(b.Modules, toWire(p))
		b.TotalQuestionsSeen += p.QuestionsSeen
		b.TotalQuestionsCorrect += p.QuestionsCorrect
		ov.TotalQuestionsSeen += p.QuestionsSeen
		ov.TotalQuestionsCorrect += p.QuestionsCorrect
	}
	ov.BooksStarted = len(ov.Books)
	ov.OverallMastery = Percent(ov.TotalQuestionsCorrect, ov.TotalQuestionsSeen)
	return ov
}

func toWire(p store.ModuleProgress) progress.ModuleProgress {
	return progress.ModuleProgress{
		BookID:           p.BookID,
		ModuleID:         p.ModuleID,
		QuestionsSeen:    p.QuestionsSeen,
		QuestionsCorrect: p.QuestionsCorrect,
		MasteryPercent:   p.MasteryPercent,
		IsUnlocked:       p.Unlocked || p.ModuleID == 1,
		CompletedAt:      p.CompletedAt,
	}
}
