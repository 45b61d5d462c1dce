package session

import (
	"context"
	"fmt"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
)

// Loader draws questions for a Source from the progress service.
type Loader struct {
	svc           progress.Service
	bookQuestions int
}

// NewLoader returns a Loader reading from svc.
func NewLoader(svc progress.Service) *Loader {
	return &Loader{svc: svc, bookQuestions: DefaultBookQuestions}
}

// Fetch returns the normalized questions for src. A record without a
// resolvable correct answer fails the whole fetch.
func (l *Loader) Fetch(ctx context.Context, src Source) ([]question.Question, error) {
	var (
		raws []question.Raw
		err  error
	)
	switch src.TestType {
	case progress.TestMockExam:
		raws, err = l.svc.MockExam(ctx)
	case progress.TestBook:
		raws, err = l.svc.BookQuestions(ctx, src.BookID, l.bookQuestions)
	default:
		raws, err = l.svc.ModuleQuestions(ctx, src.BookID, src.ModuleID)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Title(), err)
	}

	qs, err := question.NormalizeAll(raws)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Title(), err)
	}
	return qs, nil
}

// Load fetches src and starts s on it. Mock exams always run in
// NinetySecond mode.
func (l *Loader) Load(ctx context.Context, s *Session, src Source, mode Mode) error {
	if src.TestType == progress.TestMockExam {
		mode = NinetySecond
	}
	s.BeginLoading(src)
	qs, err := l.Fetch(ctx, src)
	if err != nil {
		s.Abandon()
		return err
	}
	return s.Start(src, qs, mode)
}
