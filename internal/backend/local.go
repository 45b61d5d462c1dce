// Package backend implements progress.Service on the local question bank and
// store, so the binary runs end to end without a remote service.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cfaprep/cfaprep/internal/bank"
	"github.com/cfaprep/cfaprep/internal/mastery"
	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/shuffle"
	"github.com/cfaprep/cfaprep/internal/spacedrep"
	"github.com/cfaprep/cfaprep/internal/store"
)

const (
	// DefaultBookQuestions is the book test size when no limit is given.
	DefaultBookQuestions = 50
	// DefaultDueLimit caps the review queue when no limit is given.
	DefaultDueLimit = 20
	// DefaultHistoryLimit caps the history when no limit is given.
	DefaultHistoryLimit = 20
)

// Local serves progress.Service from a bank.Catalog and a store.Store.
type Local struct {
	catalog        *bank.Catalog
	store          *store.Store
	shuffler       *shuffle.Shuffler
	now            func() time.Time
	logger         *slog.Logger
	shuffleModules bool
}

var _ progress.Service = (*Local)(nil)

// Option configures a Local.
type Option func(*Local)

// WithShuffler sets the randomness source for sampling and ordering.
func WithShuffler(s *shuffle.Shuffler) Option {
	return func(l *Local) { l.shuffler = s }
}

// WithClock sets the time source for scheduling.
func WithClock(now func() time.Time) Option {
	return func(l *Local) { l.now = now }
}

// WithLogger sets the logger for bookkeeping events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Local) { l.logger = logger }
}

// WithModuleShuffle controls whether module banks are returned shuffled.
func WithModuleShuffle(on bool) Option {
	return func(l *Local) { l.shuffleModules = on }
}

// NewLocal returns a Local over cat and st.
func NewLocal(cat *bank.Catalog, st *store.Store, opts ...Option) *Local {
	l := &Local{
		catalog:        cat,
		store:          st,
		now:            time.Now,
		logger:         slog.New(slog.DiscardHandler),
		shuffleModules: true,
	}
	for _, o := range opts {
		o(l)
	}
	if l.shuffler == nil {
		l.shuffler = shuffle.New()
	}
	return l
}

func (l *Local) scheduler(r store.ErrorRepo) *spacedrep.Scheduler {
	return spacedrep.NewScheduler(r, l.now)
}

func (l *Local) mastery(r store.ProgressRepo) *mastery.Service {
	return mastery.NewService(r, l.now)
}

// ModuleQuestions returns a module's bank, shuffled unless disabled.
func (l *Local) ModuleQuestions(_ context.Context, bookID, moduleID int) ([]question.Raw, error) {
	m, ok := l.catalog.Module(bookID, moduleID)
	if !ok || len(m.Questions) == 0 {
		return nil, fmt.Errorf("no questions for book %d module %d: %w", bookID, moduleID, progress.ErrNotFound)
	}
	if l.shuffleModules {
		return shuffle.Shuffle(l.shuffler, m.Questions), nil
	}
	return append([]question.Raw(nil), m.Questions...), nil
}

// BookQuestions samples up to limit questions across a book.
func (l *Local) BookQuestions(_ context.Context, bookID, limit int) ([]question.Raw, error) {
	entries := l.catalog.BookEntries(bookID)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no questions for book %d: %w", bookID, progress.ErrNotFound)
	}
	if limit <= 0 {
		limit = DefaultBookQuestions
	}
	return raws(shuffle.Sample(l.shuffler, entries, limit)), nil
}

// BookInfo lists a book's modules in module order.
func (l *Local) BookInfo(_ context.Context, bookID int) (*progress.BookInfo, error) {
	b, ok := l.catalog.Book(bookID)
	if !ok {
		return nil, fmt.Errorf("no book %d: %w", bookID, progress.ErrNotFound)
	}
	info := &progress.BookInfo{BookID: b.ID, BookName: b.Name, Modules: make([]progress.ModuleInfo, 0, len(b.Modules))}
	for _, m := range b.Modules {
		info.Modules = append(info.Modules, progress.ModuleInfo{
			ModuleID:      m.ModuleID,
			ModuleName:    m.ModuleName,
			QuestionCount: len(m.Questions),
		})
	}
	return info, nil
}

// MockExam selects a full mock exam weighted toward the learner's errors and
// weak modules.
func (l *Local) MockExam(ctx context.Context) ([]question.Raw, error) {
	entries := l.catalog.Entries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("empty question bank: %w", progress.ErrNotFound)
	}
	var (
		frequent []store.ErrorRecord
		weak     []store.ModuleProgress
		err      error
	)
	if len(entries) >= MockExamSize {
		frequent, err = l.store.ErrorRepo().MostFrequent(ctx, MockErrorPool(MockExamSize))
		if err != nil {
			return nil, err
		}
		weak, err = l.mastery(l.store.ProgressRepo()).WeakModules(ctx)
		if err != nil {
			return nil, err
		}
	}
	return SelectMockExam(l.shuffler, entries, frequent, weak, MockExamSize), nil
}

// DueItems returns due review items with their questions. Records whose
// question is no longer in the bank are skipped but still counted as due.
func (l *Local) DueItems(ctx context.Context, limit int) (*progress.DueList, error) {
	if limit <= 0 {
		limit = DefaultDueLimit
	}
	states, total, err := l.scheduler(l.store.ErrorRepo()).Due(ctx, limit)
	if err != nil {
		return nil, err
	}
	list := &progress.DueList{TotalDue: total, Questions: make([]progress.DueItem, 0, len(states))}
	for _, rs := range states {
		q, ok := l.catalog.Question(rs.QuestionID)
		if !ok {
			l.logger.Warn("due question missing from bank", "question_id", rs.QuestionID)
			continue
		}
		list.Questions = append(list.Questions, progress.DueItem{
			QuestionID:         rs.QuestionID,
			BookID:             rs.BookID,
			ModuleID:           rs.ModuleID,
			ErrorCount:         rs.ErrorCount,
			ReviewIntervalDays: rs.IntervalDays,
			Question:           q,
		})
	}
	return list, nil
}

// SubmitResult stores a result and, in one transaction, updates the review
// schedule of every answered question and the module's progress.
func (l *Local) SubmitResult(ctx context.Context, sub progress.Submission) (*progress.Result, error) {
	correct := 0
	for _, d := range sub.QuestionDetails {
		if d.Correct {
			correct++
		}
	}
	total := len(sub.QuestionDetails)

	details, err := json.Marshal(sub.QuestionDetails)
	if err != nil {
		return nil, fmt.Errorf("encode question details: %w", err)
	}
	rec := &store.TestResult{
		SessionID:        sub.SessionID,
		TestType:         string(sub.TestType),
		TestMode:         sub.TestMode,
		BookID:           optionalID(sub.BookID),
		ModuleID:         optionalID(sub.ModuleID),
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		ScorePercent:     mastery.Percent(correct, total),
		TimeSpentSeconds: sub.TimeSpentSeconds,
		Details:          details,
		CreatedAt:        l.now().UTC(),
	}

	var unlocked bool
	err = l.store.InTx(ctx, func(r store.Repos) error {
		if err := r.Results.Save(ctx, rec); err != nil {
			return err
		}
		sched := l.scheduler(r.Errors)
		for _, d := range sub.QuestionDetails {
			if d.Correct {
				if err := sched.RecordCorrect(ctx, d.QuestionID); err != nil {
					return err
				}
				continue
			}
			book, module := l.locate(d.QuestionID, sub)
			if err := sched.RecordError(ctx, d.QuestionID, book, module); err != nil {
				return err
			}
		}

		if sub.TestType != progress.TestModule || sub.BookID <= 0 || sub.ModuleID <= 0 {
			return nil
		}
		_, transitions, err := l.mastery(r.Progress).RecordResult(ctx, sub.BookID, sub.ModuleID, total, correct)
		if err != nil {
			return err
		}
		for _, t := range transitions {
			l.logger.Info("module state changed",
				"book_id", t.BookID, "module_id", t.ModuleID,
				"from", t.From, "to", t.To, "trigger", t.Trigger)
			if t.Trigger == "unlock" {
				unlocked = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit result: %w", err)
	}

	res := toResult(*rec)
	res.ModuleUnlocked = unlocked
	res.QuestionDetails = sub.QuestionDetails
	return &res, nil
}

// locate prefers the bank's location of a question over the submission's,
// which is zero for mock exams.
func (l *Local) locate(questionID string, sub progress.Submission) (int, int) {
	if loc, ok := l.catalog.Locate(questionID); ok {
		return loc.BookID, loc.ModuleID
	}
	return sub.BookID, sub.ModuleID
}

// SubmitReview reschedules a reviewed question.
func (l *Local) SubmitReview(ctx context.Context, a progress.ReviewAnswer) (*progress.ReviewAck, error) {
	rs, err := l.scheduler(l.store.ErrorRepo()).RecordReview(ctx, a.QuestionID, a.WasCorrect)
	if errors.Is(err, spacedrep.ErrNotTracked) {
		return nil, fmt.Errorf("review %s: %w", a.QuestionID, progress.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &progress.ReviewAck{
		QuestionID:      rs.QuestionID,
		NewIntervalDays: rs.IntervalDays,
		NextReviewAt:    rs.NextReviewAt,
		TotalErrors:     rs.ErrorCount,
	}, nil
}

// History returns the latest results, newest first.
func (l *Local) History(ctx context.Context, limit int) ([]progress.Result, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	recs, err := l.store.ResultRepo().Latest(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]progress.Result, 0, len(recs))
	for _, rec := range recs {
		res := toResult(rec)
		if len(rec.Details) > 0 {
			if err := json.Unmarshal(rec.Details, &res.QuestionDetails); err != nil {
				l.logger.Warn("undecodable question details", "result_id", rec.ID, "err", err)
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// ErrorStats summarizes the error records.
func (l *Local) ErrorStats(ctx context.Context) (*progress.ErrorStats, error) {
	st, err := l.scheduler(l.store.ErrorRepo()).Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &progress.ErrorStats{
		TotalErrors: st.TotalErrors,
		DueToday:    st.DueToday,
		Mastered:    st.Mastered,
		ByBook:      st.ByBook,
	}, nil
}

// Progress returns module, book and overall mastery.
func (l *Local) Progress(ctx context.Context) (*progress.Overview, error) {
	return l.mastery(l.store.ProgressRepo()).Overview(ctx)
}

func optionalID(id int) *int {
	if id <= 0 {
		return nil
	}
	return &id
}

func toResult(rec store.TestResult) progress.Result {
	res := progress.Result{
		ID:               rec.ID,
		TestType:         progress.TestType(rec.TestType),
		TestMode:         rec.TestMode,
		TotalQuestions:   rec.TotalQuestions,
		CorrectAnswers:   rec.CorrectAnswers,
		ScorePercent:     rec.ScorePercent,
		TimeSpentSeconds: rec.TimeSpentSeconds,
		CreatedAt:        rec.CreatedAt,
	}
	if rec.BookID != nil {
		res.BookID = *rec.BookID
	}
	if rec.ModuleID != nil {
		res.ModuleID = *rec.ModuleID
	}
	return res
}
