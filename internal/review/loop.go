// Package review replays previously missed questions from the service's due
// queue, one item at a time: answer, report, refetch.
package review

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/shuffle"
)

// DefaultLimit is how many due items are fetched per refresh.
const DefaultLimit = 20

var (
	// ErrBusy is returned when an answer is already being reported.
	ErrBusy = errors.New("review answer already in flight")
	// ErrNoItem is returned when the queue is empty.
	ErrNoItem = errors.New("no questions to review")
)

// Item is one due question, normalized.
type Item struct {
	QuestionID   string
	BookID       int
	ModuleID     int
	ErrorCount   int
	IntervalDays int
	Question     question.Question
}

// Outcome is the result of answering the current item.
type Outcome struct {
	QuestionID       string
	Selected         string
	Correct          bool
	CorrectOption    question.Option
	Explanation      string
	WrongExplanation *question.WrongExplanation
	// Ack is the service's new schedule; nil when the report failed.
	Ack *progress.ReviewAck
	// ReportErr is set when the answer could not be reported. The loop still
	// moves on.
	ReportErr error
}

// Loop holds the current view of the due queue. Methods are safe to call
// from the UI goroutine while an Answer runs in the background.
type Loop struct {
	svc      progress.Service
	shuffler *shuffle.Shuffler
	logger   *slog.Logger
	limit    int

	mu       sync.Mutex
	items    []Item
	totalDue int
	skipped  int
	options  []question.Option
	inflight bool
	loaded   bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithLimit sets how many due items are fetched per refresh.
func WithLimit(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithShuffler sets the option-order shuffler.
func WithShuffler(s *shuffle.Shuffler) Option {
	return func(l *Loop) { l.shuffler = s }
}

// WithLogger sets the logger for skipped items and failed reports.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop returns a Loop over svc's due queue. Call Refresh to load it.
func NewLoop(svc progress.Service, opts ...Option) *Loop {
	l := &Loop{
		svc:      svc,
		shuffler: shuffle.New(),
		logger:   slog.Default(),
		limit:    DefaultLimit,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Refresh refetches the due queue. Items whose question cannot be
// normalized are skipped and logged.
func (l *Loop) Refresh(ctx context.Context) error {
	due, err := l.svc.DueItems(ctx, l.limit)
	if err != nil {
		return err
	}

	items := make([]Item, 0, len(due.Questions))
	skipped := 0
	for _, d := range due.Questions {
		q, err := question.Normalize(d.Question)
		if err != nil {
			skipped++
			l.logger.Warn("skipping malformed review item", "question_id", d.QuestionID, "err", err)
			continue
		}
		items = append(items, Item{
			QuestionID:   d.QuestionID,
			BookID:       d.BookID,
			ModuleID:     d.ModuleID,
			ErrorCount:   d.ErrorCount,
			IntervalDays: d.ReviewIntervalDays,
			Question:     q,
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
	l.totalDue = due.TotalDue
	l.skipped = skipped
	l.loaded = true
	l.options = nil
	if len(items) > 0 {
		l.options = shuffle.Shuffle(l.shuffler, items[0].Question.Options)
	}
	return nil
}

// Current returns the item being presented.
func (l *Loop) Current() (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return Item{}, false
	}
	return l.items[0], true
}

// Options returns the current item's options in display order.
func (l *Loop) Options() []question.Option {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.options
}

// TotalDue is the service's due count at the last refresh.
func (l *Loop) TotalDue() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalDue
}

// Remaining is the number of presentable items at the last refresh.
func (l *Loop) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Skipped counts items dropped at the last refresh.
func (l *Loop) Skipped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.skipped
}

// Done reports whether the queue has been loaded and is empty.
func (l *Loop) Done() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded && len(l.items) == 0
}

// Answer grades optionID against the current item, reports the result and
// refetches the queue. The answered item leaves the local queue either way.
// A failed report is logged and carried in the Outcome; only a failed
// refetch is returned as an error.
func (l *Loop) Answer(ctx context.Context, optionID string) (Outcome, error) {
	l.mu.Lock()
	if l.inflight {
		l.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	if len(l.items) == 0 {
		l.mu.Unlock()
		return Outcome{}, ErrNoItem
	}
	item := l.items[0]
	l.inflight = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.inflight = false
		l.mu.Unlock()
	}()

	q := item.Question
	out := Outcome{
		QuestionID:    item.QuestionID,
		Selected:      optionID,
		Correct:       q.IsCorrect(optionID),
		CorrectOption: q.CorrectOption(),
		Explanation:   q.Explanation,
	}
	if !out.Correct {
		if we, ok := q.WrongExplanationFor(optionID); ok {
			out.WrongExplanation = &we
		}
	}

	ack, err := l.svc.SubmitReview(ctx, progress.ReviewAnswer{
		QuestionID: item.QuestionID,
		WasCorrect: out.Correct,
	})
	if err != nil {
		out.ReportErr = err
		l.logger.Warn("review report failed", "question_id", item.QuestionID, "was_correct", out.Correct, "err", err)
	}
	out.Ack = ack

	l.drop(item.QuestionID, err == nil)
	return out, l.Refresh(ctx)
}

// drop removes an answered item from the local queue so a failed refetch
// never presents it again. A reported item also leaves the due count.
func (l *Loop) drop(questionID string, reported bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 || l.items[0].QuestionID != questionID {
		return
	}
	l.items = l.items[1:]
	if reported && l.totalDue > 0 {
		l.totalDue--
	}
	l.options = nil
	if len(l.items) > 0 {
		l.options = shuffle.Shuffle(l.shuffler, l.items[0].Question.Options)
	}
}
