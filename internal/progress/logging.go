package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/cfaprep/cfaprep/internal/question"
)

// LoggingService is a decorator that records every service call with its
// latency and outcome.
type LoggingService struct {
	inner  Service
	logger *slog.Logger
}

// WithLogging wraps a Service with structured call logging.
func WithLogging(s Service, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingService{inner: s, logger: logger}
}

func (l *LoggingService) ModuleQuestions(ctx context.Context, bookID, moduleID int) ([]question.Raw, error) {
	start := time.Now()
	qs, err := l.inner.ModuleQuestions(ctx, bookID, moduleID)
	l.log(ctx, "module_questions", start, err,
		slog.Int("book_id", bookID), slog.Int("module_id", moduleID), slog.Int("count", len(qs)))
	return qs, err
}

func (l *LoggingService) BookQuestions(ctx context.Context, bookID, limit int) ([]question.Raw, error) {
	start := time.Now()
	qs, err := l.inner.BookQuestions(ctx, bookID, limit)
	l.log(ctx, "book_questions", start, err,
		slog.Int("book_id", bookID), slog.Int("limit", limit), slog.Int("count", len(qs)))
	return qs, err
}

func (l *LoggingService) MockExam(ctx context.Context) ([]question.Raw, error) {
	start := time.Now()
	qs, err := l.inner.MockExam(ctx)
	l.log(ctx, "mock_exam", start, err, slog.Int("count", len(qs)))
	return qs, err
}

func (l *LoggingService) BookInfo(ctx context.Context, bookID int) (*BookInfo, error) {
	start := time.Now()
	info, err := l.inner.BookInfo(ctx, bookID)
	attrs := []slog.Attr{slog.Int("book_id", bookID)}
	if info != nil {
		attrs = append(attrs, slog.Int("modules", len(info.Modules)))
	}
	l.log(ctx, "book_info", start, err, attrs...)
	return info, err
}

func (l *LoggingService) DueItems(ctx context.Context, limit int) (*DueList, error) {
	start := time.Now()
	due, err := l.inner.DueItems(ctx, limit)
	attrs := []slog.Attr{slog.Int("limit", limit)}
	if due != nil {
		attrs = append(attrs, slog.Int("total_due", due.TotalDue))
	}
	l.log(ctx, "due_items", start, err, attrs...)
	return due, err
}

func (l *LoggingService) SubmitResult(ctx context.Context, s Submission) (*Result, error) {
	start := time.Now()
	res, err := l.inner.SubmitResult(ctx, s)
	l.log(ctx, "submit_result", start, err,
		slog.String("session_id", s.SessionID),
		slog.String("test_type", string(s.TestType)),
		slog.String("mode", s.TestMode),
		slog.Int("questions", len(s.QuestionDetails)))
	return res, err
}

func (l *LoggingService) SubmitReview(ctx context.Context, a ReviewAnswer) (*ReviewAck, error) {
	start := time.Now()
	ack, err := l.inner.SubmitReview(ctx, a)
	l.log(ctx, "submit_review", start, err,
		slog.String("question_id", a.QuestionID), slog.Bool("was_correct", a.WasCorrect))
	return ack, err
}

func (l *LoggingService) History(ctx context.Context, limit int) ([]Result, error) {
	start := time.Now()
	rs, err := l.inner.History(ctx, limit)
	l.log(ctx, "history", start, err, slog.Int("count", len(rs)))
	return rs, err
}

func (l *LoggingService) ErrorStats(ctx context.Context) (*ErrorStats, error) {
	start := time.Now()
	st, err := l.inner.ErrorStats(ctx)
	l.log(ctx, "error_stats", start, err)
	return st, err
}

func (l *LoggingService) Progress(ctx context.Context) (*Overview, error) {
	start := time.Now()
	ov, err := l.inner.Progress(ctx)
	l.log(ctx, "progress", start, err)
	return ov, err
}

func (l *LoggingService) log(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	attrs = append(attrs,
		slog.String("op", op),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()))
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		l.logger.LogAttrs(ctx, slog.LevelWarn, "progress call failed", attrs...)
		return
	}
	l.logger.LogAttrs(ctx, slog.LevelDebug, "progress call", attrs...)
}
