package scoring

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cfaprep/cfaprep/internal/progress"
)

// DefaultReportTimeout bounds one background submission.
const DefaultReportTimeout = 15 * time.Second

// Reporter delivers submissions in the background. A failed delivery is
// logged and dropped; the caller never waits on it.
type Reporter struct {
	svc     progress.Service
	logger  *slog.Logger
	timeout time.Duration

	wg sync.WaitGroup

	mu      sync.Mutex
	onAck   func(progress.Submission, *progress.Result)
	pending int
}

// NewReporter returns a Reporter writing to svc.
func NewReporter(svc progress.Service, logger *slog.Logger, timeout time.Duration) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultReportTimeout
	}
	return &Reporter{svc: svc, logger: logger, timeout: timeout}
}

// OnAck registers fn to be called from the delivery goroutine after the
// service accepted a submission.
func (r *Reporter) OnAck(fn func(progress.Submission, *progress.Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAck = fn
}

// Report sends sub without blocking.
func (r *Reporter) Report(sub progress.Submission) {
	r.mu.Lock()
	r.pending++
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.pending--
			r.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		res, err := r.svc.SubmitResult(ctx, sub)
		if err != nil {
			r.logger.Warn("result submission failed",
				"session_id", sub.SessionID,
				"mode", sub.TestMode,
				"test_type", string(sub.TestType),
				"err", err)
			return
		}
		r.logger.Info("result submitted",
			"session_id", sub.SessionID,
			"mode", sub.TestMode,
			"correct", res.CorrectAnswers,
			"total", res.TotalQuestions)

		r.mu.Lock()
		fn := r.onAck
		r.mu.Unlock()
		if fn != nil {
			fn(sub, res)
		}
	}()
}

// Pending returns the number of deliveries still in flight.
func (r *Reporter) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Wait blocks until every in-flight delivery has finished.
func (r *Reporter) Wait() {
	r.wg.Wait()
}
