package progress

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cfaprep/cfaprep/internal/question"
)

// RetryConfig configures retry behavior for transient read failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry settings used when none are given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryService is a decorator that retries reads with exponential backoff
// and jitter. Writes are passed through untouched: a failed submission is
// reported to the caller once and never replayed.
type RetryService struct {
	inner  Service
	config RetryConfig
}

// WithRetry wraps a Service with retry logic for its read operations.
func WithRetry(s Service, cfg RetryConfig) Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryService{inner: s, config: cfg}
}

func (r *RetryService) ModuleQuestions(ctx context.Context, bookID, moduleID int) ([]question.Raw, error) {
	return retry(ctx, r.config, func(ctx context.Context) ([]question.Raw, error) {
		return r.inner.ModuleQuestions(ctx, bookID, moduleID)
	})
}

func (r *RetryService) BookQuestions(ctx context.Context, bookID, limit int) ([]question.Raw, error) {
	return retry(ctx, r.config, func(ctx context.Context) ([]question.Raw, error) {
		return r.inner.BookQuestions(ctx, bookID, limit)
	})
}

func (r *RetryService) MockExam(ctx context.Context) ([]question.Raw, error) {
	return retry(ctx, r.config, r.inner.MockExam)
}

func (r *RetryService) BookInfo(ctx context.Context, bookID int) (*BookInfo, error) {
	return retry(ctx, r.config, func(ctx context.Context) (*BookInfo, error) {
		return r.inner.BookInfo(ctx, bookID)
	})
}

func (r *RetryService) DueItems(ctx context.Context, limit int) (*DueList, error) {
	return retry(ctx, r.config, func(ctx context.Context) (*DueList, error) {
		return r.inner.DueItems(ctx, limit)
	})
}

func (r *RetryService) SubmitResult(ctx context.Context, s Submission) (*Result, error) {
	return r.inner.SubmitResult(ctx, s)
}

func (r *RetryService) SubmitReview(ctx context.Context, a ReviewAnswer) (*ReviewAck, error) {
	return r.inner.SubmitReview(ctx, a)
}

func (r *RetryService) History(ctx context.Context, limit int) ([]Result, error) {
	return retry(ctx, r.config, func(ctx context.Context) ([]Result, error) {
		return r.inner.History(ctx, limit)
	})
}

func (r *RetryService) ErrorStats(ctx context.Context) (*ErrorStats, error) {
	return retry(ctx, r.config, r.inner.ErrorStats)
}

func (r *RetryService) Progress(ctx context.Context) (*Overview, error) {
	return retry(ctx, r.config, r.inner.Progress)
}

func retry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := range cfg.MaxAttempts {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		// Last attempt, don't sleep.
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff(cfg, attempt)):
		}
	}
	return zero, lastErr
}

// backoff computes the wait before the attempt after the given one.
func backoff(cfg RetryConfig, attempt int) time.Duration {
	wait := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt))
	if wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
