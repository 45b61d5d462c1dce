package store

import (
	"context"
	"encoding/json"
	"time"
)

// TestResult is one submitted test attempt.
type TestResult struct {
	ID               string
	SessionID        string
	TestType         string
	TestMode         string
	BookID           *int
	ModuleID         *int
	TotalQuestions   int
	CorrectAnswers   int
	ScorePercent     float64
	TimeSpentSeconds int
	Details          json.RawMessage
	CreatedAt        time.Time
}

// ErrorRecord tracks a question the learner has answered wrong at least once
// and when it is next due for review.
type ErrorRecord struct {
	QuestionID    string
	BookID        int
	ModuleID      int
	ErrorCount    int
	LastErrorAt   *time.Time
	LastCorrectAt *time.Time
	NextReviewAt  time.Time
	IntervalDays  int
}

// ModuleProgress is the learner's standing on one module.
type ModuleProgress struct {
	BookID           int
	ModuleID         int
	QuestionsSeen    int
	QuestionsCorrect int
	MasteryPercent   float64
	Unlocked         bool
	CompletedAt      *time.Time
	UpdatedAt        time.Time
}

// ResultRepo stores submitted test results.
type ResultRepo interface {
	// Save stores a result. An empty ID is filled with a new UUID.
	Save(ctx context.Context, r *TestResult) error

	// Latest returns up to limit results, newest first (0 = unlimited).
	Latest(ctx context.Context, limit int) ([]TestResult, error)

	// Count returns the number of stored results.
	Count(ctx context.Context) (int, error)
}

// ErrorRepo manages error records and their review schedule.
type ErrorRepo interface {
	// Get returns the record for questionID, or nil if none exists.
	Get(ctx context.Context, questionID string) (*ErrorRecord, error)

	// Put inserts or replaces the record keyed by its QuestionID.
	Put(ctx context.Context, rec *ErrorRecord) error

	// Due returns records with NextReviewAt <= now, oldest first.
	Due(ctx context.Context, now time.Time, limit int) ([]ErrorRecord, error)

	// CountDue returns how many records are due at now.
	CountDue(ctx context.Context, now time.Time) (int, error)

	// MostFrequent returns records ordered by descending error count.
	MostFrequent(ctx context.Context, limit int) ([]ErrorRecord, error)

	// All returns every record.
	All(ctx context.Context) ([]ErrorRecord, error)
}

// ProgressRepo manages per-module progress rows.
type ProgressRepo interface {
	// Get returns the row for a module, or nil if none exists.
	Get(ctx context.Context, bookID, moduleID int) (*ModuleProgress, error)

	// Put inserts or replaces the row keyed by book and module.
	Put(ctx context.Context, p *ModuleProgress) error

	// All returns every row ordered by book then module.
	All(ctx context.Context) ([]ModuleProgress, error)
}
