// Package progress is the boundary to the question/progress service: the
// source of question banks and due review items, and the sink for test
// results and review answers.
package progress

import (
	"context"
	"time"

	"github.com/cfaprep/cfaprep/internal/question"
)

// TestType identifies what a submitted test was drawn from.
type TestType string

const (
	TestModule   TestType = "module"
	TestBook     TestType = "book"
	TestMockExam TestType = "mock_exam"
)

// Service is everything the engine reads from and writes to the remote side.
type Service interface {
	// ModuleQuestions returns the question bank of one module.
	ModuleQuestions(ctx context.Context, bookID, moduleID int) ([]question.Raw, error)
	// BookQuestions returns up to limit questions sampled across a book.
	BookQuestions(ctx context.Context, bookID, limit int) ([]question.Raw, error)
	// MockExam returns an already selected and shuffled exam set.
	MockExam(ctx context.Context) ([]question.Raw, error)
	// BookInfo lists a book's modules with their names and question counts.
	BookInfo(ctx context.Context, bookID int) (*BookInfo, error)
	// DueItems returns review items that are due now, oldest first.
	DueItems(ctx context.Context, limit int) (*DueList, error)

	SubmitResult(ctx context.Context, s Submission) (*Result, error)
	SubmitReview(ctx context.Context, a ReviewAnswer) (*ReviewAck, error)

	History(ctx context.Context, limit int) ([]Result, error)
	ErrorStats(ctx context.Context) (*ErrorStats, error)
	Progress(ctx context.Context) (*Overview, error)
}

// BookInfo is the catalog entry of one book.
type BookInfo struct {
	BookID   int          `json:"book_id"`
	BookName string       `json:"book_name"`
	Modules  []ModuleInfo `json:"learning_modules"`
}

// ModuleInfo describes one module of a book.
type ModuleInfo struct {
	ModuleID      int    `json:"module_id"`
	ModuleName    string `json:"module_name"`
	QuestionCount int    `json:"question_count"`
}

// DueList is the review queue as returned by the service.
type DueList struct {
	TotalDue  int       `json:"total_due"`
	Questions []DueItem `json:"questions"`
}

// DueItem is one previously missed question scheduled for replay.
type DueItem struct {
	QuestionID         string       `json:"question_id"`
	BookID             int          `json:"book_id"`
	ModuleID           int          `json:"module_id"`
	ErrorCount         int          `json:"error_count"`
	ReviewIntervalDays int          `json:"review_interval_days"`
	Question           question.Raw `json:"question"`
}

// Submission is the payload sent when a test session is submitted.
type Submission struct {
	SessionID        string           `json:"session_id,omitempty"`
	TestType         TestType         `json:"test_type"`
	TestMode         string           `json:"test_mode"`
	BookID           int              `json:"book_id"`
	ModuleID         int              `json:"module_id"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	QuestionDetails  []QuestionDetail `json:"question_details"`
}

// QuestionDetail is the per-question outcome inside a Submission. A nil
// UserAnswer means the question was left unanswered.
type QuestionDetail struct {
	QuestionID    string  `json:"question_id"`
	UserAnswer    *string `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Correct       bool    `json:"correct"`
	TimeSpent     int     `json:"time_spent"`
}

// Result is a stored test result.
type Result struct {
	ID               string           `json:"id"`
	TestType         TestType         `json:"test_type"`
	TestMode         string           `json:"test_mode"`
	BookID           int              `json:"book_id"`
	ModuleID         int              `json:"module_id"`
	TotalQuestions   int              `json:"total_questions"`
	CorrectAnswers   int              `json:"correct_answers"`
	ScorePercent     float64          `json:"score_percent"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	CreatedAt        time.Time        `json:"created_at"`
	ModuleUnlocked   bool             `json:"module_unlocked,omitempty"`
	QuestionDetails  []QuestionDetail `json:"question_details,omitempty"`
}

// ReviewAnswer reports the outcome of one replayed review item.
type ReviewAnswer struct {
	QuestionID string `json:"question_id"`
	WasCorrect bool   `json:"was_correct"`
}

// ReviewAck is the service's new schedule for a reviewed item.
type ReviewAck struct {
	QuestionID      string    `json:"question_id"`
	NewIntervalDays int       `json:"new_interval_days"`
	NextReviewAt    time.Time `json:"next_review_at"`
	TotalErrors     int       `json:"total_errors"`
}

// ErrorStats summarizes the learner's error records.
type ErrorStats struct {
	TotalErrors int `json:"total_errors"`
	DueToday    int `json:"due_today"`
	// Mastered counts errors whose interval reached 30 days.
	Mastered int         `json:"mastered"`
	ByBook   map[int]int `json:"by_book"`
}

// ModuleProgress is the service's mastery record for one module.
type ModuleProgress struct {
	BookID           int        `json:"book_id"`
	ModuleID         int        `json:"module_id"`
	QuestionsSeen    int        `json:"questions_seen"`
	QuestionsCorrect int        `json:"questions_correct"`
	MasteryPercent   float64    `json:"mastery_percent"`
	IsUnlocked       bool       `json:"is_unlocked"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// BookProgress aggregates the module records of one book.
type BookProgress struct {
	BookID                int              `json:"book_id"`
	TotalQuestionsSeen    int              `json:"total_questions_seen"`
	TotalQuestionsCorrect int              `json:"total_questions_correct"`
	Modules               []ModuleProgress `json:"modules"`
}

// Overview is the learner's progress across all books.
type Overview struct {
	TotalQuestionsSeen    int            `json:"total_questions_seen"`
	TotalQuestionsCorrect int            `json:"total_questions_correct"`
	OverallMastery        float64        `json:"overall_mastery"`
	BooksStarted          int            `json:"books_started"`
	Books                 []BookProgress `json:"books_progress"`
}
