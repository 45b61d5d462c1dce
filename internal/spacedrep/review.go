package spacedrep

import "time"

// ReviewState holds the spaced repetition state for a single missed question.
type ReviewState struct {
	QuestionID    string     `json:"question_id"`
	BookID        int        `json:"book_id"`
	ModuleID      int        `json:"module_id"`
	ErrorCount    int        `json:"error_count"`
	IntervalDays  int        `json:"review_interval_days"`
	NextReviewAt  time.Time  `json:"next_review_at"`
	LastErrorAt   *time.Time `json:"last_error_at,omitempty"`
	LastCorrectAt *time.Time `json:"last_correct_at,omitempty"`
}

// NewReviewState starts tracking a question missed at now. It is due
// immediately.
func NewReviewState(questionID string, bookID, moduleID int, now time.Time) *ReviewState {
	rs := &ReviewState{QuestionID: questionID, BookID: bookID, ModuleID: moduleID}
	rs.RecordError(now)
	return rs
}

// RecordError registers a wrong answer given inside a test. The question
// drops back to the first rung and becomes due right away.
func (rs *ReviewState) RecordError(now time.Time) {
	rs.ErrorCount++
	rs.LastErrorAt = &now
	rs.IntervalDays = Intervals[0]
	rs.NextReviewAt = now
}

// RecordCorrect registers a correct answer, inside a test or a review, and
// climbs one rung.
func (rs *ReviewState) RecordCorrect(now time.Time) {
	rs.LastCorrectAt = &now
	rs.IntervalDays = NextInterval(rs.IntervalDays)
	rs.NextReviewAt = now.AddDate(0, 0, rs.IntervalDays)
}

// RecordReview applies the outcome of a review answer. A wrong review answer
// resets to the first rung but, unlike RecordError, schedules the next
// review one interval out.
func (rs *ReviewState) RecordReview(correct bool, now time.Time) {
	if correct {
		rs.RecordCorrect(now)
		return
	}
	rs.ErrorCount++
	rs.LastErrorAt = &now
	rs.IntervalDays = Intervals[0]
	rs.NextReviewAt = now.AddDate(0, 0, rs.IntervalDays)
}

// IsDue returns true if the question is due for review (at or past the review date).
func (rs *ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewAt)
}

// OverdueDays returns how many days past due the question is. Returns 0 if not yet due.
func (rs *ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReviewAt) {
		return 0
	}
	return now.Sub(rs.NextReviewAt).Hours() / 24.0
}

// IsOverdueThreshold returns true if the question has been due for longer
// than half its interval.
func (rs *ReviewState) IsOverdueThreshold(now time.Time) bool {
	if !rs.IsDue(now) {
		return false
	}
	graceHours := float64(rs.IntervalDays) * 0.5 * 24.0
	threshold := rs.NextReviewAt.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// Mastered reports whether the question has climbed to a long interval.
func (rs *ReviewState) Mastered() bool {
	return rs.IntervalDays >= MasteredIntervalDays
}

// ReviewStatus describes a question's review status for display.
type ReviewStatus string

const (
	ReviewNotDue   ReviewStatus = "not_due"
	ReviewDue      ReviewStatus = "due"
	ReviewOverdue  ReviewStatus = "overdue"
	ReviewMastered ReviewStatus = "mastered"
)

// Status returns the review status for UI display.
func (rs *ReviewState) Status(now time.Time) ReviewStatus {
	if rs.IsOverdueThreshold(now) {
		return ReviewOverdue
	}
	if rs.IsDue(now) {
		return ReviewDue
	}
	if rs.Mastered() {
		return ReviewMastered
	}
	return ReviewNotDue
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (rs *ReviewState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return int(rs.NextReviewAt.Sub(now).Hours()/24.0) + 1
}
