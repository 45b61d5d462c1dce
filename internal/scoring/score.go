// Package scoring turns a finished session into a result summary, the
// feedback message shown with it, and the payload reported to the progress
// service.
package scoring

import (
	"time"

	"github.com/cfaprep/cfaprep/internal/question"
)

// Attempt is one question as it stood at submission. An empty Answer means
// the question was left unanswered.
type Attempt struct {
	Question  question.Question
	Answer    string
	TimeSpent time.Duration
}

// Detail is the per-question outcome.
type Detail struct {
	QuestionID    string
	UserAnswer    string
	CorrectAnswer string
	Correct       bool
	TimeSpent     time.Duration
}

// Answered reports whether an answer was recorded.
func (d Detail) Answered() bool { return d.UserAnswer != "" }

// Summary is the immutable result of one submission.
type Summary struct {
	Correct int
	Total   int
	Percent int
	Elapsed time.Duration
	Details []Detail
}

// Incorrect counts wrong and unanswered questions.
func (s Summary) Incorrect() int { return s.Total - s.Correct }

// Tier classifies the percent into a feedback tier.
func (s Summary) Tier() Tier { return TierFor(s.Percent) }

// Message is the feedback text for the summary's tier.
func (s Summary) Message() string { return s.Tier().Message() }

// Score computes the summary of attempts in session order. Unanswered
// counts as incorrect.
func Score(attempts []Attempt, elapsed time.Duration) Summary {
	sum := Summary{
		Total:   len(attempts),
		Elapsed: elapsed,
		Details: make([]Detail, 0, len(attempts)),
	}
	for _, a := range attempts {
		correct := a.Question.IsCorrect(a.Answer)
		if correct {
			sum.Correct++
		}
		sum.Details = append(sum.Details, Detail{
			QuestionID:    a.Question.ID,
			UserAnswer:    a.Answer,
			CorrectAnswer: a.Question.CorrectOptionID,
			Correct:       correct,
			TimeSpent:     a.TimeSpent,
		})
	}
	sum.Percent = Percent(sum.Correct, sum.Total)
	return sum
}

// Percent returns 100*correct/total rounded half up, 0 when total is 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
