package scoring

import (
	"time"

	"github.com/cfaprep/cfaprep/internal/progress"
)

// Meta identifies the session a summary belongs to.
type Meta struct {
	SessionID string
	TestType  progress.TestType
	// Mode is the wire name of the session mode.
	Mode     string
	BookID   int
	ModuleID int
}

// Payload assembles the submission sent to the progress service.
func Payload(s Summary, m Meta) progress.Submission {
	details := make([]progress.QuestionDetail, 0, len(s.Details))
	for _, d := range s.Details {
		pd := progress.QuestionDetail{
			QuestionID:    d.QuestionID,
			CorrectAnswer: d.CorrectAnswer,
			Correct:       d.Correct,
			TimeSpent:     int(d.TimeSpent / time.Second),
		}
		if d.Answered() {
			answer := d.UserAnswer
			pd.UserAnswer = &answer
		}
		details = append(details, pd)
	}
	return progress.Submission{
		SessionID:        m.SessionID,
		TestType:         m.TestType,
		TestMode:         m.Mode,
		BookID:           m.BookID,
		ModuleID:         m.ModuleID,
		TimeSpentSeconds: int(s.Elapsed / time.Second),
		QuestionDetails:  details,
	}
}
