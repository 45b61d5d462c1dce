package session

import (
	"time"

	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/scoring"
	"github.com/cfaprep/cfaprep/internal/timer"
)

// Disclosure is the result of one question shown to the learner.
type Disclosure struct {
	QuestionID       string
	Selected         string
	Correct          bool
	CorrectOption    question.Option
	Explanation      string
	Formula          string
	WrongExplanation *question.WrongExplanation
	CalculatorSteps  []string
}

func disclose(q question.Question, selected string) Disclosure {
	d := Disclosure{
		QuestionID:      q.ID,
		Selected:        selected,
		Correct:         q.IsCorrect(selected),
		CorrectOption:   q.CorrectOption(),
		Explanation:     q.Explanation,
		Formula:         q.ExplanationFormula,
		CalculatorSteps: q.CalculatorSteps,
	}
	if !d.Correct {
		if we, ok := q.WrongExplanationFor(selected); ok {
			d.WrongExplanation = &we
		}
	}
	return d
}

// Capabilities are the operations the view may offer right now.
type Capabilities struct {
	Select bool
	Check  bool
	Prev   bool
	Next   bool
	// NextSubmits is set when Next would submit.
	NextSubmits bool
	Jump        bool
	Flag        bool
	Submit      bool
}

// Capabilities reports the allowed operations for the current state.
func (s *Session) Capabilities() Capabilities {
	if s.phase != PhaseActive {
		return Capabilities{}
	}
	id := s.questions[s.index].ID
	_, answered := s.answers[id]
	return Capabilities{
		Select:      !s.disclosed[id],
		Check:       s.mode == Learning && answered && !s.disclosed[id],
		Prev:        s.mode != NinetySecond && s.index > 0,
		Next:        true,
		NextSubmits: s.index == len(s.questions)-1,
		Jump:        s.mode == Standard,
		Flag:        s.mode != NinetySecond,
		Submit:      true,
	}
}

// Dot is one entry of the position navigator.
type Dot struct {
	Current bool
	State   QuestionState
	Flagged bool
}

// Dots returns the navigator state for every question in session order.
func (s *Session) Dots() []Dot {
	dots := make([]Dot, len(s.questions))
	for i := range s.questions {
		dots[i] = Dot{
			Current: i == s.index,
			State:   s.QuestionState(i),
			Flagged: s.flagged[i],
		}
	}
	return dots
}

// QuestionState returns the sub-state of question i.
func (s *Session) QuestionState(i int) QuestionState {
	if i < 0 || i >= len(s.questions) {
		return Unanswered
	}
	id := s.questions[i].ID
	if _, ok := s.answers[id]; !ok {
		return Unanswered
	}
	if s.mode == Learning && s.disclosed[id] {
		return Checked
	}
	return Answered
}

func (s *Session) ID() string     { return s.id }
func (s *Session) Phase() Phase   { return s.phase }
func (s *Session) Mode() Mode     { return s.mode }
func (s *Session) Source() Source { return s.source }
func (s *Session) Index() int     { return s.index }
func (s *Session) Len() int       { return len(s.questions) }

// Current returns the question at the current index.
func (s *Session) Current() (question.Question, bool) {
	if s.phase != PhaseActive {
		return question.Question{}, false
	}
	return s.questions[s.index], true
}

// Questions returns the questions in session order.
func (s *Session) Questions() []question.Question { return s.questions }

// Options returns the current question's options in display order. The
// order is redrawn every time a question is entered.
func (s *Session) Options() []question.Option { return s.options }

// Answer returns the recorded answer for question id.
func (s *Session) Answer(id string) (string, bool) {
	a, ok := s.answers[id]
	return a, ok
}

// Disclosure returns the current question's disclosure if its result has
// been revealed.
func (s *Session) Disclosure() (*Disclosure, bool) {
	q, ok := s.Current()
	if !ok || !s.disclosed[q.ID] {
		return nil, false
	}
	d := disclose(q, s.answers[q.ID])
	return &d, true
}

// Flagged reports whether question i is flagged.
func (s *Session) Flagged(i int) bool { return s.flagged[i] }

// Answered counts recorded answers.
func (s *Session) Answered() int { return len(s.answers) }

// Summary returns the result after Submit.
func (s *Session) Summary() (*scoring.Summary, bool) {
	return s.summary, s.summary != nil
}

// Signal returns the timer's current signal; ok is false when no timer runs.
func (s *Session) Signal() (timer.Signal, bool) {
	return s.timer.Current()
}

// TimerRunning reports whether the session timer is live.
func (s *Session) TimerRunning() bool { return s.timer.Running() }

// Elapsed is the time since the attempt started.
func (s *Session) Elapsed() time.Duration {
	if s.phase != PhaseActive {
		return 0
	}
	return s.clock.Now().Sub(s.startedAt)
}
