// Package session is the test-session state machine: it owns the drawn
// question list, the current position, recorded answers and flags, gates
// every user action by mode, and drives the session timer.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/scoring"
	"github.com/cfaprep/cfaprep/internal/shuffle"
	"github.com/cfaprep/cfaprep/internal/timer"
)

// Reporter receives the submission of every completed session. Delivery is
// the reporter's business; Submit never waits for it.
type Reporter interface {
	Report(sub progress.Submission)
}

// Config holds a Session's collaborators. Zero fields get defaults.
type Config struct {
	Clock    timer.Clock
	Shuffler *shuffle.Shuffler
	Reporter Reporter
	// OnTick receives every timer signal.
	OnTick func(timer.Signal)
	// NewID generates session ids.
	NewID func() string
}

// Session is one attempt at a set of questions under one mode. It is owned
// by a single caller and is not safe for concurrent use; the timer callback
// only forwards signals and never touches session state.
type Session struct {
	clock    timer.Clock
	shuffler *shuffle.Shuffler
	reporter Reporter
	timer    *timer.Timer
	newID    func() string

	id     string
	phase  Phase
	mode   Mode
	source Source

	drawn     []question.Question
	questions []question.Question
	index     int
	options   []question.Option

	answers   map[string]string
	disclosed map[string]bool
	flagged   map[int]bool
	dwell     map[string]time.Duration

	startedAt         time.Time
	questionStartedAt time.Time
	enteredAt         time.Time

	summary *scoring.Summary
}

// New returns an idle Session.
func New(cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = timer.SystemClock{}
	}
	if cfg.Shuffler == nil {
		cfg.Shuffler = shuffle.New()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Session{
		clock:    cfg.Clock,
		shuffler: cfg.Shuffler,
		reporter: cfg.Reporter,
		timer:    timer.New(cfg.Clock, cfg.OnTick),
		newID:    cfg.NewID,
	}
}

// BeginLoading marks the session as waiting for its questions. Any active
// attempt is abandoned first.
func (s *Session) BeginLoading(src Source) {
	s.reset()
	s.source = src
	s.phase = PhaseLoading
}

// Start begins a new attempt. Questions are shuffled unless src is
// pre-shuffled. A running attempt is abandoned first. On error the session
// is left idle with no timer running.
func (s *Session) Start(src Source, questions []question.Question, mode Mode) error {
	s.reset()
	s.source = src
	s.mode = mode

	if len(questions) == 0 {
		return ErrEmptyQuestionSet
	}
	for _, q := range questions {
		if !q.HasOption(q.CorrectOptionID) {
			return fmt.Errorf("question %s: %w", q.ID, question.ErrCorrectOptionMissing)
		}
	}

	s.drawn = append([]question.Question(nil), questions...)
	if src.PreShuffled {
		s.questions = append([]question.Question(nil), questions...)
	} else {
		s.questions = shuffle.Shuffle(s.shuffler, questions)
	}

	now := s.clock.Now()
	s.id = s.newID()
	s.phase = PhaseActive
	s.startedAt = now
	s.questionStartedAt = now
	s.enter(0)

	if policy, ok := mode.Policy(); ok {
		ref := s.startedAt
		if policy == timer.CountDown {
			ref = s.questionStartedAt
		}
		s.timer.Start(policy, ref)
	}
	return nil
}

// Retry restarts a completed attempt over the same questions and mode with
// a fresh order.
func (s *Session) Retry() error {
	if s.phase != PhaseCompleted {
		return ErrNotActive
	}
	return s.Start(s.source, s.drawn, s.mode)
}

// Abandon stops the timer and discards the attempt.
func (s *Session) Abandon() {
	s.reset()
}

func (s *Session) reset() {
	s.timer.Stop()
	s.id = ""
	s.phase = PhaseIdle
	s.drawn = nil
	s.questions = nil
	s.options = nil
	s.index = 0
	s.answers = make(map[string]string)
	s.disclosed = make(map[string]bool)
	s.flagged = make(map[int]bool)
	s.dwell = make(map[string]time.Duration)
	s.summary = nil
}

// SelectAnswer records optionID for the current question, overwriting any
// earlier choice. In NinetySecond mode the result is disclosed at once and
// returned; otherwise the Disclosure is nil.
func (s *Session) SelectAnswer(optionID string) (*Disclosure, error) {
	if s.phase != PhaseActive {
		return nil, ErrNotActive
	}
	q := s.questions[s.index]
	if !q.HasOption(optionID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOption, optionID)
	}
	if s.disclosed[q.ID] {
		return nil, ErrAnswerLocked
	}

	s.answers[q.ID] = optionID
	if s.mode != NinetySecond {
		return nil, nil
	}
	s.disclosed[q.ID] = true
	d := disclose(q, optionID)
	return &d, nil
}

// CheckAnswer discloses the current question's result in Learning mode.
// Checking an already checked question returns the same disclosure.
func (s *Session) CheckAnswer() (*Disclosure, error) {
	if s.phase != PhaseActive {
		return nil, ErrNotActive
	}
	if s.mode != Learning {
		return nil, ErrCheckNotAllowed
	}
	q := s.questions[s.index]
	answer, ok := s.answers[q.ID]
	if !ok {
		return nil, ErrNoAnswerSelected
	}
	s.disclosed[q.ID] = true
	d := disclose(q, answer)
	return &d, nil
}

// Next moves forward. On the last question it submits instead and returns
// the summary.
func (s *Session) Next() (*scoring.Summary, error) {
	if s.phase != PhaseActive {
		return nil, ErrNotActive
	}
	if s.index == len(s.questions)-1 {
		return s.Submit()
	}
	s.move(s.index + 1)
	if s.mode == NinetySecond {
		s.questionStartedAt = s.clock.Now()
		s.timer.Reset(s.questionStartedAt)
	}
	return nil, nil
}

// Prev moves back one question. It reports whether the move happened: it
// never does in NinetySecond mode or at the first question.
func (s *Session) Prev() bool {
	if s.phase != PhaseActive || s.mode == NinetySecond || s.index == 0 {
		return false
	}
	s.move(s.index - 1)
	return true
}

// JumpTo moves to index i. Only Standard mode allows it; an out-of-range
// index is ignored.
func (s *Session) JumpTo(i int) bool {
	if s.phase != PhaseActive || s.mode != Standard || i < 0 || i >= len(s.questions) {
		return false
	}
	if i != s.index {
		s.move(i)
	}
	return true
}

// ToggleFlag flips the current question's review flag. Flags have no
// scoring effect and are unavailable in NinetySecond mode.
func (s *Session) ToggleFlag() bool {
	if s.phase != PhaseActive || s.mode == NinetySecond {
		return false
	}
	if s.flagged[s.index] {
		delete(s.flagged, s.index)
	} else {
		s.flagged[s.index] = true
	}
	return true
}

// Submit ends the attempt: it stops the timer, scores every question in
// session order, hands the payload to the reporter and moves to Completed.
// A second call returns ErrNotActive.
func (s *Session) Submit() (*scoring.Summary, error) {
	if s.phase != PhaseActive {
		return nil, ErrNotActive
	}
	s.timer.Stop()
	s.leave()

	attempts := make([]scoring.Attempt, len(s.questions))
	for i, q := range s.questions {
		attempts[i] = scoring.Attempt{
			Question:  q,
			Answer:    s.answers[q.ID],
			TimeSpent: s.dwell[q.ID],
		}
	}
	sum := scoring.Score(attempts, s.clock.Now().Sub(s.startedAt))
	s.summary = &sum
	s.phase = PhaseCompleted

	if s.reporter != nil {
		s.reporter.Report(scoring.Payload(sum, scoring.Meta{
			SessionID: s.id,
			TestType:  s.source.TestType,
			Mode:      s.mode.WireName(),
			BookID:    s.source.BookID,
			ModuleID:  s.source.ModuleID,
		}))
	}
	return &sum, nil
}

func (s *Session) move(i int) {
	s.leave()
	s.enter(i)
}

// enter makes i the current question and draws a fresh option order.
func (s *Session) enter(i int) {
	s.index = i
	s.enteredAt = s.clock.Now()
	s.options = shuffle.Shuffle(s.shuffler, s.questions[i].Options)
}

func (s *Session) leave() {
	if len(s.questions) == 0 {
		return
	}
	id := s.questions[s.index].ID
	if d := s.clock.Now().Sub(s.enteredAt); d > 0 {
		s.dwell[id] += d
	}
	s.enteredAt = s.clock.Now()
}
