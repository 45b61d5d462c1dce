// Package test is the screen a practice test is taken on. It owns one
// session.Session and pumps its timer from the Bubble Tea tick loop, so
// every session transition happens on the UI goroutine.
package test

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/scoring"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/screens/results"
	sess "github.com/cfaprep/cfaprep/internal/session"
	"github.com/cfaprep/cfaprep/internal/timer"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
)

type overlay int

const (
	overlayNone overlay = iota
	overlayQuit
	overlaySubmit
	overlayJump
)

// TestScreen runs one session.
type TestScreen struct {
	env    screen.Env
	loader *sess.Loader
	src    sess.Source
	mode   sess.Mode

	clock   *timer.ManualClock
	session *sess.Session
	signal  timer.Signal
	ticking bool
	tickGen int

	options components.OptionList
	jump    components.NumberInput
	overlay overlay
	warning string
	errMsg  string
}

var _ screen.Screen = (*TestScreen)(nil)
var _ screen.KeyHintProvider = (*TestScreen)(nil)
var _ screen.Closer = (*TestScreen)(nil)

// New creates a test screen for src. Mock exams always run in the
// ninety-second mode.
func New(env screen.Env, src sess.Source, mode sess.Mode) *TestScreen {
	env = env.WithDefaults()
	if src.TestType == progress.TestMockExam {
		mode = sess.NinetySecond
	}
	s := &TestScreen{
		env:    env,
		loader: sess.NewLoader(env.Service),
		src:    src,
		mode:   mode,
		clock:  timer.NewManualClock(env.Now()),
		jump:   components.NewNumberInput("question #", 4),
	}
	s.session = sess.New(sess.Config{
		Clock:    s.clock,
		Shuffler: env.Shuffler,
		Reporter: env.Reporter,
		OnTick:   func(sig timer.Signal) { s.signal = sig },
	})
	return s
}

// Session exposes the underlying session for inspection.
func (s *TestScreen) Session() *sess.Session { return s.session }

func (s *TestScreen) Init() tea.Cmd {
	s.session.BeginLoading(s.src)
	loader, src := s.loader, s.src
	return func() tea.Msg {
		qs, err := loader.Fetch(context.Background(), src)
		return loadedMsg{Questions: qs, Err: err}
	}
}

func (s *TestScreen) Title() string {
	return fmt.Sprintf("%s · %s", s.src.Title(), s.mode.Label())
}

// Close stops the timer and discards the attempt.
func (s *TestScreen) Close() {
	s.session.Abandon()
	s.ticking = false
}

func (s *TestScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.overlay == overlayQuit:
		return []layout.KeyHint{{Key: "Y", Description: "Leave test"}, {Key: "N", Description: "Keep going"}}
	case s.overlay == overlaySubmit:
		return []layout.KeyHint{{Key: "Y", Description: "Submit"}, {Key: "N", Description: "Keep going"}}
	case s.overlay == overlayJump:
		return []layout.KeyHint{{Key: "Enter", Description: "Go"}, {Key: "Esc", Description: "Cancel"}}
	}
	caps := s.session.Capabilities()
	hints := []layout.KeyHint{{Key: "A-D", Description: "Answer"}}
	if caps.Check {
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Check"})
	}
	if caps.Prev {
		hints = append(hints, layout.KeyHint{Key: "←", Description: "Prev"})
	}
	if caps.NextSubmits {
		hints = append(hints, layout.KeyHint{Key: "→", Description: "Finish"})
	} else if caps.Next {
		hints = append(hints, layout.KeyHint{Key: "→", Description: "Next"})
	}
	if caps.Flag {
		hints = append(hints, layout.KeyHint{Key: "F", Description: "Flag"})
	}
	if caps.Jump {
		hints = append(hints, layout.KeyHint{Key: "G", Description: "Go to"})
	}
	if caps.Submit {
		hints = append(hints, layout.KeyHint{Key: "S", Description: "Submit"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (s *TestScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case tickMsg:
		if msg.gen != s.tickGen {
			return s, nil
		}
		return s.handleTick()
	case results.RetryMsg:
		return s.handleRetry()
	case tea.KeyMsg:
		s.pump()
		return s.handleKey(msg)
	}
	if s.overlay == overlayJump {
		var cmd tea.Cmd
		s.jump, cmd = s.jump.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TestScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if s.session.Phase() != sess.PhaseLoading {
		// Abandoned while loading.
		return s, nil
	}
	if msg.Err != nil {
		s.session.Abandon()
		s.errMsg = msg.Err.Error()
		s.env.Logger.Warn("test load failed", "source", s.src.Title(), "err", msg.Err)
		return s, nil
	}
	s.clock.AdvanceTo(s.env.Now())
	if err := s.session.Start(s.src, msg.Questions, s.mode); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.env.Logger.Info("test started",
		"session_id", s.session.ID(), "source", s.src.Title(),
		"mode", s.mode.String(), "questions", s.session.Len())
	return s, s.enterQuestion()
}

func (s *TestScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.session.Phase() != sess.PhaseActive || !s.session.TimerRunning() {
		s.ticking = false
		return s, nil
	}
	s.pump()
	return s, s.tick()
}

func (s *TestScreen) handleRetry() (screen.Screen, tea.Cmd) {
	s.pump()
	if err := s.session.Retry(); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s, s.enterQuestion()
}

// pump brings the session clock up to the wall clock, firing any due timer
// signals.
func (s *TestScreen) pump() {
	s.clock.AdvanceTo(s.env.Now())
}

// enterQuestion resets per-question view state and keeps the tick loop
// alive while the timer runs.
func (s *TestScreen) enterQuestion() tea.Cmd {
	chosen := ""
	if q, ok := s.session.Current(); ok {
		chosen, _ = s.session.Answer(q.ID)
	}
	s.options = components.NewOptionList(s.session.Options(), chosen)
	s.reveal()
	s.warning = ""
	if sig, ok := s.session.Signal(); ok {
		s.signal = sig
	}
	if s.session.TimerRunning() && !s.ticking {
		s.ticking = true
		s.tickGen++
		return s.tick()
	}
	return nil
}

func (s *TestScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.session.Phase() != sess.PhaseActive {
		if key == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	switch s.overlay {
	case overlayQuit:
		switch key {
		case "y", "Y":
			s.overlay = overlayNone
			s.env.Logger.Info("test abandoned", "session_id", s.session.ID())
			s.Close()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.overlay = overlayNone
		}
		return s, nil
	case overlaySubmit:
		switch key {
		case "y", "Y":
			s.overlay = overlayNone
			return s.finish(s.session.Submit())
		case "n", "N", "esc":
			s.overlay = overlayNone
		}
		return s, nil
	case overlayJump:
		return s.handleJumpKey(msg)
	}

	caps := s.session.Capabilities()
	switch key {
	case "esc":
		s.overlay = overlayQuit
		return s, nil
	case "s", "S":
		s.overlay = overlaySubmit
		return s, nil
	case "right", "l", "n":
		return s.next()
	case "left", "h", "p":
		if s.session.Prev() {
			return s, s.enterQuestion()
		}
		return s, nil
	case "f", "F":
		if caps.Flag {
			s.session.ToggleFlag()
		}
		return s, nil
	case "g", "G":
		if caps.Jump {
			s.overlay = overlayJump
			s.jump.Model.SetValue("")
			return s, s.jump.Focus()
		}
		return s, nil
	case "space", " ":
		return s.check()
	}

	var picked string
	s.options, picked = s.options.Update(msg)
	if picked == "" {
		return s, nil
	}
	if key == "enter" && picked == s.options.Chosen && caps.Check {
		return s.check()
	}
	return s.selectAnswer(picked)
}

func (s *TestScreen) handleJumpKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.overlay = overlayNone
		s.jump.Blur()
		return s, nil
	case "enter":
		s.overlay = overlayNone
		s.jump.Blur()
		n, ok := s.jump.Value()
		if ok && s.session.JumpTo(n-1) {
			return s, s.enterQuestion()
		}
		s.warning = "No such question"
		return s, nil
	}
	var cmd tea.Cmd
	s.jump, cmd = s.jump.Update(msg)
	return s, cmd
}

func (s *TestScreen) selectAnswer(optionID string) (screen.Screen, tea.Cmd) {
	s.warning = ""
	if _, err := s.session.SelectAnswer(optionID); err != nil {
		if errors.Is(err, sess.ErrAnswerLocked) {
			s.warning = "Answer already revealed"
			return s, nil
		}
		s.warning = err.Error()
		return s, nil
	}
	s.options.Chosen = optionID
	s.reveal()
	return s, nil
}

// reveal marks the options once the current result is disclosed.
func (s *TestScreen) reveal() {
	if d, ok := s.session.Disclosure(); ok {
		s.options.Reveal = true
		s.options.CorrectID = d.CorrectOption.ID
	}
}

func (s *TestScreen) check() (screen.Screen, tea.Cmd) {
	if s.mode != sess.Learning {
		return s, nil
	}
	if _, err := s.session.CheckAnswer(); err != nil {
		if errors.Is(err, sess.ErrNoAnswerSelected) {
			s.warning = "Pick an answer first"
			return s, nil
		}
		s.warning = err.Error()
		return s, nil
	}
	s.warning = ""
	s.reveal()
	return s, nil
}

func (s *TestScreen) next() (screen.Screen, tea.Cmd) {
	sum, err := s.session.Next()
	if err != nil {
		s.warning = err.Error()
		return s, nil
	}
	if sum != nil {
		return s.finish(sum, nil)
	}
	return s, s.enterQuestion()
}

// finish shows the results on top of this screen, which stays beneath so a
// retry can restart the same questions.
func (s *TestScreen) finish(sum *scoring.Summary, err error) (screen.Screen, tea.Cmd) {
	if err != nil {
		s.warning = err.Error()
		return s, nil
	}
	s.ticking = false
	s.env.Logger.Info("test submitted",
		"session_id", s.session.ID(), "correct", sum.Correct,
		"total", sum.Total, "percent", sum.Percent)
	res := results.New(results.Input{
		Source:    s.src,
		Mode:      s.mode,
		Summary:   *sum,
		Questions: s.session.Questions(),
	})
	return s, func() tea.Msg { return router.PushScreenMsg{Screen: res} }
}

func (s *TestScreen) tick() tea.Cmd {
	gen := s.tickGen
	return tea.Tick(timer.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}
