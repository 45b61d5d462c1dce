// Package review is the screen for the spaced-repetition queue of missed
// questions.
package review

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	rv "github.com/cfaprep/cfaprep/internal/review"
	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

type refreshedMsg struct{ Err error }

type answeredMsg struct {
	Outcome rv.Outcome
	Err     error
}

type phase int

const (
	phaseLoading phase = iota
	phaseAsking
	phaseSubmitting
	phaseOutcome
	phaseDone
	phaseError
)

// ReviewScreen presents one due question at a time.
type ReviewScreen struct {
	env  screen.Env
	loop *rv.Loop

	phase    phase
	item     rv.Item
	options  components.OptionList
	outcome  rv.Outcome
	answered int
	correct  int
	errMsg   string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)

// New creates a review screen over env's service.
func New(env screen.Env) *ReviewScreen {
	env = env.WithDefaults()
	return &ReviewScreen{
		env: env,
		loop: rv.NewLoop(env.Service,
			rv.WithShuffler(env.Shuffler),
			rv.WithLogger(env.Logger)),
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	s.phase = phaseLoading
	loop := s.loop
	return func() tea.Msg {
		return refreshedMsg{Err: loop.Refresh(context.Background())}
	}
}

func (s *ReviewScreen) Title() string { return "Review mistakes" }

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAsking:
		return []layout.KeyHint{
			{Key: "A-D", Description: "Answer"},
			{Key: "↑↓", Description: "Move"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseOutcome:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		if msg.Err != nil {
			s.env.Logger.Warn("review queue unavailable", "err", msg.Err)
			s.phase = phaseError
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.present()
		return s, s.status()
	case answeredMsg:
		return s, s.handleAnswered(msg)
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

// present shows the loop's current item, or the empty state.
func (s *ReviewScreen) present() {
	item, ok := s.loop.Current()
	if !ok {
		s.phase = phaseDone
		return
	}
	s.item = item
	s.options = components.NewOptionList(s.loop.Options(), "")
	s.phase = phaseAsking
}

func (s *ReviewScreen) status() tea.Cmd {
	text := fmt.Sprintf("%d due", s.loop.TotalDue())
	return func() tea.Msg { return screen.StatusMsg{Text: text} }
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	switch s.phase {
	case phaseAsking:
		var picked string
		s.options, picked = s.options.Update(msg)
		if picked == "" {
			return nil
		}
		s.options.Chosen = picked
		s.phase = phaseSubmitting
		loop := s.loop
		return func() tea.Msg {
			out, err := loop.Answer(context.Background(), picked)
			return answeredMsg{Outcome: out, Err: err}
		}
	case phaseOutcome:
		switch msg.String() {
		case "enter", "space", " ", "right", "n":
			s.present()
		}
	case phaseError:
		return s.Init()
	}
	return nil
}

func (s *ReviewScreen) handleAnswered(msg answeredMsg) tea.Cmd {
	out := msg.Outcome
	if out.QuestionID == "" {
		// Nothing was graded.
		s.phase = phaseError
		s.errMsg = msg.Err.Error()
		return nil
	}
	s.outcome = out
	s.answered++
	if out.Correct {
		s.correct++
	}
	s.options.Reveal = true
	s.options.CorrectID = out.CorrectOption.ID
	s.phase = phaseOutcome
	if msg.Err != nil {
		s.env.Logger.Warn("review queue refresh failed", "err", msg.Err)
		s.errMsg = msg.Err.Error()
	}
	return s.status()
}

func (s *ReviewScreen) View(width, height int) string {
	cw := components.ContentWidth(width, 90)
	var b strings.Builder

	switch s.phase {
	case phaseLoading:
		return layout.Centered(width, theme.Subtitle, "\n\n  Loading review queue...")
	case phaseError:
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			"\n\n  Could not load the review queue: "+s.errMsg+"\n\n  Press any key to retry.")
	case phaseDone:
		b.WriteString(layout.Centered(cw, theme.Title, "No questions to review"))
		b.WriteString("\n\n")
		if s.answered > 0 {
			b.WriteString(layout.Centered(cw, theme.Subtitle,
				fmt.Sprintf("Reviewed %d, %d correct.", s.answered, s.correct)))
		} else {
			b.WriteString(layout.Centered(cw, theme.Subtitle, "Missed questions show up here when they are due."))
		}
		return components.Frame(b.String(), width, height)
	}

	info := fmt.Sprintf("Book %d · Module %d · missed %d×", s.item.BookID, s.item.ModuleID, s.item.ErrorCount)
	due := fmt.Sprintf("%d due", s.loop.TotalDue())
	pad := max(cw-lipgloss.Width(info)-lipgloss.Width(due), 1)
	b.WriteString(theme.Selected.Render(info) + strings.Repeat(" ", pad) + theme.Hint.Render(due))
	b.WriteString("\n")
	b.WriteString(layout.Divider(cw+4, cw))
	b.WriteString("\n\n")

	q := s.item.Question
	b.WriteString(lipgloss.NewStyle().Width(cw).Bold(true).Foreground(theme.Text).Render(q.Text))
	b.WriteString("\n")
	if q.Formula != "" {
		b.WriteString("\n" + theme.Formula.Render(q.Formula) + "\n")
	}
	if q.Continuation != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Width(cw).Render(q.Continuation) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(s.options.View(cw))

	switch s.phase {
	case phaseSubmitting:
		b.WriteString("\n" + theme.Hint.Render("Saving..."))
	case phaseOutcome:
		b.WriteString("\n" + s.renderOutcome(cw))
	}

	block := lipgloss.NewStyle().Width(cw).Render(b.String())
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(block)
}

func (s *ReviewScreen) renderOutcome(cw int) string {
	out := s.outcome
	var b strings.Builder
	if out.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Incorrect") + theme.Body.Render("  Answer: "+out.CorrectOption.Text))
	}
	if we := out.WrongExplanation; we != nil {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(we.Text))
	}
	if out.Explanation != "" {
		b.WriteString("\n\n" + theme.Body.Render(out.Explanation))
	}
	switch {
	case out.ReportErr != nil:
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render("Could not save this review: "+out.ReportErr.Error()))
	case out.Ack != nil:
		b.WriteString("\n\n" + theme.Hint.Render(fmt.Sprintf("Next review in %d day(s), on %s.",
			out.Ack.NewIntervalDays, out.Ack.NextReviewAt.Local().Format("Mon Jan 2"))))
	}
	return theme.Panel.Width(cw).Render(b.String())
}
