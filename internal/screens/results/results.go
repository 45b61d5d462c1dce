// Package results shows the score of a submitted test with a per-question
// breakdown.
package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/scoring"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/session"
	"github.com/cfaprep/cfaprep/internal/timer"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// RetryMsg asks the test screen beneath to restart the same questions.
type RetryMsg struct{}

// Input is everything the results screen shows.
type Input struct {
	Source    session.Source
	Mode      session.Mode
	Summary   scoring.Summary
	Questions []question.Question
}

// ResultsScreen displays one submission.
type ResultsScreen struct {
	in     Input
	byID   map[string]question.Question
	cursor int
	open   bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a results screen.
func New(in Input) *ResultsScreen {
	byID := make(map[string]question.Question, len(in.Questions))
	for _, q := range in.Questions {
		byID[q.ID] = q
	}
	return &ResultsScreen{in: in, byID: byID}
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string { return "Results · " + s.in.Source.Title() }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Browse"},
		{Key: "Space", Description: "Details"},
		{Key: "R", Description: "Retry"},
		{Key: "Enter", Description: "Home"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.in.Summary.Details)-1 {
			s.cursor++
		}
	case "space", " ":
		s.open = !s.open
	case "r", "R":
		return s, tea.Sequence(
			func() tea.Msg { return router.PopScreenMsg{} },
			func() tea.Msg { return RetryMsg{} },
		)
	case "enter", "esc":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	sum := s.in.Summary
	cw := components.ContentWidth(width, 80)

	var b strings.Builder
	b.WriteString(layout.Centered(width, theme.Title, "Test complete"))
	b.WriteString("\n\n")

	scoreStyle := theme.Incorrect
	if sum.Tier().Passed() {
		scoreStyle = theme.Correct
	}
	b.WriteString(layout.Centered(width, scoreStyle, fmt.Sprintf("%d%%", sum.Percent)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Subtitle, sum.Message()))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, theme.Body, fmt.Sprintf(
		"Correct: %d    Incorrect: %d    Time: %s    Mode: %s",
		sum.Correct, sum.Incorrect(), timer.Format(int(sum.Elapsed.Seconds())), s.in.Mode.Label())))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, layout.Divider(cw+4, cw)))
	b.WriteString("\n")

	// Rows above the list: title, score, message, stats, divider and gaps.
	rows := max(height-12, 3)
	if s.open {
		rows = max(rows-6, 1)
	}
	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	end := min(start+rows, len(sum.Details))

	var list strings.Builder
	for i := start; i < end; i++ {
		list.WriteString(s.renderRow(i, cw))
		list.WriteString("\n")
	}
	if s.open && s.cursor < len(sum.Details) {
		list.WriteString(s.renderDetail(sum.Details[s.cursor], cw))
	}
	block := lipgloss.NewStyle().Width(cw).Render(strings.TrimRight(list.String(), "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))
	return b.String()
}

func (s *ResultsScreen) renderRow(i, cw int) string {
	d := s.in.Summary.Details[i]
	mark, style := theme.Correct.Render("✓"), theme.Body
	switch {
	case !d.Answered():
		mark = lipgloss.NewStyle().Foreground(theme.TextDim).Render("–")
	case !d.Correct:
		mark = theme.Incorrect.Render("✗")
	}
	if i == s.cursor {
		style = theme.Selected
	}
	text := strings.ReplaceAll(s.byID[d.QuestionID].Text, "\n", " ")
	prefix := fmt.Sprintf("%3d. ", i+1)
	suffix := "  " + timer.Format(int(d.TimeSpent.Seconds()))
	room := cw - lipgloss.Width(prefix) - lipgloss.Width(suffix) - 4
	return mark + " " + style.Render(prefix+truncate(text, room)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
}

func (s *ResultsScreen) renderDetail(d scoring.Detail, cw int) string {
	q := s.byID[d.QuestionID]
	var b strings.Builder
	answer := "(unanswered)"
	if o, ok := q.Option(d.UserAnswer); ok {
		answer = o.Text
	}
	b.WriteString("Your answer:    " + answer + "\n")
	b.WriteString("Correct answer: " + q.CorrectOption().Text)
	if q.Explanation != "" {
		b.WriteString("\n\n" + q.Explanation)
	}
	return theme.Panel.Width(cw).Render(b.String())
}

func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
