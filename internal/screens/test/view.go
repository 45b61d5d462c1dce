package test

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/cfaprep/cfaprep/internal/question"
	sess "github.com/cfaprep/cfaprep/internal/session"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

const maxContentWidth = 96

func (s *TestScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			"\n\n  Could not load questions: "+s.errMsg+"\n\n  Press any key to go back.")
	}
	switch s.session.Phase() {
	case sess.PhaseLoading:
		return layout.Centered(width, theme.Subtitle, "\n\n  Loading questions...")
	case sess.PhaseCompleted:
		return layout.Centered(width, theme.Subtitle, "\n\n  Test submitted.")
	case sess.PhaseIdle:
		return ""
	}

	q, ok := s.session.Current()
	if !ok {
		return ""
	}
	cw := components.ContentWidth(width, maxContentWidth)

	var b strings.Builder
	b.WriteString(s.renderInfoLine(cw))
	b.WriteString("\n")
	b.WriteString(layout.Divider(cw+4, cw))
	b.WriteString("\n\n")
	b.WriteString(renderQuestion(q, cw))
	b.WriteString("\n")
	b.WriteString(s.options.View(cw))
	b.WriteString("\n")

	if d, ok := s.session.Disclosure(); ok {
		b.WriteString("\n")
		b.WriteString(renderDisclosure(d, cw))
		b.WriteString("\n")
	}
	switch s.overlay {
	case overlayQuit:
		b.WriteString("\n" + theme.Flagged.Render("Leave this test? Your answers will be lost. (y/n)") + "\n")
	case overlaySubmit:
		msg := "Submit now?"
		if left := s.session.Len() - s.session.Answered(); left > 0 {
			msg = fmt.Sprintf("Submit with %d unanswered? Unanswered questions count as wrong.", left)
		}
		b.WriteString("\n" + theme.Flagged.Render(msg+" (y/n)") + "\n")
	case overlayJump:
		b.WriteString("\nGo to question: " + s.jump.View() + "\n")
	}
	if s.warning != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render(s.warning) + "\n")
	}

	block := lipgloss.NewStyle().Width(cw).Render(b.String())
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(block)
}

func (s *TestScreen) renderInfoLine(cw int) string {
	left := theme.Selected.Render(fmt.Sprintf("Question %d of %d", s.session.Index()+1, s.session.Len()))
	if s.session.Flagged(s.session.Index()) {
		left += "  " + theme.Flagged.Render("⚑ flagged")
	}
	right := s.renderTimer()
	pad := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	line := left + strings.Repeat(" ", pad) + right
	if s.session.Mode() != sess.NinetySecond {
		line += "\n" + renderDots(s.session.Dots(), cw)
	}
	return line
}

func (s *TestScreen) renderTimer() string {
	if !s.session.TimerRunning() {
		return ""
	}
	sig := s.signal
	style := theme.TimerNormal
	switch {
	case sig.Overflow:
		style = theme.TimerOverflow
	case sig.Warning:
		style = theme.TimerWarning
	}
	return style.Render("⏱ " + sig.String())
}

// renderDots draws the position navigator, wrapping at the content width.
func renderDots(dots []sess.Dot, cw int) string {
	var b strings.Builder
	col := 0
	for _, d := range dots {
		glyph := "○"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		switch d.State {
		case sess.Answered:
			glyph = "●"
			style = lipgloss.NewStyle().Foreground(theme.Primary)
		case sess.Checked:
			glyph = "●"
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		if d.Flagged {
			style = theme.Flagged
		}
		if d.Current {
			style = style.Underline(true).Bold(true)
		}
		if col+2 > cw {
			b.WriteString("\n")
			col = 0
		}
		b.WriteString(style.Render(glyph) + " ")
		col += 2
	}
	return b.String()
}

func renderQuestion(q question.Question, cw int) string {
	var b strings.Builder
	text := lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true)
	b.WriteString(text.Render(q.Text))
	b.WriteString("\n")
	if q.Formula != "" {
		b.WriteString("\n" + theme.Formula.Render(q.Formula) + "\n")
	}
	if q.Table != nil && !q.Table.Empty() {
		b.WriteString("\n" + renderTable(q.Table) + "\n")
	}
	if q.Continuation != "" {
		b.WriteString("\n" + text.Render(q.Continuation) + "\n")
	}
	var meta []string
	if q.Difficulty != "" {
		meta = append(meta, q.Difficulty)
	}
	if q.LOS != "" {
		meta = append(meta, "LOS "+q.LOS)
	}
	if len(meta) > 0 {
		b.WriteString(theme.Hint.Render(strings.Join(meta, " · ")) + "\n")
	}
	return b.String()
}

func renderTable(t *question.Table) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Foreground(theme.Primary).Bold(true)
			}
			return st.Foreground(theme.Text)
		}).
		Render()
}

func renderDisclosure(d *sess.Disclosure, cw int) string {
	var b strings.Builder
	if d.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Incorrect"))
		b.WriteString(theme.Body.Render("  Answer: " + d.CorrectOption.Text))
	}
	b.WriteString("\n")
	if we := d.WrongExplanation; we != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(we.Text) + "\n")
		if we.Formula != "" {
			b.WriteString(theme.Formula.Render(we.Formula) + "\n")
		}
	}
	if d.Explanation != "" {
		b.WriteString("\n" + theme.Body.Render(d.Explanation) + "\n")
	}
	if d.Formula != "" {
		b.WriteString("\n" + theme.Formula.Render(d.Formula) + "\n")
	}
	if len(d.CalculatorSteps) > 0 {
		b.WriteString("\n" + theme.Hint.Render("Calculator") + "\n")
		for i, step := range d.CalculatorSteps {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}
	return theme.Panel.Width(cw).Render(strings.TrimRight(b.String(), "\n"))
}
