// Package history lists past test results with their per-question outcomes.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/session"
	"github.com/cfaprep/cfaprep/internal/timer"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// Limit is how many results the screen loads.
const Limit = 50

type historyLoadedMsg struct {
	Results []progress.Result
	Err     error
}

// HistoryScreen displays past test results.
type HistoryScreen struct {
	env      screen.Env
	results  []progress.Result
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a history screen.
func New(env screen.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env.WithDefaults(),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	svc := s.env.Service
	return func() tea.Msg {
		res, err := svc.History(context.Background(), Limit)
		return historyLoadedMsg{Results: res, Err: err}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.env.Logger.Warn("history unavailable", "err", msg.Err)
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.results = msg.Results
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		case "enter", "space", " ":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, theme.Incorrect, "\n\nError: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Centered(width, theme.Hint, "\n\n  Loading history...")
	}
	if len(s.results) == 0 {
		return layout.Centered(width, theme.Hint, "\n\n  No tests taken yet.")
	}

	cw := components.ContentWidth(width, 80)
	var lines []string
	selLine := 0
	for i, r := range s.results {
		if i == s.selected {
			selLine = len(lines)
		}
		lines = append(lines, s.renderRow(i, r))
		if s.expanded[i] {
			lines = append(lines, renderDetails(r)...)
		}
	}

	// Keep the selected row on screen.
	rows := max(height-2, 3)
	start := 0
	if selLine >= rows {
		start = selLine - rows + 1
	}
	end := min(start+rows, len(lines))

	block := lipgloss.NewStyle().Width(cw).Render(strings.Join(lines[start:end], "\n"))
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}

func (s *HistoryScreen) renderRow(i int, r progress.Result) string {
	prefix := "  "
	style := theme.Body
	if i == s.selected {
		prefix = "> "
		style = theme.Selected
	}
	return style.Render(fmt.Sprintf("%s%s  %-14s %-10s %3.0f%%  %d/%d  %s",
		prefix,
		r.CreatedAt.Local().Format("Jan 02 15:04"),
		Describe(r),
		modeLabel(r.TestMode),
		r.ScorePercent,
		r.CorrectAnswers, r.TotalQuestions,
		timer.Format(r.TimeSpentSeconds)))
}

func renderDetails(r progress.Result) []string {
	if len(r.QuestionDetails) == 0 {
		return []string{theme.Hint.Render("      No question details recorded")}
	}
	out := make([]string, 0, len(r.QuestionDetails))
	for _, d := range r.QuestionDetails {
		mark, style := "✗", theme.Incorrect
		if d.Correct {
			mark, style = "✓", theme.Correct
		}
		answer := "–"
		if d.UserAnswer != nil {
			answer = *d.UserAnswer
		}
		out = append(out, fmt.Sprintf("      %s %-16s %s  answer %s, correct %s",
			style.Render(mark), d.QuestionID, theme.Hint.Render(timer.Format(d.TimeSpent)),
			answer, d.CorrectAnswer))
	}
	return out
}

// Describe names the test a result belongs to.
func Describe(r progress.Result) string {
	switch r.TestType {
	case progress.TestModule:
		return fmt.Sprintf("Module %d.%d", r.BookID, r.ModuleID)
	case progress.TestBook:
		return fmt.Sprintf("Book %d", r.BookID)
	case progress.TestMockExam:
		return "Mock exam"
	}
	return string(r.TestType)
}

func modeLabel(raw string) string {
	m, err := session.ParseMode(raw)
	if err != nil {
		return raw
	}
	return m.Label()
}
