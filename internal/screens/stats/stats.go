// Package stats shows overall mastery, error statistics, per-module progress
// and recent tests.
package stats

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// HistoryLimit is how many recent tests are shown.
const HistoryLimit = 10

type loadedMsg struct {
	Dashboard *progress.Dashboard
	Err       error
}

// StatsScreen is the statistics dashboard.
type StatsScreen struct {
	env       screen.Env
	dashboard *progress.Dashboard
	errMsg    string
	offset    int
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates the statistics screen.
func New(env screen.Env) *StatsScreen {
	return &StatsScreen{env: env.WithDefaults()}
}

func (s *StatsScreen) Init() tea.Cmd {
	svc := s.env.Service
	return func() tea.Msg {
		d, err := progress.LoadDashboard(context.Background(), svc, HistoryLimit)
		return loadedMsg{Dashboard: d, Err: err}
	}
}

func (s *StatsScreen) Title() string { return "Statistics" }

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.env.Logger.Warn("statistics unavailable", "err", msg.Err)
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.dashboard = msg.Dashboard
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		case "r", "R":
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			"\n\n  Could not load statistics: "+s.errMsg+"\n\n  Press R to retry.")
	case s.dashboard == nil:
		return layout.Centered(width, theme.Subtitle, "\n\n  Loading statistics...")
	}

	cw := components.ContentWidth(width, 90)
	lines := strings.Split(Render(s.dashboard, cw), "\n")
	s.offset = min(s.offset, max(len(lines)-height, 0))
	lines = lines[s.offset:]
	if len(lines) > height && height > 0 {
		lines = lines[:height]
	}
	block := lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(block)
}
