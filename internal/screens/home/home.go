package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/screens/history"
	"github.com/cfaprep/cfaprep/internal/screens/picker"
	"github.com/cfaprep/cfaprep/internal/screens/review"
	"github.com/cfaprep/cfaprep/internal/screens/stats"
	testscreen "github.com/cfaprep/cfaprep/internal/screens/test"
	sess "github.com/cfaprep/cfaprep/internal/session"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
)

// statsLoadedMsg carries the dashboard numbers shown under the title.
type statsLoadedMsg struct {
	Dashboard *progress.Dashboard
	Err       error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	env  screen.Env
	menu components.Menu

	loaded     bool
	errMsg     string
	dueToday   int
	totalError int
	mastery    float64
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates the home screen.
func New(env screen.Env) *HomeScreen {
	env = env.WithDefaults()
	h := &HomeScreen{env: env}

	push := func(mk func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: mk()} }
		}
	}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Module test", Hint: "one module's question bank", Action: push(func() screen.Screen {
			return picker.New(env, picker.KindModule)
		})},
		{Label: "Book test", Hint: fmt.Sprintf("%d random questions from a book", sess.DefaultBookQuestions), Action: push(func() screen.Screen {
			return picker.New(env, picker.KindBook)
		})},
		{Label: "Mock exam", Hint: "90 seconds per question", Action: push(func() screen.Screen {
			return testscreen.New(env, sess.MockExamSource(), sess.NinetySecond)
		})},
		{Label: "Review mistakes", Hint: "spaced repetition", Action: push(func() screen.Screen {
			return review.New(env)
		})},
		{Label: "History", Hint: "past tests", Action: push(func() screen.Screen {
			return history.New(env)
		})},
		{Label: "Statistics", Action: push(func() screen.Screen {
			return stats.New(env)
		})},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Resume refreshes the numbers after a test or review.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	svc := h.env.Service
	return func() tea.Msg {
		d, err := progress.LoadDashboard(context.Background(), svc, 1)
		return statsLoadedMsg{Dashboard: d, Err: err}
	}
}

func (h *HomeScreen) Title() string { return "Home" }

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		return h, h.handleStats(msg)
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) handleStats(msg statsLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		h.env.Logger.Warn("home stats unavailable", "err", msg.Err)
		h.errMsg = "progress service unavailable"
		return func() tea.Msg { return screen.StatusMsg{Text: "offline"} }
	}
	h.loaded = true
	h.errMsg = ""
	h.dueToday = msg.Dashboard.Errors.DueToday
	h.totalError = msg.Dashboard.Errors.TotalErrors
	h.mastery = msg.Dashboard.Overview.OverallMastery

	status := "nothing due"
	if h.dueToday > 0 {
		status = fmt.Sprintf("%d due for review", h.dueToday)
	}
	return func() tea.Msg { return screen.StatusMsg{Text: status} }
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height + 8)
	cw := components.ContentWidth(width, 60)

	sections := []string{renderTitle(cw, compact)}
	sections = append(sections, h.renderStatsBar(cw))
	sections = append(sections, renderMenu(h.menu, cw))
	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}
