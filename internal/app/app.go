package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/screen"
	"github.com/cfaprep/cfaprep/internal/screens/home"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
)

// AppModel is the root Bubble Tea model. Screens handle Esc themselves so a
// running test can confirm before it is abandoned.
type AppModel struct {
	router *router.Router
	start  screen.Screen
	width  int
	height int
	status string
}

// newAppModel creates the model with the home screen at the bottom of the
// stack and, when start is set, start on top of it.
func newAppModel(env screen.Env, start screen.Screen) AppModel {
	return AppModel{
		router: router.New(home.New(env)),
		start:  start,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init()}
	if m.start != nil {
		cmds = append(cmds, m.router.Push(m.start))
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.StatusMsg:
		m.status = msg.Text
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.router.Close()
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var hints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}
	if hints == nil {
		hints = []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits. A nil start
// opens on the home screen.
func Run(ctx context.Context, env screen.Env, start screen.Screen) error {
	env = env.WithDefaults()
	m := newAppModel(env, start)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(AppModel); ok {
		fm.router.Close()
	}
	if errors.Is(err, tea.ErrInterrupted) || (errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return nil
	}
	if err != nil {
		env.Logger.Error("program exited with error", "err", err)
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
