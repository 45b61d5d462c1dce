// Package picker collects the book, module and mode for a new test.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/router"
	"github.com/cfaprep/cfaprep/internal/screen"
	sess "github.com/cfaprep/cfaprep/internal/session"
	testscreen "github.com/cfaprep/cfaprep/internal/screens/test"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/layout"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// Kind is the kind of test being configured.
type Kind int

const (
	KindModule Kind = iota
	KindBook
)

type field int

const (
	fieldBook field = iota
	fieldModule
	fieldMode
)

// PickerScreen is the test setup form.
type PickerScreen struct {
	env    screen.Env
	kind   Kind
	book   components.NumberInput
	module components.NumberInput
	mode   int
	focus  field
	errMsg string

	// modules is the listing of the book last loaded; requested is the book
	// whose listing is on its way.
	modules   *modulesLoadedMsg
	requested int
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)

// New creates a picker for kind with book 1, module 1 and the standard mode
// preselected.
func New(env screen.Env, kind Kind) *PickerScreen {
	p := &PickerScreen{
		env:    env,
		kind:   kind,
		book:   components.NewNumberInput("book", 2),
		module: components.NewNumberInput("module", 3),
	}
	p.book.SetValue(1)
	p.module.SetValue(1)
	return p
}

func (p *PickerScreen) Init() tea.Cmd {
	return tea.Batch(p.book.Focus(), p.loadModules(1))
}

func (p *PickerScreen) Title() string {
	if p.kind == KindBook {
		return "New book test"
	}
	return "New module test"
}

func (p *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "↑↓", Description: "Module"},
		{Key: "←→", Description: "Mode"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PickerScreen) fields() []field {
	if p.kind == KindBook {
		return []field{fieldBook, fieldMode}
	}
	return []field{fieldBook, fieldModule, fieldMode}
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if lm, ok := msg.(modulesLoadedMsg); ok {
		p.modulesLoaded(lm)
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, p.updateInput(msg)
	}
	listing := p.focus == fieldModule && len(p.rows()) > 0
	switch kmsg.String() {
	case "esc":
		return p, func() tea.Msg { return router.PopScreenMsg{} }
	case "down", "j":
		if listing {
			p.moveModule(1)
			return p, nil
		}
		if kmsg.String() == "down" {
			return p, p.cycle(1)
		}
	case "up", "k":
		if listing {
			p.moveModule(-1)
			return p, nil
		}
		if kmsg.String() == "up" {
			return p, p.cycle(-1)
		}
	case "tab":
		return p, p.cycle(1)
	case "shift+tab":
		return p, p.cycle(-1)
	case "enter":
		return p, p.start()
	}
	if p.focus == fieldMode {
		switch kmsg.String() {
		case "left", "h":
			p.mode = (p.mode + len(sess.Modes) - 1) % len(sess.Modes)
		case "right", "l", "space", " ":
			p.mode = (p.mode + 1) % len(sess.Modes)
		case "1", "2", "3":
			p.mode = int(kmsg.String()[0] - '1')
		}
		return p, nil
	}
	return p, p.updateInput(msg)
}

func (p *PickerScreen) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch p.focus {
	case fieldBook:
		p.book, cmd = p.book.Update(msg)
		if book, ok := p.book.Value(); ok && book != p.requested {
			return tea.Batch(cmd, p.loadModules(book))
		}
	case fieldModule:
		p.module, cmd = p.module.Update(msg)
	}
	return cmd
}

func (p *PickerScreen) modulesLoaded(msg modulesLoadedMsg) {
	if book, ok := p.book.Value(); !ok || book != msg.BookID {
		return
	}
	if msg.Err != nil && !errors.Is(msg.Err, progress.ErrNotFound) {
		p.env.Logger.Warn("module listing unavailable", "book", msg.BookID, "err", msg.Err)
	}
	p.modules = &msg
	p.errMsg = msg.Refused
}

// listed returns the loaded listing when it belongs to book.
func (p *PickerScreen) listed(book int) *modulesLoadedMsg {
	if p.modules == nil || p.modules.BookID != book {
		return nil
	}
	return p.modules
}

// rows returns the listed modules of the book currently entered.
func (p *PickerScreen) rows() []moduleRow {
	book, ok := p.book.Value()
	if !ok {
		return nil
	}
	if lm := p.listed(book); lm != nil {
		return lm.Rows
	}
	return nil
}

func (p *PickerScreen) moveModule(step int) {
	rows := p.rows()
	cur := -1
	if m, ok := p.module.Value(); ok {
		for i, r := range rows {
			if r.Info.ModuleID == m {
				cur = i
			}
		}
	}
	next := 0
	if cur >= 0 {
		next = (cur + step + len(rows)) % len(rows)
	}
	p.module.SetValue(rows[next].Info.ModuleID)
	p.errMsg = ""
}

func (p *PickerScreen) cycle(step int) tea.Cmd {
	fs := p.fields()
	cur := 0
	for i, f := range fs {
		if f == p.focus {
			cur = i
		}
	}
	p.focus = fs[(cur+step+len(fs))%len(fs)]
	p.book.Blur()
	p.module.Blur()
	switch p.focus {
	case fieldBook:
		return p.book.Focus()
	case fieldModule:
		return p.module.Focus()
	}
	return nil
}

// start validates the form and replaces the picker with the test screen. A
// locked module is refused; when its book's listing has not arrived yet the
// check runs against a fresh one before the test screen is shown.
func (p *PickerScreen) start() tea.Cmd {
	book, ok := p.book.Value()
	if !ok {
		p.errMsg = "Enter a book number"
		return nil
	}
	src := sess.BookSource(book)
	module := 0
	if p.kind == KindModule {
		if module, ok = p.module.Value(); !ok {
			p.errMsg = "Enter a module number"
			return nil
		}
		src = sess.ModuleSource(book, module)
	}
	mode := sess.Modes[p.mode]
	next := testscreen.New(p.env, src, mode)
	replace := func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	if p.kind == KindModule && p.env.Service != nil {
		if lm := p.listed(book); lm != nil {
			if why := lm.refusal(module); why != "" {
				p.errMsg = why
				return nil
			}
		} else {
			svc, log := p.env.Service, p.env.Logger
			return func() tea.Msg {
				lm := fetchModules(context.Background(), svc, book)
				if lm.Refused = lm.refusal(module); lm.Refused != "" {
					return lm
				}
				log.Debug("test configured", "source", src.Title(), "mode", mode.String())
				return replace()
			}
		}
	}
	p.errMsg = ""
	p.env.Logger.Debug("test configured", "source", src.Title(), "mode", mode.String())
	return replace
}

func (p *PickerScreen) View(width, height int) string {
	cw := components.ContentWidth(width, 60)
	var b strings.Builder

	label := func(f field, text string) string {
		if p.focus == f {
			return theme.Selected.Render("▸ " + text)
		}
		return theme.Unselected.Render("  " + text)
	}

	b.WriteString(theme.Title.Width(cw).Render(p.Title()))
	b.WriteString("\n\n")
	b.WriteString(label(fieldBook, "Book    ") + " " + p.book.View() + "\n")
	if p.kind == KindModule {
		b.WriteString(label(fieldModule, "Module  ") + " " + p.module.View() + "\n")
		b.WriteString(p.renderModules())
	}
	b.WriteString("\n" + label(fieldMode, "Mode") + "\n")
	for i, m := range sess.Modes {
		mark := "○"
		style := theme.Unselected
		if i == p.mode {
			mark = "●"
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("    %s %s", mark, m.Label())) + "\n")
	}
	b.WriteString("\n" + theme.Hint.Render(modeHelp(sess.Modes[p.mode])) + "\n")
	if p.errMsg != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(p.errMsg) + "\n")
	}
	return components.Frame(components.Card(b.String(), cw), width, height)
}

func (p *PickerScreen) renderModules() string {
	book, ok := p.book.Value()
	if !ok {
		return ""
	}
	lm := p.listed(book)
	switch {
	case lm == nil:
		return theme.Hint.Render("    Loading modules...") + "\n"
	case errors.Is(lm.Err, progress.ErrNotFound):
		return theme.Hint.Render(fmt.Sprintf("    No modules for book %d", book)) + "\n"
	case lm.Err != nil:
		return theme.Hint.Render("    Module list unavailable") + "\n"
	}
	selected, _ := p.module.Value()
	var b strings.Builder
	for _, r := range lm.Rows {
		name := r.Info.ModuleName
		if name == "" {
			name = fmt.Sprintf("Module %d", r.Info.ModuleID)
		}
		line := fmt.Sprintf("%2d %-18.18s %3d q  %3.0f%%  %s",
			r.Info.ModuleID, name, r.Info.QuestionCount, r.mastery(), r.state())
		prefix, style := "    ", theme.Unselected
		if r.Info.ModuleID == selected {
			prefix, style = "  ▸ ", theme.Selected
		}
		if !r.Open {
			line += " 🔒"
			style = lipgloss.NewStyle().Foreground(theme.Border)
		}
		b.WriteString(style.Render(prefix+line) + "\n")
	}
	return b.String()
}

func modeHelp(m sess.Mode) string {
	switch m {
	case sess.Learning:
		return "No timer. Check each answer to see the explanation."
	case sess.NinetySecond:
		return "Forward only. 90 seconds per question, answers revealed at once."
	default:
		return "Free navigation, flags and a running clock. Results at the end."
	}
}
