package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// OptionList is a multiple-choice selector over question options in display
// order. Options are labelled A, B, C... by position; the label is not the
// option's identity.
type OptionList struct {
	Options []question.Option
	Cursor  int
	// Chosen is the recorded answer's option ID, if any.
	Chosen string
	// Reveal marks the correct option and the chosen one when wrong.
	Reveal    bool
	CorrectID string
}

// NewOptionList returns a list with the cursor on the chosen option, or on
// the first one.
func NewOptionList(opts []question.Option, chosen string) OptionList {
	l := OptionList{Options: opts, Chosen: chosen}
	for i, o := range opts {
		if o.ID == chosen {
			l.Cursor = i
		}
	}
	return l
}

// Label is the display letter for position i.
func Label(i int) string {
	return string(rune('A' + i))
}

// Update moves the cursor. It returns the option ID picked with Enter or a
// letter/number key, or "" when nothing was picked.
func (l OptionList) Update(msg tea.Msg) (OptionList, string) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(l.Options) == 0 {
		return l, ""
	}
	key := kmsg.String()
	switch key {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
		return l, ""
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
		return l, ""
	case "enter":
		return l, l.Options[l.Cursor].ID
	}
	if i, ok := pickIndex(key, len(l.Options)); ok {
		l.Cursor = i
		return l, l.Options[i].ID
	}
	return l, ""
}

// pickIndex maps "a".."z" and "1".."9" onto an option position.
func pickIndex(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var i int
	switch {
	case c >= 'a' && c <= 'z':
		i = int(c - 'a')
	case c >= 'A' && c <= 'Z':
		i = int(c - 'A')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	return i, i < n
}

// View renders the options.
func (l OptionList) View(width int) string {
	var b strings.Builder
	for i, o := range l.Options {
		prefix := "  "
		if i == l.Cursor && !l.Reveal {
			prefix = "▸ "
		}
		mark := " "
		if o.ID == l.Chosen {
			mark = "●"
		}
		text := o.Text
		if o.Formula != "" {
			text += "  " + theme.Formula.Render(o.Formula)
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, Label(i), text)

		style := theme.Unselected
		switch {
		case l.Reveal && o.ID == l.CorrectID:
			style = theme.Correct
		case l.Reveal && o.ID == l.Chosen:
			style = theme.Incorrect
		case l.Reveal:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == l.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Width(width).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
