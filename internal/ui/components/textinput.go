package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// NumberInput wraps bubbles/textinput for positive integer entry.
type NumberInput struct {
	Model textinput.Model
}

// NewNumberInput creates a numeric input of at most maxDigits digits.
func NewNumberInput(placeholder string, maxDigits int) NumberInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxDigits > 0 {
		ti.CharLimit = maxDigits
	}
	return NumberInput{Model: ti}
}

// Focus focuses the input.
func (t *NumberInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *NumberInput) Blur() {
	t.Model.Blur()
}

// SetValue replaces the input's content.
func (t *NumberInput) SetValue(v int) {
	t.Model.SetValue(strconv.Itoa(v))
}

// Update handles messages, dropping non-digit characters.
func (t NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t NumberInput) View() string {
	return t.Model.View()
}

// Value returns the entered number; ok is false when empty or not positive.
func (t NumberInput) Value() (int, bool) {
	n, err := strconv.Atoi(t.Model.Value())
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
