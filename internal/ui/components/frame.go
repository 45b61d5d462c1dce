package components

import (
	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// ContentWidth returns the uniform inner width for stacked sections so
// boxes line up, clamped to [20, max].
func ContentWidth(frameWidth, max int) int {
	w := frameWidth - 6
	if w > max {
		w = max
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Frame wraps content in a double border, centered in the given area.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a rounded-border box at content width cw.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 2).
		Render(content)
}
