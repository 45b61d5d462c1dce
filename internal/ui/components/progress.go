package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a 0-100 percentage. At or above
// Goal the filled part turns green.
type ProgressBar struct {
	Label   string
	Percent float64
	Goal    float64
	Width   int
}

// View renders the bar with the label on the left and the percent on the
// right.
func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = theme.Body.Render(p.Label) + "  "
	}

	pct := min(max(p.Percent, 0), 100)
	barWidth := max(p.Width-lipgloss.Width(out)-6, 4)
	filled := int(float64(barWidth) * pct / 100)
	empty := barWidth - filled

	fill := theme.ProgressFilled
	if p.Goal > 0 && pct >= p.Goal {
		fill = fill.Background(theme.Success)
	}
	out += fill.Render(strings.Repeat(" ", filled)) + theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	out += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %4.0f%%", pct))
	return out
}
