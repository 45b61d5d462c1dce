package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

const titleFull = ` ██████╗███████╗ █████╗     ██████╗ ██████╗ ███████╗██████╗
██╔════╝██╔════╝██╔══██╗    ██╔══██╗██╔══██╗██╔════╝██╔══██╗
██║     █████╗  ███████║    ██████╔╝██████╔╝█████╗  ██████╔╝
██║     ██╔══╝  ██╔══██║    ██╔═══╝ ██╔══██╗██╔══╝  ██╔═══╝
╚██████╗██║     ██║  ██║    ██║     ██║  ██║███████╗██║
 ╚═════╝╚═╝     ╚═╝  ╚═╝    ╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝`

const titleCompact = "C F A · P R E P"

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	title := titleFull
	if compact || cw < lipgloss.Width(titleFull) {
		title = titleCompact
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(style.Render(title))
}

// renderStatsBar shows overall mastery and the review queue in a box at the
// content width.
func (h *HomeScreen) renderStatsBar(cw int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var stats string
	switch {
	case h.errMsg != "":
		stats = lipgloss.NewStyle().Foreground(theme.Error).Render(h.errMsg)
	case !h.loaded:
		stats = dim.Render("loading progress...")
	default:
		mastery := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render(fmt.Sprintf("%.0f%% MASTERY", h.mastery))
		due := dim.Render("NONE DUE")
		if h.dueToday > 0 {
			due = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
				Render(fmt.Sprintf("%d DUE", h.dueToday))
		}
		errs := dim.Render(fmt.Sprintf("%d TRACKED", h.totalError))
		stats = mastery + "   " + due + "   " + errs
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func renderMenu(m components.Menu, cw int) string {
	return lipgloss.NewStyle().Width(cw).Render(m.View())
}
