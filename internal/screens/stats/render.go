package stats

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/cfaprep/cfaprep/internal/mastery"
	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/timer"
	"github.com/cfaprep/cfaprep/internal/ui/components"
	"github.com/cfaprep/cfaprep/internal/ui/theme"
)

// Render draws the dashboard at width cw. The CLI prints the same text.
func Render(d *progress.Dashboard, cw int) string {
	var b strings.Builder
	section := func(title string) {
		b.WriteString(theme.Selected.Render(title) + "\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)) + "\n")
	}

	ov := d.Overview
	section("Overall")
	b.WriteString(components.ProgressBar{
		Label: "Mastery ", Percent: ov.OverallMastery, Goal: mastery.CompletionPercent, Width: cw,
	}.View() + "\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d questions answered, %d correct, %d book(s) started",
		ov.TotalQuestionsSeen, ov.TotalQuestionsCorrect, ov.BooksStarted)) + "\n\n")

	e := d.Errors
	section("Mistakes")
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d tracked   %d due today   %d mastered",
		e.TotalErrors, e.DueToday, e.Mastered)) + "\n")
	if len(e.ByBook) > 0 {
		books := make([]int, 0, len(e.ByBook))
		for id := range e.ByBook {
			books = append(books, id)
		}
		sort.Ints(books)
		parts := make([]string, len(books))
		for i, id := range books {
			parts[i] = fmt.Sprintf("Book %d: %d", id, e.ByBook[id])
		}
		b.WriteString(theme.Hint.Render(strings.Join(parts, "   ")) + "\n")
	}
	b.WriteString("\n")

	if len(ov.Books) > 0 {
		section("Modules")
		for _, book := range ov.Books {
			b.WriteString(theme.Body.Bold(true).Render(fmt.Sprintf("Book %d", book.BookID)) + "\n")
			for _, m := range book.Modules {
				b.WriteString(renderModule(m, cw) + "\n")
			}
		}
		b.WriteString("\n")
	}

	section("Recent tests")
	if len(d.History) == 0 {
		b.WriteString(theme.Hint.Render("No tests taken yet.") + "\n")
	} else {
		b.WriteString(renderHistory(d.History) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderModule(m progress.ModuleProgress, cw int) string {
	state := mastery.StateOf(m)
	label := fmt.Sprintf("  M%-3d %-10s", m.ModuleID, state)
	if state == mastery.StateLocked {
		return lipgloss.NewStyle().Foreground(theme.Border).Render(label)
	}
	return components.ProgressBar{
		Label: label, Percent: m.MasteryPercent, Goal: mastery.CompletionPercent, Width: cw,
	}.View()
}

func renderHistory(hist []progress.Result) string {
	rows := make([][]string, 0, len(hist))
	for _, r := range hist {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("Jan 2 15:04"),
			testLabel(r),
			r.TestMode,
			fmt.Sprintf("%d/%d", r.CorrectAnswers, r.TotalQuestions),
			fmt.Sprintf("%.0f%%", r.ScorePercent),
			timer.Format(r.TimeSpentSeconds),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("When", "Test", "Mode", "Correct", "Score", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Foreground(theme.Primary).Bold(true)
			}
			return st.Foreground(theme.Text)
		}).
		Render()
}

func testLabel(r progress.Result) string {
	switch r.TestType {
	case progress.TestMockExam:
		return "Mock exam"
	case progress.TestBook:
		return fmt.Sprintf("Book %d", r.BookID)
	default:
		return fmt.Sprintf("Book %d · M%d", r.BookID, r.ModuleID)
	}
}
