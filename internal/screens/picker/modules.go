package picker

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/cfaprep/cfaprep/internal/mastery"
	"github.com/cfaprep/cfaprep/internal/progress"
)

// moduleRow is one module of the selected book as listed by the picker.
type moduleRow struct {
	Info     progress.ModuleInfo
	Progress *progress.ModuleProgress
	Open     bool
}

func (r moduleRow) state() mastery.ModuleState {
	switch {
	case !r.Open:
		return mastery.StateLocked
	case r.Progress == nil || r.Progress.QuestionsSeen == 0:
		return mastery.StateAvailable
	}
	return mastery.StateOf(*r.Progress)
}

func (r moduleRow) mastery() float64 {
	if r.Progress == nil {
		return 0
	}
	return r.Progress.MasteryPercent
}

// modulesLoadedMsg carries a book's module listing and the learner's progress
// in it. Refused is set when it answers a start request that was turned down.
type modulesLoadedMsg struct {
	BookID int
	Rows   []moduleRow
	// Progress holds the book's module records by module ID.
	Progress map[int]progress.ModuleProgress
	// Tracked is false when progress could not be fetched; locks are not
	// enforced then.
	Tracked bool
	Err     error
	Refused string
}

func fetchModules(ctx context.Context, svc progress.Service, bookID int) modulesLoadedMsg {
	msg := modulesLoadedMsg{BookID: bookID}
	if ov, err := svc.Progress(ctx); err == nil {
		msg.Tracked = true
		msg.Progress = bookProgress(ov, bookID)
	}
	info, err := svc.BookInfo(ctx, bookID)
	if err != nil {
		msg.Err = err
		return msg
	}
	var prev *progress.ModuleProgress
	for i, m := range info.Modules {
		row := moduleRow{Info: m, Open: true}
		if p, ok := msg.Progress[m.ModuleID]; ok {
			row.Progress = &p
		}
		if msg.Tracked {
			row.Open = mastery.Open(i == 0, row.Progress, prev)
		}
		prev = row.Progress
		msg.Rows = append(msg.Rows, row)
	}
	return msg
}

func bookProgress(ov *progress.Overview, bookID int) map[int]progress.ModuleProgress {
	out := make(map[int]progress.ModuleProgress)
	if ov == nil {
		return out
	}
	for _, b := range ov.Books {
		if b.BookID != bookID {
			continue
		}
		for _, m := range b.Modules {
			out[m.ModuleID] = m
		}
	}
	return out
}

// refusal explains why moduleID cannot be started, or returns "" when it can.
// Without a listing the module numbers stand in for list order.
func (m modulesLoadedMsg) refusal(moduleID int) string {
	if m.Err == nil {
		for i, r := range m.Rows {
			if r.Info.ModuleID != moduleID {
				continue
			}
			if r.Open {
				return ""
			}
			return lockedText(moduleID, m.Rows[i-1].Info.ModuleID)
		}
		return fmt.Sprintf("Book %d has no module %d", m.BookID, moduleID)
	}
	if !m.Tracked || moduleID == 1 {
		return ""
	}
	var cur, prev *progress.ModuleProgress
	if p, ok := m.Progress[moduleID]; ok {
		cur = &p
	}
	if p, ok := m.Progress[moduleID-1]; ok {
		prev = &p
	}
	if mastery.Open(false, cur, prev) {
		return ""
	}
	return lockedText(moduleID, moduleID-1)
}

func lockedText(moduleID, prevID int) string {
	return fmt.Sprintf("Module %d is locked. Reach %.0f%% mastery in module %d first.",
		moduleID, mastery.CompletionPercent, prevID)
}

func (p *PickerScreen) loadModules(bookID int) tea.Cmd {
	svc := p.env.Service
	if svc == nil || p.kind != KindModule {
		return nil
	}
	p.requested = bookID
	return func() tea.Msg {
		return fetchModules(context.Background(), svc, bookID)
	}
}
