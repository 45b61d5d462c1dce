package mastery

import (
	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/store"
)

// ResolveDisplayState maps a module's progress row into the display state
// used by the UI. A nil row means the module was never touched; the first
// module of every book is always available.
func ResolveDisplayState(p *store.ModuleProgress, moduleID int) ModuleState {
	if p == nil {
		if moduleID == 1 {
			return StateAvailable
		}
		return StateLocked
	}
	switch {
	case IsCompleted(*p):
		return StateCompleted
	case p.QuestionsSeen == 0 && (p.Unlocked || moduleID == 1):
		return StateAvailable
	case p.QuestionsSeen == 0:
		return StateLocked
	case IsWeak(*p):
		return StateWeak
	default:
		return StateLearning
	}
}

// StateOf resolves the display state of a module reported by the progress
// service.
func StateOf(m progress.ModuleProgress) ModuleState {
	return ResolveDisplayState(&store.ModuleProgress{
		BookID:           m.BookID,
		ModuleID:         m.ModuleID,
		QuestionsSeen:    m.QuestionsSeen,
		QuestionsCorrect: m.QuestionsCorrect,
		MasteryPercent:   m.MasteryPercent,
		Unlocked:         m.IsUnlocked,
		CompletedAt:      m.CompletedAt,
	}, m.ModuleID)
}

// Open reports whether a module may be started. The first module listed for a
// book is always open; any other opens once it was unlocked or once prev, the
// module listed before it, reached CompletionPercent. Nil rows were never
// touched.
func Open(first bool, cur, prev *progress.ModuleProgress) bool {
	switch {
	case first:
		return true
	case cur != nil && cur.IsUnlocked:
		return true
	case prev != nil && prev.MasteryPercent >= CompletionPercent:
		return true
	}
	return false
}
