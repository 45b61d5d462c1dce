package mastery

import (
	"time"

	"github.com/cfaprep/cfaprep/internal/store"
)

const (
	// CompletionPercent completes a module and unlocks the next one.
	CompletionPercent = 80.0
	// WeakPercent is the mastery below which a started module counts as weak.
	WeakPercent = 70.0
)

// Percent returns correct/seen as a percentage, 0 when nothing was seen.
func Percent(correct, seen int) float64 {
	if seen <= 0 {
		return 0
	}
	return float64(correct) / float64(seen) * 100
}

// Apply folds one test result into a module's progress row. Seen and correct
// counts keep their best values; the completion time is set the first time
// mastery reaches CompletionPercent and never cleared. A nil prev starts a new
// row.
func Apply(prev *store.ModuleProgress, bookID, moduleID, seen, correct int, now time.Time) *store.ModuleProgress {
	p := &store.ModuleProgress{BookID: bookID, ModuleID: moduleID}
	if prev != nil {
		*p = *prev
	}
	p.QuestionsSeen = max(p.QuestionsSeen, seen)
	p.QuestionsCorrect = max(p.QuestionsCorrect, correct)
	p.MasteryPercent = Percent(p.QuestionsCorrect, p.QuestionsSeen)
	p.Unlocked = true
	if p.MasteryPercent >= CompletionPercent && p.CompletedAt == nil {
		done := now
		p.CompletedAt = &done
	}
	p.UpdatedAt = now
	return p
}

// IsWeak reports whether a started module is below WeakPercent.
func IsWeak(p store.ModuleProgress) bool {
	return p.MasteryPercent < WeakPercent
}

// IsCompleted reports whether the module has reached CompletionPercent.
func IsCompleted(p store.ModuleProgress) bool {
	return p.CompletedAt != nil || p.MasteryPercent >= CompletionPercent
}
