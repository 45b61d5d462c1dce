package mastery

import (
	"testing"
	"time"

	"github.com/cfaprep/cfaprep/internal/store"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestPercent(t *testing.T) {
	tests := []struct {
		correct, seen int
		want          float64
	}{
		{0, 0, 0},
		{3, 4, 75},
		{4, 4, 100},
		{1, 3, 100.0 / 3},
	}
	for _, tt := range tests {
		if got := Percent(tt.correct, tt.seen); got != tt.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tt.correct, tt.seen, got, tt.want)
		}
	}
}

func TestApply_NewRow(t *testing.T) {
	p := Apply(nil, 1, 2, 10, 8, t0)
	if p.BookID != 1 || p.ModuleID != 2 || p.QuestionsSeen != 10 || p.QuestionsCorrect != 8 {
		t.Errorf("Apply = %+v", p)
	}
	if p.MasteryPercent != 80 || !p.Unlocked {
		t.Errorf("mastery = %v unlocked = %v, want 80 true", p.MasteryPercent, p.Unlocked)
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(t0) {
		t.Errorf("CompletedAt = %v, want %v", p.CompletedAt, t0)
	}
}

func TestApply_KeepsBestCounts(t *testing.T) {
	prev := &store.ModuleProgress{BookID: 1, ModuleID: 1, QuestionsSeen: 20, QuestionsCorrect: 10, MasteryPercent: 50}
	p := Apply(prev, 1, 1, 10, 9, t0)
	if p.QuestionsSeen != 20 || p.QuestionsCorrect != 10 {
		t.Errorf("counts = %d/%d, want 10/20", p.QuestionsCorrect, p.QuestionsSeen)
	}
	if p.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil at 50%%", p.CompletedAt)
	}
	if prev.UpdatedAt != (time.Time{}) {
		t.Error("Apply mutated prev")
	}
}

func TestApply_CompletionSetOnce(t *testing.T) {
	first := t0.Add(-48 * time.Hour)
	prev := &store.ModuleProgress{QuestionsSeen: 10, QuestionsCorrect: 9, MasteryPercent: 90, CompletedAt: &first}
	p := Apply(prev, 1, 1, 10, 10, t0)
	if !p.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt = %v, want original %v", p.CompletedAt, first)
	}
}

func TestIsWeak(t *testing.T) {
	if !IsWeak(store.ModuleProgress{MasteryPercent: 69.9}) {
		t.Error("69.9 should be weak")
	}
	if IsWeak(store.ModuleProgress{MasteryPercent: 70}) {
		t.Error("70 should not be weak")
	}
}
