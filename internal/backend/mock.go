package backend

import (
	"github.com/cfaprep/cfaprep/internal/bank"
	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/shuffle"
	"github.com/cfaprep/cfaprep/internal/store"
)

const (
	// MockExamSize is the number of questions in a full mock exam.
	MockExamSize = 180

	mockErrorShare = 0.3
	mockWeakShare  = 0.3
)

// MockErrorPool is how many of the most frequent errors are considered for
// the error share of a mock exam of the given size.
func MockErrorPool(size int) int {
	return 2 * int(float64(size)*mockErrorShare)
}

// SelectMockExam draws a mock exam of size questions from entries: up to 30%
// from the learner's most frequently missed questions, up to 30% from weak
// modules, and the rest at random, without repeats and in random order. When
// fewer than size questions exist, all of them are returned shuffled.
func SelectMockExam(s *shuffle.Shuffler, entries []bank.Entry, frequent []store.ErrorRecord, weak []store.ModuleProgress, size int) []question.Raw {
	if len(entries) < size {
		return raws(shuffle.Shuffle(s, entries))
	}

	used := make(map[string]bool, size)
	var selected []bank.Entry
	take := func(pool []bank.Entry, n int) {
		var avail []bank.Entry
		for _, e := range pool {
			if !used[e.Question.QuestionID] {
				avail = append(avail, e)
			}
		}
		for _, e := range shuffle.Sample(s, avail, n) {
			used[e.Question.QuestionID] = true
			selected = append(selected, e)
		}
	}

	missed := make(map[string]bool, len(frequent))
	for _, rec := range frequent {
		missed[rec.QuestionID] = true
	}
	var errorPool []bank.Entry
	for _, e := range entries {
		if missed[e.Question.QuestionID] {
			errorPool = append(errorPool, e)
		}
	}
	take(errorPool, int(float64(size)*mockErrorShare))

	weakSet := make(map[bank.Location]bool, len(weak))
	for _, p := range weak {
		weakSet[bank.Location{BookID: p.BookID, ModuleID: p.ModuleID}] = true
	}
	var weakPool []bank.Entry
	for _, e := range entries {
		if weakSet[e.Location] {
			weakPool = append(weakPool, e)
		}
	}
	take(weakPool, int(float64(size)*mockWeakShare))

	take(entries, size-len(selected))

	return raws(shuffle.Shuffle(s, selected))
}

func raws(entries []bank.Entry) []question.Raw {
	out := make([]question.Raw, len(entries))
	for i, e := range entries {
		out[i] = e.Question
	}
	return out
}
