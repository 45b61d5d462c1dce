package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
)

func legacyRaw(id, correct string) question.Raw {
	return question.Raw{
		QuestionID:   id,
		QuestionText: "Which is right?",
		Options: question.RawOptions{Letters: map[string]string{
			"A": "alpha", "B": "beta", "C": "gamma",
		}},
		CorrectAnswer: correct,
	}
}

func TestLoader_ModuleLegacyRecords(t *testing.T) {
	fake := progress.NewFake()
	fake.SetModule(2, 5, []question.Raw{legacyRaw("q1", "B"), legacyRaw("q2", "C")})
	h := newHarness(1)

	err := NewLoader(fake).Load(context.Background(), h.sess, ModuleSource(2, 5), Learning)
	require.NoError(t, err)

	assert.Equal(t, PhaseActive, h.sess.Phase())
	assert.Equal(t, Learning, h.sess.Mode())
	assert.Equal(t, 2, h.sess.Len())
	for _, q := range h.sess.Questions() {
		switch q.ID {
		case "q1":
			assert.Equal(t, "opt2", q.CorrectOptionID)
		case "q2":
			assert.Equal(t, "opt3", q.CorrectOptionID)
		}
	}
}

func TestLoader_MockExamForcesNinetySecond(t *testing.T) {
	fake := progress.NewFake()
	var raws []question.Raw
	for i := 1; i <= 6; i++ {
		raws = append(raws, legacyRaw(fmt.Sprintf("m%d", i), "A"))
	}
	fake.SetMockExam(raws)
	h := newHarness(1)

	err := NewLoader(fake).Load(context.Background(), h.sess, MockExamSource(), Standard)
	require.NoError(t, err)

	assert.Equal(t, NinetySecond, h.sess.Mode())
	for i, q := range h.sess.Questions() {
		assert.Equal(t, raws[i].QuestionID, q.ID, "service order is kept")
	}
}

func TestLoader_ReadFailureLeavesIdle(t *testing.T) {
	fake := progress.NewFake()
	fake.ReadErr = &progress.ErrUnavailable{}
	h := newHarness(1)

	err := NewLoader(fake).Load(context.Background(), h.sess, ModuleSource(1, 1), Standard)
	var unavail *progress.ErrUnavailable
	assert.ErrorAs(t, err, &unavail)
	assert.Equal(t, PhaseIdle, h.sess.Phase())
	assert.False(t, h.sess.TimerRunning())
}

func TestLoader_EmptyBank(t *testing.T) {
	fake := progress.NewFake()
	fake.SetModule(1, 1, []question.Raw{})
	h := newHarness(1)

	err := NewLoader(fake).Load(context.Background(), h.sess, ModuleSource(1, 1), Standard)
	assert.ErrorIs(t, err, ErrEmptyQuestionSet)
	assert.Equal(t, PhaseIdle, h.sess.Phase())
}

func TestLoader_BadRecordFailsWholeLoad(t *testing.T) {
	fake := progress.NewFake()
	bad := question.Raw{
		QuestionID:      "q2",
		QuestionText:    "?",
		Options:         question.RawOptions{List: []question.Option{{ID: "a", Text: "x"}}},
		CorrectOptionID: "z",
	}
	fake.SetModule(1, 1, []question.Raw{legacyRaw("q1", "A"), bad})
	h := newHarness(1)

	err := NewLoader(fake).Load(context.Background(), h.sess, ModuleSource(1, 1), Standard)
	assert.ErrorIs(t, err, question.ErrCorrectOptionMissing)
	assert.Equal(t, PhaseIdle, h.sess.Phase())
}

func TestBeginLoading(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), Standard))

	h.sess.BeginLoading(BookSource(3))
	assert.Equal(t, PhaseLoading, h.sess.Phase())
	assert.False(t, h.sess.TimerRunning())
	assert.Equal(t, "Book 3", h.sess.Source().Title())
}
