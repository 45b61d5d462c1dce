package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/scoring"
	"github.com/cfaprep/cfaprep/internal/shuffle"
	"github.com/cfaprep/cfaprep/internal/timer"
)

var epoch = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type recordingReporter struct {
	mu   sync.Mutex
	subs []progress.Submission
}

func (r *recordingReporter) Report(sub progress.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

type harness struct {
	clock    *timer.ManualClock
	reporter *recordingReporter
	ticks    []timer.Signal
	sess     *Session
}

func newHarness(seed uint64) *harness {
	h := &harness{
		clock:    timer.NewManualClock(epoch),
		reporter: &recordingReporter{},
	}
	n := 0
	h.sess = New(Config{
		Clock:    h.clock,
		Shuffler: shuffle.NewSeeded(seed),
		Reporter: h.reporter,
		OnTick:   func(s timer.Signal) { h.ticks = append(h.ticks, s) },
		NewID: func() string {
			n++
			return fmt.Sprintf("session-%d", n)
		},
	})
	return h
}

func mkQuestion(id, correct string) question.Question {
	return question.Question{
		ID:   id,
		Text: "Question " + id,
		Options: []question.Option{
			{ID: "opt1", Text: "first"},
			{ID: "opt2", Text: "second"},
			{ID: "opt3", Text: "third"},
			{ID: "opt4", Text: "fourth"},
		},
		CorrectOptionID: correct,
		Explanation:     "because",
		WrongExplanations: map[string]question.WrongExplanation{
			"opt2": {Text: "opt2 confuses nominal and real"},
		},
	}
}

func mkQuestions(n int) []question.Question {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = mkQuestion(fmt.Sprintf("q%d", i+1), "opt1")
	}
	return qs
}

func TestStart_EmptyQuestionSet(t *testing.T) {
	h := newHarness(1)
	err := h.sess.Start(ModuleSource(1, 1), nil, Standard)

	assert.ErrorIs(t, err, ErrEmptyQuestionSet)
	assert.Equal(t, PhaseIdle, h.sess.Phase())
	assert.False(t, h.sess.TimerRunning())
	assert.Equal(t, 0, h.clock.Active())
}

func TestStart_UnresolvableCorrectAnswer(t *testing.T) {
	h := newHarness(1)
	bad := mkQuestion("q1", "opt9")

	err := h.sess.Start(ModuleSource(1, 1), []question.Question{bad}, Standard)
	assert.ErrorIs(t, err, question.ErrCorrectOptionMissing)
	assert.Equal(t, PhaseIdle, h.sess.Phase())
	assert.False(t, h.sess.TimerRunning())
}

func TestStart_TimerPolicyByMode(t *testing.T) {
	tests := []struct {
		mode    Mode
		running bool
		policy  timer.Policy
	}{
		{Standard, true, timer.CountUp},
		{Learning, false, 0},
		{NinetySecond, true, timer.CountDown},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			h := newHarness(1)
			require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(3), tt.mode))
			assert.Equal(t, PhaseActive, h.sess.Phase())
			assert.Equal(t, 0, h.sess.Index())
			assert.Equal(t, tt.running, h.sess.TimerRunning())

			h.clock.Advance(2 * time.Second)
			if !tt.running {
				assert.Empty(t, h.ticks)
				return
			}
			require.NotEmpty(t, h.ticks)
			assert.Equal(t, tt.policy, h.ticks[len(h.ticks)-1].Policy)
		})
	}
}

func TestStart_ShufflesWithoutLosingQuestions(t *testing.T) {
	h := newHarness(7)
	qs := mkQuestions(12)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), qs, Standard))

	var got []string
	for _, q := range h.sess.Questions() {
		got = append(got, q.ID)
	}
	var want []string
	for _, q := range qs {
		want = append(want, q.ID)
	}
	assert.ElementsMatch(t, want, got)
	assert.Equal(t, "q1", qs[0].ID, "input must not be reordered")
}

func TestStart_PreShuffledKeepsOrder(t *testing.T) {
	h := newHarness(7)
	qs := mkQuestions(8)
	require.NoError(t, h.sess.Start(MockExamSource(), qs, NinetySecond))

	for i, q := range h.sess.Questions() {
		assert.Equal(t, qs[i].ID, q.ID)
	}
}

func TestEndToEnd_FourQuestionStandard(t *testing.T) {
	h := newHarness(42)
	qs := []question.Question{
		mkQuestion("q1", "opt1"),
		mkQuestion("q2", "opt1"),
		mkQuestion("q3", "opt3"),
		mkQuestion("q4", "opt1"),
	}
	answers := map[string]string{"q1": "opt1", "q2": "opt2", "q4": "opt1"}

	require.NoError(t, h.sess.Start(ModuleSource(1, 2), qs, Standard))

	var sum *scoring.Summary
	for i := 0; i < len(qs); i++ {
		cur, ok := h.sess.Current()
		require.True(t, ok)
		if a, ok := answers[cur.ID]; ok {
			d, err := h.sess.SelectAnswer(a)
			require.NoError(t, err)
			assert.Nil(t, d, "standard mode discloses nothing before submit")
		}
		h.clock.Advance(10 * time.Second)

		var err error
		sum, err = h.sess.Next()
		require.NoError(t, err)
		if i < len(qs)-1 {
			require.Nil(t, sum)
		}
	}

	require.NotNil(t, sum)
	assert.Equal(t, 2, sum.Correct)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 50, sum.Percent)
	assert.Equal(t, scoring.TierNeedsWork, sum.Tier())
	assert.Equal(t, 40*time.Second, sum.Elapsed)
	assert.Equal(t, sum.Total, sum.Correct+sum.Incorrect())
	assert.Equal(t, PhaseCompleted, h.sess.Phase())

	require.Equal(t, 1, h.reporter.count())
	sub := h.reporter.subs[0]
	assert.Equal(t, "standard", sub.TestMode)
	assert.Equal(t, progress.TestModule, sub.TestType)
	assert.Equal(t, 1, sub.BookID)
	assert.Equal(t, 2, sub.ModuleID)
	assert.Equal(t, 40, sub.TimeSpentSeconds)
	assert.Equal(t, "session-1", sub.SessionID)
	require.Len(t, sub.QuestionDetails, 4)
	for _, d := range sub.QuestionDetails {
		assert.Equal(t, 10, d.TimeSpent)
		if d.QuestionID == "q3" {
			assert.Nil(t, d.UserAnswer)
			assert.False(t, d.Correct)
		}
	}
}

func TestNext_MonotonicThenSubmitsOnce(t *testing.T) {
	for _, mode := range []Mode{Standard, Learning} {
		t.Run(mode.String(), func(t *testing.T) {
			h := newHarness(3)
			require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(5), mode))

			prev := h.sess.Index()
			for h.sess.Phase() == PhaseActive {
				sum, err := h.sess.Next()
				require.NoError(t, err)
				if sum != nil {
					break
				}
				assert.Equal(t, prev+1, h.sess.Index())
				prev = h.sess.Index()
			}
			assert.Equal(t, 4, prev)
			assert.Equal(t, PhaseCompleted, h.sess.Phase())

			_, err := h.sess.Next()
			assert.ErrorIs(t, err, ErrNotActive)
			_, err = h.sess.Submit()
			assert.ErrorIs(t, err, ErrNotActive)
			assert.Equal(t, 1, h.reporter.count())
		})
	}
}

func TestNinetySecond_NavigationIsForwardOnly(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		h := newHarness(seed)
		rng := shuffle.NewSeeded(seed * 31)
		require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(6), NinetySecond))

		for step := 0; step < 40 && h.sess.Phase() == PhaseActive; step++ {
			before := h.sess.Index()
			switch rng.Intn(4) {
			case 0:
				assert.False(t, h.sess.Prev())
			case 1:
				assert.False(t, h.sess.JumpTo(rng.Intn(8)-1))
			case 2:
				assert.False(t, h.sess.ToggleFlag())
				assert.False(t, h.sess.Flagged(before))
			case 3:
				_, err := h.sess.Next()
				require.NoError(t, err)
				if h.sess.Phase() == PhaseActive {
					assert.Equal(t, before+1, h.sess.Index())
				}
				continue
			}
			assert.Equal(t, before, h.sess.Index())
		}
	}
}

func TestNinetySecond_SelectDisclosesAndLocks(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(MockExamSource(), []question.Question{mkQuestion("q1", "opt1")}, NinetySecond))

	d, err := h.sess.SelectAnswer("opt2")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.False(t, d.Correct)
	assert.Equal(t, "opt1", d.CorrectOption.ID)
	require.NotNil(t, d.WrongExplanation)
	assert.Equal(t, "opt2 confuses nominal and real", d.WrongExplanation.Text)
	assert.Equal(t, Answered, h.sess.QuestionState(0))

	_, err = h.sess.SelectAnswer("opt1")
	assert.ErrorIs(t, err, ErrAnswerLocked)
	a, _ := h.sess.Answer("q1")
	assert.Equal(t, "opt2", a)

	_, err = h.sess.CheckAnswer()
	assert.ErrorIs(t, err, ErrCheckNotAllowed)
}

func TestNinetySecond_CountDownResetsOnNext(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(3), NinetySecond))

	h.clock.Advance(95 * time.Second)
	sig, ok := h.sess.Signal()
	require.True(t, ok)
	assert.True(t, sig.Overflow)
	assert.Equal(t, "-00:05", sig.String())

	_, err := h.sess.Next()
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	last := h.ticks[len(h.ticks)-1]
	assert.False(t, last.Overflow)
	assert.Equal(t, 89, last.Seconds)
}

func TestStandard_CountUpNeverResets(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(3), Standard))

	h.clock.Advance(30 * time.Second)
	_, err := h.sess.Next()
	require.NoError(t, err)
	h.clock.Advance(time.Second)

	assert.Equal(t, 31, h.ticks[len(h.ticks)-1].Seconds)
}

func TestLearning_CheckFlow(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), []question.Question{mkQuestion("q1", "opt3"), mkQuestion("q2", "opt1")}, Learning))

	_, err := h.sess.CheckAnswer()
	assert.ErrorIs(t, err, ErrNoAnswerSelected)
	assert.Equal(t, Unanswered, h.sess.QuestionState(0))
	assert.Equal(t, PhaseActive, h.sess.Phase())

	d, err := h.sess.SelectAnswer("opt1")
	require.NoError(t, err)
	assert.Nil(t, d)
	_, err = h.sess.SelectAnswer("opt2")
	require.NoError(t, err, "answers may change before check")
	assert.Equal(t, Answered, h.sess.QuestionState(0))
	assert.True(t, h.sess.Capabilities().Check)

	cur, _ := h.sess.Current()
	d, err = h.sess.CheckAnswer()
	require.NoError(t, err)
	assert.Equal(t, Checked, h.sess.QuestionState(0))
	assert.Equal(t, cur.IsCorrect("opt2"), d.Correct)
	assert.False(t, h.sess.Capabilities().Check)

	_, err = h.sess.SelectAnswer("opt1")
	assert.ErrorIs(t, err, ErrAnswerLocked)

	got, ok := h.sess.Disclosure()
	require.True(t, ok)
	assert.Equal(t, d.Selected, got.Selected)
}

func TestStandard_CheckNotAllowed(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), Standard))
	_, err := h.sess.SelectAnswer("opt1")
	require.NoError(t, err)

	_, err = h.sess.CheckAnswer()
	assert.ErrorIs(t, err, ErrCheckNotAllowed)
	assert.Equal(t, Answered, h.sess.QuestionState(h.sess.Index()))
}

func TestSelectAnswer_Errors(t *testing.T) {
	h := newHarness(1)
	_, err := h.sess.SelectAnswer("opt1")
	assert.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), Standard))
	_, err = h.sess.SelectAnswer("opt7")
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = h.sess.SelectAnswer("opt2")
	require.NoError(t, err)
	_, err = h.sess.SelectAnswer("opt3")
	require.NoError(t, err)
	cur, _ := h.sess.Current()
	a, _ := h.sess.Answer(cur.ID)
	assert.Equal(t, "opt3", a, "re-answer overwrites")
	assert.Equal(t, 1, h.sess.Answered())
}

func TestNavigation_StandardAndLearning(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(4), Standard))

	assert.False(t, h.sess.Prev(), "prev at index 0 is a no-op")
	assert.True(t, h.sess.JumpTo(3))
	assert.Equal(t, 3, h.sess.Index())
	assert.False(t, h.sess.JumpTo(4))
	assert.False(t, h.sess.JumpTo(-1))
	assert.Equal(t, 3, h.sess.Index())
	assert.True(t, h.sess.Prev())
	assert.Equal(t, 2, h.sess.Index())

	assert.True(t, h.sess.ToggleFlag())
	assert.True(t, h.sess.Flagged(2))
	assert.True(t, h.sess.ToggleFlag())
	assert.False(t, h.sess.Flagged(2))

	h2 := newHarness(1)
	require.NoError(t, h2.sess.Start(ModuleSource(1, 1), mkQuestions(4), Learning))
	assert.False(t, h2.sess.JumpTo(2), "jump is standard-only")
	_, err := h2.sess.Next()
	require.NoError(t, err)
	assert.True(t, h2.sess.Prev())
	assert.True(t, h2.sess.ToggleFlag())
}

func TestCapabilities(t *testing.T) {
	h := newHarness(1)
	assert.Equal(t, Capabilities{}, h.sess.Capabilities())

	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), NinetySecond))
	c := h.sess.Capabilities()
	assert.True(t, c.Select)
	assert.True(t, c.Next)
	assert.False(t, c.Prev)
	assert.False(t, c.Jump)
	assert.False(t, c.Flag)
	assert.False(t, c.Check)
	assert.False(t, c.NextSubmits)

	_, err := h.sess.Next()
	require.NoError(t, err)
	assert.True(t, h.sess.Capabilities().NextSubmits)
}

func TestDots(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(3), Standard))
	_, err := h.sess.SelectAnswer("opt1")
	require.NoError(t, err)
	h.sess.ToggleFlag()
	h.sess.JumpTo(2)

	dots := h.sess.Dots()
	require.Len(t, dots, 3)
	assert.Equal(t, Dot{State: Answered, Flagged: true}, dots[0])
	assert.Equal(t, Dot{State: Unanswered}, dots[1])
	assert.Equal(t, Dot{Current: true, State: Unanswered}, dots[2])
}

func TestOptions_IdentityPreserved(t *testing.T) {
	h := newHarness(9)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(5), Standard))

	for i := 0; i < 5; i++ {
		require.True(t, h.sess.JumpTo(i))
		cur, _ := h.sess.Current()
		assert.ElementsMatch(t, cur.Options, h.sess.Options())
		for _, o := range h.sess.Options() {
			want, ok := cur.Option(o.ID)
			require.True(t, ok)
			assert.Equal(t, want.Text, o.Text)
		}
	}
}

func TestTimerSilentAfterSubmit(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), Standard))
	h.clock.Advance(3 * time.Second)

	_, err := h.sess.Submit()
	require.NoError(t, err)
	n := len(h.ticks)
	h.clock.Advance(10 * time.Minute)

	assert.Equal(t, n, len(h.ticks))
	assert.Equal(t, 0, h.clock.Active())
}

func TestTimerSilentAfterAbandon(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), NinetySecond))
	h.clock.Advance(3 * time.Second)

	h.sess.Abandon()
	n := len(h.ticks)
	h.clock.Advance(10 * time.Minute)

	assert.Equal(t, n, len(h.ticks))
	assert.Equal(t, 0, h.clock.Active())
	assert.Equal(t, PhaseIdle, h.sess.Phase())
	assert.Equal(t, 0, h.sess.Len())
	assert.Equal(t, 0, h.reporter.count())
}

func TestRestartKeepsOneTimer(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), Standard))
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), NinetySecond))

	assert.Equal(t, 1, h.clock.Active())
	h.clock.Advance(time.Second)
	require.Len(t, h.ticks, 1)
	assert.Equal(t, timer.CountDown, h.ticks[0].Policy)
}

func TestDwellTimeAccumulates(t *testing.T) {
	h := newHarness(1)
	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(2), Standard))
	first, _ := h.sess.Current()

	h.clock.Advance(5 * time.Second)
	_, err := h.sess.Next()
	require.NoError(t, err)
	h.clock.Advance(3 * time.Second)
	require.True(t, h.sess.Prev())
	h.clock.Advance(2 * time.Second)

	sum, err := h.sess.Submit()
	require.NoError(t, err)
	for _, d := range sum.Details {
		if d.QuestionID == first.ID {
			assert.Equal(t, 7*time.Second, d.TimeSpent)
		} else {
			assert.Equal(t, 3*time.Second, d.TimeSpent)
		}
	}
}

func TestRetry(t *testing.T) {
	h := newHarness(1)
	assert.ErrorIs(t, h.sess.Retry(), ErrNotActive)

	require.NoError(t, h.sess.Start(ModuleSource(1, 1), mkQuestions(3), NinetySecond))
	_, err := h.sess.SelectAnswer("opt1")
	require.NoError(t, err)
	_, err = h.sess.Submit()
	require.NoError(t, err)

	require.NoError(t, h.sess.Retry())
	assert.Equal(t, PhaseActive, h.sess.Phase())
	assert.Equal(t, NinetySecond, h.sess.Mode())
	assert.Equal(t, "session-2", h.sess.ID())
	assert.Equal(t, 3, h.sess.Len())
	assert.Equal(t, 0, h.sess.Answered())
	assert.True(t, h.sess.TimerRunning())
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
		got, err = ParseMode(m.WireName())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("blitz")
	assert.Error(t, err)
	assert.Equal(t, "90_second", NinetySecond.WireName())
}
