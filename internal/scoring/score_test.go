package scoring

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
)

func q(id, correct string) question.Question {
	return question.Question{
		ID: id,
		Options: []question.Option{
			{ID: "opt1", Text: "a"},
			{ID: "opt2", Text: "b"},
			{ID: "opt3", Text: "c"},
		},
		CorrectOptionID: correct,
	}
}

func TestScore_MixedAnswers(t *testing.T) {
	attempts := []Attempt{
		{Question: q("q1", "opt1"), Answer: "opt1", TimeSpent: 12 * time.Second},
		{Question: q("q2", "opt1"), Answer: "opt2"},
		{Question: q("q3", "opt3")},
		{Question: q("q4", "opt1"), Answer: "opt1"},
	}

	sum := Score(attempts, 95*time.Second)

	assert.Equal(t, 2, sum.Correct)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Incorrect())
	assert.Equal(t, 50, sum.Percent)
	assert.Equal(t, TierNeedsWork, sum.Tier())
	assert.Equal(t, "Needs more work", sum.Message())

	require.Len(t, sum.Details, 4)
	assert.False(t, sum.Details[2].Answered())
	assert.False(t, sum.Details[2].Correct)
	assert.Equal(t, "opt3", sum.Details[2].CorrectAnswer)
	assert.Equal(t, 12*time.Second, sum.Details[0].TimeSpent)
}

func TestScore_Empty(t *testing.T) {
	sum := Score(nil, 0)
	assert.Equal(t, 0, sum.Percent)
	assert.Equal(t, 0, sum.Total)
}

func TestPercent_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 4, 0},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{7, 9, 78},
	}
	for _, tt := range tests {
		got := Percent(tt.correct, tt.total)
		assert.Equal(t, tt.want, got, "Percent(%d, %d)", tt.correct, tt.total)
	}
}

func TestPercent_InRangeAndConsistent(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for correct := 0; correct <= total; correct++ {
			p := Percent(correct, total)
			if p < 0 || p > 100 {
				t.Fatalf("Percent(%d, %d) = %d, out of range", correct, total, p)
			}
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		percent int
		want    Tier
	}{
		{100, TierExcellent},
		{85, TierExcellent},
		{80, TierExcellent},
		{79, TierGood},
		{75, TierGood},
		{70, TierGood},
		{69, TierNeedsWork},
		{55, TierNeedsWork},
		{50, TierNeedsWork},
		{49, TierRequiresReview},
		{30, TierRequiresReview},
		{0, TierRequiresReview},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.percent), "TierFor(%d)", tt.percent)
	}
}

func TestTierFor_Monotonic(t *testing.T) {
	prev := TierFor(0)
	for p := 1; p <= 100; p++ {
		cur := TierFor(p)
		if cur < prev {
			t.Fatalf("TierFor(%d) = %v < TierFor(%d) = %v", p, cur, p-1, prev)
		}
		prev = cur
	}
}

func TestMessageFor(t *testing.T) {
	assert.Equal(t, "Excellent! Module unlocked!", MessageFor(85))
	assert.Equal(t, "Good result!", MessageFor(75))
	assert.Equal(t, "Needs more work", MessageFor(55))
	assert.Equal(t, "Requires review of the material", MessageFor(30))
}

func TestPayload(t *testing.T) {
	sum := Score([]Attempt{
		{Question: q("q1", "opt1"), Answer: "opt1", TimeSpent: 1500 * time.Millisecond},
		{Question: q("q2", "opt2")},
	}, 61*time.Second+900*time.Millisecond)

	p := Payload(sum, Meta{
		SessionID: "s1",
		TestType:  progress.TestModule,
		Mode:      "90_second",
		BookID:    2,
		ModuleID:  4,
	})

	assert.Equal(t, "90_second", p.TestMode)
	assert.Equal(t, progress.TestModule, p.TestType)
	assert.Equal(t, 61, p.TimeSpentSeconds)
	assert.Equal(t, 2, p.BookID)
	assert.Equal(t, 4, p.ModuleID)
	require.Len(t, p.QuestionDetails, 2)
	require.NotNil(t, p.QuestionDetails[0].UserAnswer)
	assert.Equal(t, "opt1", *p.QuestionDetails[0].UserAnswer)
	assert.Equal(t, 1, p.QuestionDetails[0].TimeSpent)
	assert.Nil(t, p.QuestionDetails[1].UserAnswer)
	assert.Equal(t, "opt2", p.QuestionDetails[1].CorrectAnswer)
}

func TestReporter_DeliversInBackground(t *testing.T) {
	fake := progress.NewFake()
	r := NewReporter(fake, slog.New(slog.DiscardHandler), time.Second)

	acked := make(chan *progress.Result, 1)
	r.OnAck(func(_ progress.Submission, res *progress.Result) { acked <- res })

	r.Report(progress.Submission{SessionID: "s1", TestMode: "standard"})
	r.Wait()

	require.Len(t, fake.Submissions(), 1)
	assert.Equal(t, "s1", fake.Submissions()[0].SessionID)
	assert.Equal(t, 0, r.Pending())
	select {
	case res := <-acked:
		assert.Equal(t, "standard", res.TestMode)
	default:
		t.Fatal("expected ack callback")
	}
}

func TestReporter_FailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	fake := progress.NewFake()
	fake.SubmitErr = errors.New("network down")
	r := NewReporter(fake, slog.New(slog.NewTextHandler(&buf, nil)), time.Second)

	r.Report(progress.Submission{SessionID: "s2", TestMode: "learning"})
	r.Wait()

	assert.Empty(t, fake.Submissions())
	assert.Contains(t, buf.String(), "result submission failed")
	assert.Contains(t, buf.String(), "session_id=s2")
	assert.Contains(t, buf.String(), "network down")
}
