package review

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfaprep/cfaprep/internal/progress"
	"github.com/cfaprep/cfaprep/internal/question"
	"github.com/cfaprep/cfaprep/internal/shuffle"
)

func dueItem(id, correct string) progress.DueItem {
	return progress.DueItem{
		QuestionID:         id,
		BookID:             1,
		ModuleID:           2,
		ErrorCount:         1,
		ReviewIntervalDays: 1,
		Question: question.Raw{
			QuestionID:    id,
			QuestionText:  "What is duration?",
			Options:       question.RawOptions{Letters: map[string]string{"A": "x", "B": "y", "C": "z"}},
			CorrectAnswer: correct,
			ExplanationWrong: map[string]question.RawWrongExplanation{
				"A": {Text: "x ignores convexity"},
			},
		},
	}
}

func newLoop(fake *progress.Fake) *Loop {
	return NewLoop(fake,
		WithShuffler(shuffle.NewSeeded(1)),
		WithLogger(slog.New(slog.DiscardHandler)))
}

func TestLoop_EmptyQueue(t *testing.T) {
	l := newLoop(progress.NewFake())
	assert.False(t, l.Done(), "not loaded yet")

	require.NoError(t, l.Refresh(context.Background()))
	assert.True(t, l.Done())
	_, ok := l.Current()
	assert.False(t, ok)

	_, err := l.Answer(context.Background(), "opt1")
	assert.ErrorIs(t, err, ErrNoItem)
}

func TestLoop_WrongAnswerStillTransitions(t *testing.T) {
	fake := progress.NewFake()
	fake.SetDue([]progress.DueItem{dueItem("q1", "B"), dueItem("q2", "C")})
	l := newLoop(fake)
	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, 2, l.TotalDue())

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, "q1", cur.QuestionID)
	assert.ElementsMatch(t, cur.Question.Options, l.Options())

	out, err := l.Answer(context.Background(), "opt1")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, "opt2", out.CorrectOption.ID)
	require.NotNil(t, out.WrongExplanation)
	assert.Equal(t, "x ignores convexity", out.WrongExplanation.Text)
	require.NotNil(t, out.Ack)
	assert.Equal(t, 1, out.Ack.NewIntervalDays)

	assert.Equal(t, []progress.ReviewAnswer{{QuestionID: "q1", WasCorrect: false}}, fake.Reviews())
	assert.Equal(t, 1, l.TotalDue(), "due count comes from the refetch")
	cur, ok = l.Current()
	require.True(t, ok)
	assert.Equal(t, "q2", cur.QuestionID)
}

func TestLoop_CorrectAnswerUntilEmpty(t *testing.T) {
	fake := progress.NewFake()
	fake.SetDue([]progress.DueItem{dueItem("q1", "A")})
	l := newLoop(fake)
	require.NoError(t, l.Refresh(context.Background()))

	out, err := l.Answer(context.Background(), "opt1")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Nil(t, out.WrongExplanation)
	assert.True(t, l.Done())
	assert.Equal(t, 0, l.TotalDue())
}

func TestLoop_ReportFailureIsNotFatal(t *testing.T) {
	fake := progress.NewFake()
	fake.SetDue([]progress.DueItem{dueItem("q1", "A")})
	fake.ReviewErr = errors.New("write failed")
	l := newLoop(fake)
	require.NoError(t, l.Refresh(context.Background()))

	out, err := l.Answer(context.Background(), "opt2")
	require.NoError(t, err)
	assert.EqualError(t, out.ReportErr, "write failed")
	assert.Nil(t, out.Ack)
	assert.Equal(t, 1, l.Remaining(), "service still has it due")
}

func TestLoop_RefetchFailurePropagates(t *testing.T) {
	fake := progress.NewFake()
	fake.ReadErr = &progress.ErrUnavailable{}
	l := newLoop(fake)

	err := l.Refresh(context.Background())
	var unavail *progress.ErrUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestLoop_SkipsMalformedItems(t *testing.T) {
	bad := dueItem("bad", "A")
	bad.Question.Options = question.RawOptions{List: []question.Option{}}
	fake := progress.NewFake()
	fake.SetDue([]progress.DueItem{bad, dueItem("q2", "A")})
	l := newLoop(fake)

	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, 1, l.Skipped())
	assert.Equal(t, 1, l.Remaining())
	cur, _ := l.Current()
	assert.Equal(t, "q2", cur.QuestionID)
}

type blockingService struct {
	*progress.Fake
	entered chan struct{}
	release chan struct{}
}

func (b *blockingService) SubmitReview(ctx context.Context, a progress.ReviewAnswer) (*progress.ReviewAck, error) {
	close(b.entered)
	<-b.release
	return b.Fake.SubmitReview(ctx, a)
}

func TestLoop_OneAnswerInFlight(t *testing.T) {
	fake := progress.NewFake()
	fake.SetDue([]progress.DueItem{dueItem("q1", "A"), dueItem("q2", "A")})
	svc := &blockingService{Fake: fake, entered: make(chan struct{}), release: make(chan struct{})}
	l := NewLoop(svc, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, l.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := l.Answer(context.Background(), "opt1")
		done <- err
	}()
	<-svc.entered

	_, err := l.Answer(context.Background(), "opt1")
	assert.ErrorIs(t, err, ErrBusy)

	close(svc.release)
	require.NoError(t, <-done)
	assert.Len(t, fake.Reviews(), 1)
}

// flakyDue fails every DueItems call after the first.
type flakyDue struct {
	*progress.Fake
	calls int
}

func (f *flakyDue) DueItems(ctx context.Context, limit int) (*progress.DueList, error) {
	f.calls++
	if f.calls > 1 {
		return nil, errors.New("network down")
	}
	return f.Fake.DueItems(ctx, limit)
}

func TestLoop_FailedRefetchDoesNotRepeatAnsweredItem(t *testing.T) {
	fake := progress.NewFake()
	fake.SetDue([]progress.DueItem{dueItem("q1", "A"), dueItem("q2", "A")})
	svc := &flakyDue{Fake: fake}
	l := NewLoop(svc, WithShuffler(shuffle.NewSeeded(1)), WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, l.Refresh(context.Background()))

	_, err := l.Answer(context.Background(), "opt1")
	require.EqualError(t, err, "network down")

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, "q2", cur.QuestionID)
	assert.Equal(t, 1, l.TotalDue())
	assert.ElementsMatch(t, cur.Question.Options, l.Options())

	_, err = l.Answer(context.Background(), "opt1")
	require.Error(t, err)
	assert.Equal(t, []progress.ReviewAnswer{
		{QuestionID: "q1", WasCorrect: true},
		{QuestionID: "q2", WasCorrect: true},
	}, fake.Reviews())
	assert.True(t, l.Done())
}
