package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfaprep/cfaprep/internal/question"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(HTTPConfig{BaseURL: srv.URL, Token: token})
	require.NoError(t, err)
	return c
}

func TestHTTPClient_ModuleQuestionsSendsBearer(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"question_id":"q1","question_text":"?","options":{"A":"x","B":"y"},"correct_answer":"B"}]`))
	}, "s3cret")

	qs, err := c.ModuleQuestions(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, "/api/tests/module/1/2", gotPath)
	require.Len(t, qs, 1)
	assert.Equal(t, question.FormatLegacy, qs[0].Options.Format())
}

func TestHTTPClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"total_due":0,"questions":[]}`))
	}, "")

	due, err := c.DueItems(context.Background(), 20)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, 0, due.TotalDue)
}

func TestHTTPClient_SubmitResultPayload(t *testing.T) {
	var got Submission
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tests/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"r1","total_questions":1,"correct_answers":0}`))
	}, "")

	res, err := c.SubmitResult(context.Background(), Submission{
		TestType: TestModule,
		TestMode: "90_second",
		BookID:   1,
		ModuleID: 3,
		QuestionDetails: []QuestionDetail{
			{QuestionID: "q1", CorrectAnswer: "opt2"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.ID)
	assert.Equal(t, "90_second", got.TestMode)
	require.Len(t, got.QuestionDetails, 1)
	assert.Nil(t, got.QuestionDetails[0].UserAnswer)
}

func TestHTTPClient_StatusErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tests/mock-exam" {
			http.Error(w, "boom", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "no such module", http.StatusNotFound)
	}, "")

	_, err := c.ModuleQuestions(context.Background(), 9, 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, IsRetryable(err))

	_, err = c.MockExam(context.Background())
	var status *ErrStatus
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, status.StatusCode)
	assert.Equal(t, "boom", status.Body)
	assert.True(t, IsRetryable(err))
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(HTTPConfig{BaseURL: url})
	require.NoError(t, err)

	_, err = c.Progress(context.Background())
	var unavail *ErrUnavailable
	assert.True(t, errors.As(err, &unavail))
	assert.True(t, IsRetryable(err))
}

func TestNewHTTPClient_RejectsBadScheme(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}
