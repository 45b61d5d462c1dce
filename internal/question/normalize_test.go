package question

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyRecord = `{
  "question_id": "Q-1-001",
  "question_text": "Which measure is most affected by outliers?",
  "options": {"C": "Mode", "A": "Mean", "B": "Median"},
  "correct_answer": "A",
  "explanation": "The mean uses every observation.",
  "explanation_wrong": {"B": "The median ignores extremes.", "C": {"text_ru": "Мода", "formula": "M_o"}}
}`

const currentRecord = `{
  "question_id": "Q-1-002",
  "question_text": "Compute the FV.",
  "question_continuation": "Assume annual compounding.",
  "question_text_formula": "FV = PV(1+r)^n",
  "has_table": true,
  "table_data": {"headers": ["Year", "Rate"], "rows": [[1, 0.05], [2, "6%"]]},
  "difficulty": "medium",
  "options": [
    {"id": "opt1", "text": "1,102.50"},
    {"id": "opt2", "text": "1,100.00"},
    {"id": "opt3", "text": "1,050.00"}
  ],
  "correct_option_id": "opt1",
  "explanation": "Compound twice.",
  "explanation_wrong": {"opt2": "That is simple interest."},
  "calculator_steps": ["1000 PV", "5 I/Y", "2 N", "CPT FV"]
}`

func mustParse(t *testing.T, data string) Raw {
	t.Helper()
	r, err := ParseRaw([]byte(data))
	require.NoError(t, err)
	return r
}

func TestNormalize_Legacy(t *testing.T) {
	raw := mustParse(t, legacyRecord)
	require.Equal(t, FormatLegacy, raw.Options.Format())

	q, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []Option{
		{ID: "opt1", Text: "Mean"},
		{ID: "opt2", Text: "Median"},
		{ID: "opt3", Text: "Mode"},
	}, q.Options)
	assert.Equal(t, "opt1", q.CorrectOptionID)
	assert.Equal(t, "The median ignores extremes.", q.WrongExplanations["opt2"].Text)
	assert.Equal(t, WrongExplanation{Text: "Мода", Formula: "M_o"}, q.WrongExplanations["opt3"])
}

func TestNormalize_Current(t *testing.T) {
	q, err := Normalize(mustParse(t, currentRecord))
	require.NoError(t, err)

	assert.Equal(t, "Q-1-002", q.ID)
	assert.Equal(t, "opt1", q.CorrectOptionID)
	assert.Equal(t, "Assume annual compounding.", q.Continuation)
	assert.Equal(t, "FV = PV(1+r)^n", q.Formula)
	assert.Equal(t, "medium", q.Difficulty)
	require.NotNil(t, q.Table)
	assert.Equal(t, []string{"Year", "Rate"}, q.Table.Headers)
	assert.Equal(t, [][]string{{"1", "0.05"}, {"2", "6%"}}, q.Table.Rows)
	assert.Len(t, q.CalculatorSteps, 4)
	assert.Equal(t, "1,102.50", q.CorrectOption().Text)
}

func TestNormalize_LetterTableIgnoresMapOrder(t *testing.T) {
	raw := Raw{
		QuestionID:    "q",
		Options:       RawOptions{Letters: map[string]string{"D": "d", "B": "b", "A": "a", "C": "c"}},
		CorrectAnswer: "D",
	}
	for range 20 {
		q, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, "opt4", q.CorrectOptionID)
		assert.Equal(t, "d", q.CorrectOption().Text)
		assert.Equal(t, "opt2", q.Options[1].ID)
	}
}

func TestNormalize_UnknownLetterFallsBackToFirstOption(t *testing.T) {
	raw := Raw{
		QuestionID:    "q",
		Options:       RawOptions{Letters: map[string]string{"A": "a", "B": "b"}},
		CorrectAnswer: "Z",
	}
	q, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptionID, q.CorrectOptionID)
}

func TestNormalize_ExplicitIDWinsOverLetter(t *testing.T) {
	raw := Raw{
		QuestionID:      "q",
		Options:         RawOptions{Letters: map[string]string{"A": "a", "B": "b"}},
		CorrectAnswer:   "A",
		CorrectOptionID: "opt2",
	}
	q, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "opt2", q.CorrectOptionID)
}

func TestNormalize_ExtraLegacyLettersKept(t *testing.T) {
	raw := Raw{
		QuestionID:    "q",
		Options:       RawOptions{Letters: map[string]string{"A": "a", "F": "f", "E": "e"}},
		CorrectAnswer: "f",
	}
	q, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []Option{{ID: "opt1", Text: "a"}, {ID: "opt5", Text: "e"}, {ID: "opt6", Text: "f"}}, q.Options)
	assert.Equal(t, "opt6", q.CorrectOptionID)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want error
	}{
		{"no options", Raw{QuestionID: "q"}, ErrNoOptions},
		{
			"correct id missing",
			Raw{QuestionID: "q", Options: RawOptions{List: []Option{{ID: "opt1"}}}, CorrectOptionID: "opt9"},
			ErrCorrectOptionMissing,
		},
		{
			"fallback letter not present",
			Raw{QuestionID: "q", Options: RawOptions{Letters: map[string]string{"B": "b"}}, CorrectAnswer: "?"},
			ErrCorrectOptionMissing,
		},
		{
			"duplicate ids",
			Raw{QuestionID: "q", Options: RawOptions{List: []Option{{ID: "opt1"}, {ID: "opt1"}}}, CorrectOptionID: "opt1"},
			ErrDuplicateOption,
		},
		{
			"letter repeated in another case",
			Raw{QuestionID: "q", Options: RawOptions{Letters: map[string]string{"a": "x", "A": "y", " b": "z", "B": "w"}}, CorrectAnswer: "A"},
			ErrDuplicateOption,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNormalize_DuplicateLetterIsReportedDeterministically(t *testing.T) {
	raw := Raw{QuestionID: "q", Options: RawOptions{Letters: map[string]string{"a": "x", "A": "y", "c ": "z", "C": "w"}}, CorrectAnswer: "A"}
	for i := 0; i < 20; i++ {
		_, err := Normalize(raw)
		require.ErrorIs(t, err, ErrDuplicateOption)
		assert.Contains(t, err.Error(), "letter A")
	}
}

// Every successfully normalized question has exactly one option whose ID is
// the resolved correct ID.
func TestNormalize_ExactlyOneCorrectOption(t *testing.T) {
	letters := []string{"A", "B", "C", "D", "X", ""}
	for _, l := range letters {
		raw := Raw{
			QuestionID:    "q",
			Options:       RawOptions{Letters: map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"}},
			CorrectAnswer: l,
		}
		q, err := Normalize(raw)
		require.NoError(t, err)
		n := 0
		for _, o := range q.Options {
			if o.ID == q.CorrectOptionID {
				n++
			}
		}
		assert.Equal(t, 1, n, "letter %q", l)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, rec := range []string{legacyRecord, currentRecord} {
		q1, err := Normalize(mustParse(t, rec))
		require.NoError(t, err)
		q2, err := Normalize(ToRaw(q1))
		require.NoError(t, err)
		assert.Equal(t, q1, q2)
	}
}

func TestLetterToID(t *testing.T) {
	assert.Equal(t, "opt1", LetterToID("A"))
	assert.Equal(t, "opt2", LetterToID("b"))
	assert.Equal(t, "opt3", LetterToID(" C "))
	assert.Equal(t, "opt4", LetterToID("D"))
	assert.Equal(t, "opt1", LetterToID("E"))
}

func TestValidateRaw(t *testing.T) {
	require.NoError(t, ValidateRaw([]byte(legacyRecord)))
	require.NoError(t, ValidateRaw([]byte(currentRecord)))

	err := ValidateRaw([]byte(`{"question_id": "Q-9", "question_text": "x", "options": "A"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Q-9", verr.QuestionID)

	err = ValidateRaw([]byte(`{"question_text": "x", "options": []}`))
	require.ErrorAs(t, err, &verr)

	err = ValidateRaw([]byte(`not json`))
	require.ErrorAs(t, err, &verr)
}
