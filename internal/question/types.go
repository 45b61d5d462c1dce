package question

// DefaultOptionID is the option a legacy answer letter resolves to when the
// letter is not in the letter table.
const DefaultOptionID = "opt1"

// Option is a single answer choice. ID is stable across display shuffles and
// is the only thing correctness is ever compared on.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Formula string `json:"formula,omitempty"`
}

// WrongExplanation explains why a specific wrong option is wrong.
type WrongExplanation struct {
	Text    string `json:"text"`
	Formula string `json:"formula,omitempty"`
}

// Question is the canonical in-memory form every engine component operates on.
// It is immutable once loaded into a session.
type Question struct {
	ID                 string
	Text               string
	Continuation       string
	Formula            string
	Table              *Table
	Difficulty         string
	LOS                string
	Options            []Option
	CorrectOptionID    string
	Explanation        string
	ExplanationFormula string

	// WrongExplanations is keyed by the wrong option's ID.
	WrongExplanations map[string]WrongExplanation

	CalculatorSteps []string
}

// Option returns the option with the given ID.
func (q Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// HasOption reports whether id names one of the question's options.
func (q Question) HasOption(id string) bool {
	_, ok := q.Option(id)
	return ok
}

// CorrectOption returns the correct option. The zero Option is returned only
// for questions that did not come through Normalize.
func (q Question) CorrectOption() Option {
	o, _ := q.Option(q.CorrectOptionID)
	return o
}

// IsCorrect reports whether optionID is the correct answer.
func (q Question) IsCorrect(optionID string) bool {
	return optionID != "" && optionID == q.CorrectOptionID
}

// WrongExplanationFor returns the explanation attached to a wrong option, if any.
func (q Question) WrongExplanationFor(optionID string) (WrongExplanation, bool) {
	if q.IsCorrect(optionID) || q.WrongExplanations == nil {
		return WrongExplanation{}, false
	}
	w, ok := q.WrongExplanations[optionID]
	return w, ok
}
