package question

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Format identifies which historical shape a raw record was written in.
type Format int

const (
	// FormatCurrent records carry an ordered list of {id, text} options and
	// an explicit correct_option_id.
	FormatCurrent Format = iota
	// FormatLegacy records carry a letter→text option map and a
	// correct_answer letter.
	FormatLegacy
)

func (f Format) String() string {
	if f == FormatLegacy {
		return "legacy"
	}
	return "current"
}

// Raw is a question record as stored in the catalog or sent by the remote
// service, in either historical shape.
type Raw struct {
	QuestionID           string                         `json:"question_id"`
	QuestionText         string                         `json:"question_text"`
	QuestionContinuation string                         `json:"question_continuation,omitempty"`
	QuestionTextFormula  string                         `json:"question_text_formula,omitempty"`
	HasTable             bool                           `json:"has_table,omitempty"`
	TableData            *Table                         `json:"table_data,omitempty"`
	Difficulty           string                         `json:"difficulty,omitempty"`
	LOS                  string                         `json:"los,omitempty"`
	Options              RawOptions                     `json:"options"`
	CorrectOptionID      string                         `json:"correct_option_id,omitempty"`
	CorrectAnswer        string                         `json:"correct_answer,omitempty"`
	Explanation          string                         `json:"explanation,omitempty"`
	ExplanationFormula   string                         `json:"explanation_formula,omitempty"`
	ExplanationWrong     map[string]RawWrongExplanation `json:"explanation_wrong,omitempty"`
	CalculatorSteps      []string                       `json:"calculator_steps,omitempty"`
}

// RawOptions is the tagged union over the two option shapes. Exactly one of
// List or Letters is set after decoding.
type RawOptions struct {
	List    []Option
	Letters map[string]string
}

// Format reports which shape the options were decoded from.
func (o RawOptions) Format() Format {
	if o.List == nil && o.Letters != nil {
		return FormatLegacy
	}
	return FormatCurrent
}

func (o *RawOptions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '[':
		return json.Unmarshal(data, &o.List)
	case '{':
		return json.Unmarshal(data, &o.Letters)
	}
	return fmt.Errorf("options: expected array or object, got %q", data[:1])
}

func (o RawOptions) MarshalJSON() ([]byte, error) {
	if o.Format() == FormatLegacy {
		return json.Marshal(o.Letters)
	}
	if o.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o.List)
}

// RawWrongExplanation accepts both the plain string form and the
// {text, text_ru, formula} object form.
type RawWrongExplanation struct {
	Text    string
	Formula string
}

func (w *RawWrongExplanation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &w.Text)
	}
	var obj struct {
		Text    string `json:"text"`
		TextRU  string `json:"text_ru"`
		Formula string `json:"formula"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	w.Text = obj.Text
	if w.Text == "" {
		w.Text = obj.TextRU
	}
	w.Formula = obj.Formula
	return nil
}

func (w RawWrongExplanation) MarshalJSON() ([]byte, error) {
	if w.Formula == "" {
		return json.Marshal(w.Text)
	}
	return json.Marshal(struct {
		Text    string `json:"text"`
		Formula string `json:"formula"`
	}{w.Text, w.Formula})
}

// ParseRaw decodes a single raw record.
func ParseRaw(data []byte) (Raw, error) {
	var r Raw
	if err := json.Unmarshal(data, &r); err != nil {
		return Raw{}, fmt.Errorf("decode question: %w", err)
	}
	return r, nil
}

// ToRaw renders a normalized question back into the current record shape.
// Normalize(ToRaw(q)) == q for every normalized q.
func ToRaw(q Question) Raw {
	r := Raw{
		QuestionID:           q.ID,
		QuestionText:         q.Text,
		QuestionContinuation: q.Continuation,
		QuestionTextFormula:  q.Formula,
		HasTable:             !q.Table.Empty(),
		TableData:            q.Table,
		Difficulty:           q.Difficulty,
		LOS:                  q.LOS,
		Options:              RawOptions{List: append([]Option(nil), q.Options...)},
		CorrectOptionID:      q.CorrectOptionID,
		Explanation:          q.Explanation,
		ExplanationFormula:   q.ExplanationFormula,
		CalculatorSteps:      append([]string(nil), q.CalculatorSteps...),
	}
	if len(q.WrongExplanations) > 0 {
		r.ExplanationWrong = make(map[string]RawWrongExplanation, len(q.WrongExplanations))
		for id, w := range q.WrongExplanations {
			r.ExplanationWrong[id] = RawWrongExplanation{Text: w.Text, Formula: w.Formula}
		}
	}
	return r
}
