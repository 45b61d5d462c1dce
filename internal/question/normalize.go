package question

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNoOptions is returned for a record without any answer options.
	ErrNoOptions = errors.New("question has no options")
	// ErrDuplicateOption is returned when two options share an ID.
	ErrDuplicateOption = errors.New("question has duplicate option ids")
	// ErrCorrectOptionMissing is returned when the resolved correct option ID
	// is not among the question's options.
	ErrCorrectOptionMissing = errors.New("correct option not among options")
)

// standardLetters is the fixed legacy letter→ID table. IDs never depend on
// the iteration order of the decoded option map.
var standardLetters = []string{"A", "B", "C", "D"}

// LetterToID maps a legacy answer letter to its synthetic option ID using
// the standard table. Unrecognized letters resolve to DefaultOptionID.
func LetterToID(letter string) string {
	id, ok := standardLetterID(normalizeLetter(letter))
	if !ok {
		return DefaultOptionID
	}
	return id
}

func standardLetterID(letter string) (string, bool) {
	for i, l := range standardLetters {
		if l == letter {
			return optionID(i + 1), true
		}
	}
	return "", false
}

func optionID(n int) string {
	return "opt" + strconv.Itoa(n)
}

func normalizeLetter(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Normalize converts a raw record in either shape into the canonical form.
// Optional fields missing from the record stay empty. The only failures are
// records whose correct answer cannot be resolved to one of their options.
func Normalize(raw Raw) (Question, error) {
	b := builder{raw: raw}
	if raw.Options.Format() == FormatLegacy {
		b.legacyOptions()
	} else {
		b.currentOptions()
	}
	b.resolveCorrect()
	b.wrongExplanations()
	return b.build()
}

// NormalizeAll normalizes a batch, failing on the first unresolvable record.
func NormalizeAll(raws []Raw) ([]Question, error) {
	out := make([]Question, 0, len(raws))
	for _, r := range raws {
		q, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// builder resolves the format union exactly once; nothing downstream of
// Normalize branches on Format.
type builder struct {
	raw     Raw
	options []Option
	letters map[string]string // legacy letter → option ID
	correct string
	wrong   map[string]WrongExplanation
	// dupLetter is a legacy letter given twice, e.g. as "a" and "A".
	dupLetter string
}

func (b *builder) currentOptions() {
	b.options = append([]Option(nil), b.raw.Options.List...)
}

func (b *builder) legacyOptions() {
	texts := make(map[string]string, len(b.raw.Options.Letters))
	var extra []string
	for letter, text := range b.raw.Options.Letters {
		l := normalizeLetter(letter)
		if _, dup := texts[l]; dup {
			if b.dupLetter == "" || l < b.dupLetter {
				b.dupLetter = l
			}
			continue
		}
		texts[l] = text
		if _, ok := standardLetterID(l); !ok {
			extra = append(extra, l)
		}
	}
	sort.Strings(extra)

	b.letters = make(map[string]string, len(texts))
	for i, l := range standardLetters {
		text, ok := texts[l]
		if !ok {
			continue
		}
		id := optionID(i + 1)
		b.letters[l] = id
		b.options = append(b.options, Option{ID: id, Text: text})
	}
	for i, l := range extra {
		id := optionID(len(standardLetters) + i + 1)
		b.letters[l] = id
		b.options = append(b.options, Option{ID: id, Text: texts[l]})
	}
}

func (b *builder) resolveCorrect() {
	if b.raw.CorrectOptionID != "" {
		b.correct = b.raw.CorrectOptionID
		return
	}
	if id, ok := b.letters[normalizeLetter(b.raw.CorrectAnswer)]; ok {
		b.correct = id
		return
	}
	b.correct = LetterToID(b.raw.CorrectAnswer)
}

func (b *builder) wrongExplanations() {
	if len(b.raw.ExplanationWrong) == 0 {
		return
	}
	b.wrong = make(map[string]WrongExplanation, len(b.raw.ExplanationWrong))
	for key, w := range b.raw.ExplanationWrong {
		id := key
		if b.letters != nil {
			if mapped, ok := b.letters[normalizeLetter(key)]; ok {
				id = mapped
			}
		}
		b.wrong[id] = WrongExplanation{Text: w.Text, Formula: w.Formula}
	}
}

func (b *builder) build() (Question, error) {
	if len(b.options) == 0 {
		return Question{}, fmt.Errorf("question %s: %w", b.raw.QuestionID, ErrNoOptions)
	}
	if b.dupLetter != "" {
		return Question{}, fmt.Errorf("question %s: %w: letter %s", b.raw.QuestionID, ErrDuplicateOption, b.dupLetter)
	}
	seen := make(map[string]bool, len(b.options))
	for _, o := range b.options {
		if seen[o.ID] {
			return Question{}, fmt.Errorf("question %s: %w: %s", b.raw.QuestionID, ErrDuplicateOption, o.ID)
		}
		seen[o.ID] = true
	}
	if !seen[b.correct] {
		return Question{}, fmt.Errorf("question %s: %w: %s", b.raw.QuestionID, ErrCorrectOptionMissing, b.correct)
	}

	q := Question{
		ID:                 b.raw.QuestionID,
		Text:               b.raw.QuestionText,
		Continuation:       b.raw.QuestionContinuation,
		Formula:            b.raw.QuestionTextFormula,
		Difficulty:         b.raw.Difficulty,
		LOS:                b.raw.LOS,
		Options:            b.options,
		CorrectOptionID:    b.correct,
		Explanation:        b.raw.Explanation,
		ExplanationFormula: b.raw.ExplanationFormula,
		WrongExplanations:  b.wrong,
	}
	if !b.raw.TableData.Empty() {
		t := *b.raw.TableData
		q.Table = &t
	}
	if len(b.raw.CalculatorSteps) > 0 {
		q.CalculatorSteps = append([]string(nil), b.raw.CalculatorSteps...)
	}
	return q, nil
}
