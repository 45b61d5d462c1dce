package bank

import (
	"fmt"
	"strings"

	"github.com/cfaprep/cfaprep/internal/question"
)

// Validate performs structural checks across modules: positive ids, no
// duplicated (book, module) pair, no question ID shared by two records and
// every record normalizable. Returns a combined error describing all problems
// found, or nil if valid.
func Validate(modules []*Module) error {
	var errs []string

	seenModule := make(map[Location]string, len(modules))
	seenQuestion := make(map[string]string)

	for _, m := range modules {
		if m.BookID <= 0 || m.ModuleID <= 0 {
			errs = append(errs, fmt.Sprintf("%s: book_id and module_id must be positive, got %d/%d", m.Path, m.BookID, m.ModuleID))
		}
		loc := Location{BookID: m.BookID, ModuleID: m.ModuleID}
		if prev, dup := seenModule[loc]; dup {
			errs = append(errs, fmt.Sprintf("%s: book %d module %d already loaded from %s", m.Path, m.BookID, m.ModuleID, prev))
		} else {
			seenModule[loc] = m.Path
		}

		for _, q := range m.Questions {
			if q.QuestionID == "" {
				errs = append(errs, fmt.Sprintf("%s: question without question_id", m.Path))
				continue
			}
			if prev, dup := seenQuestion[q.QuestionID]; dup {
				errs = append(errs, fmt.Sprintf("%s: duplicate question ID %q (first in %s)", m.Path, q.QuestionID, prev))
			} else {
				seenQuestion[q.QuestionID] = m.Path
			}
			if _, err := question.Normalize(q); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", m.Path, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("question bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
