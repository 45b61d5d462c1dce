package session

import (
	"fmt"

	"github.com/cfaprep/cfaprep/internal/progress"
)

// DefaultBookQuestions is the size of a book test.
const DefaultBookQuestions = 50

// Source says where a session's questions were drawn from.
type Source struct {
	TestType progress.TestType
	BookID   int
	ModuleID int
	// PreShuffled marks sets the service already selected and ordered; the
	// session keeps their order.
	PreShuffled bool
}

// ModuleSource is a test over one module's bank.
func ModuleSource(bookID, moduleID int) Source {
	return Source{TestType: progress.TestModule, BookID: bookID, ModuleID: moduleID}
}

// BookSource is a random sample across a book.
func BookSource(bookID int) Source {
	return Source{TestType: progress.TestBook, BookID: bookID}
}

// MockExamSource is the service-selected mock exam.
func MockExamSource() Source {
	return Source{TestType: progress.TestMockExam, PreShuffled: true}
}

// Title is a short label for headers.
func (s Source) Title() string {
	switch s.TestType {
	case progress.TestMockExam:
		return "Mock Exam"
	case progress.TestBook:
		return fmt.Sprintf("Book %d", s.BookID)
	default:
		return fmt.Sprintf("Book %d · Module %d", s.BookID, s.ModuleID)
	}
}
