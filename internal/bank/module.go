package bank

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cfaprep/cfaprep/internal/question"
)

// FileName is the question file inside every module directory.
const FileName = "questions.json"

// Module is one module's question set.
type Module struct {
	BookID     int
	BookName   string
	ModuleID   int
	ModuleName string
	Questions  []question.Raw

	// Path is the file the module was read from.
	Path string
}

// Book groups the modules of one book in module order.
type Book struct {
	ID      int
	Name    string
	Modules []*Module
}

// QuestionCount returns the number of questions across all modules.
func (b *Book) QuestionCount() int {
	n := 0
	for _, m := range b.Modules {
		n += len(m.Questions)
	}
	return n
}

// moduleFile is the on-disk shape of questions.json.
type moduleFile struct {
	BookID     int               `json:"book_id"`
	BookName   string            `json:"book_name"`
	ModuleID   int               `json:"module_id"`
	ModuleName string            `json:"module_name"`
	Questions  []json.RawMessage `json:"questions"`
}

// ReadModule reads and validates one question file. Every record is checked
// against the question schema; the first invalid record fails the file.
func ReadModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseModule(path, data)
}

// ParseModule decodes a question file already in memory.
func ParseModule(path string, data []byte) (*Module, error) {
	var f moduleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	m := &Module{
		BookID:     f.BookID,
		BookName:   f.BookName,
		ModuleID:   f.ModuleID,
		ModuleName: f.ModuleName,
		Questions:  make([]question.Raw, 0, len(f.Questions)),
		Path:       path,
	}
	for i, rec := range f.Questions {
		raw, err := question.ParseValidated(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: question %d: %w", path, i, err)
		}
		m.Questions = append(m.Questions, raw)
	}
	return m, nil
}
