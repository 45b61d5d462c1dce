package bank

import (
	"sort"

	"github.com/cfaprep/cfaprep/internal/question"
)

// Location names the module a question belongs to.
type Location struct {
	BookID   int
	ModuleID int
}

// Entry is a question together with its location.
type Entry struct {
	Location
	Question question.Raw
}

// Catalog is the loaded question bank with precomputed indices.
type Catalog struct {
	books    []*Book
	byBook   map[int]*Book
	byModule map[Location]*Module
	byID     map[string]int
	entries  []Entry
}

// NewCatalog indexes modules by book and module. Later duplicates of the
// same (book, module) pair or question ID are ignored; Validate reports them.
func NewCatalog(modules []*Module) *Catalog {
	c := &Catalog{
		byBook:   make(map[int]*Book),
		byModule: make(map[Location]*Module, len(modules)),
		byID:     make(map[string]int),
	}

	sorted := append([]*Module(nil), modules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BookID != sorted[j].BookID {
			return sorted[i].BookID < sorted[j].BookID
		}
		return sorted[i].ModuleID < sorted[j].ModuleID
	})

	for _, m := range sorted {
		loc := Location{BookID: m.BookID, ModuleID: m.ModuleID}
		if _, dup := c.byModule[loc]; dup {
			continue
		}
		c.byModule[loc] = m

		b, ok := c.byBook[m.BookID]
		if !ok {
			b = &Book{ID: m.BookID, Name: m.BookName}
			c.byBook[m.BookID] = b
			c.books = append(c.books, b)
		}
		if b.Name == "" {
			b.Name = m.BookName
		}
		b.Modules = append(b.Modules, m)

		for _, q := range m.Questions {
			if _, dup := c.byID[q.QuestionID]; dup {
				continue
			}
			c.byID[q.QuestionID] = len(c.entries)
			c.entries = append(c.entries, Entry{Location: loc, Question: q})
		}
	}
	return c
}

// Books returns every book in book order.
func (c *Catalog) Books() []*Book {
	return c.books
}

// Book returns the book with the given ID.
func (c *Catalog) Book(id int) (*Book, bool) {
	b, ok := c.byBook[id]
	return b, ok
}

// Module returns the module at (bookID, moduleID).
func (c *Catalog) Module(bookID, moduleID int) (*Module, bool) {
	m, ok := c.byModule[Location{BookID: bookID, ModuleID: moduleID}]
	return m, ok
}

// Locate returns where a question lives.
func (c *Catalog) Locate(questionID string) (Location, bool) {
	i, ok := c.byID[questionID]
	if !ok {
		return Location{}, false
	}
	return c.entries[i].Location, true
}

// Question returns a question by ID.
func (c *Catalog) Question(questionID string) (question.Raw, bool) {
	i, ok := c.byID[questionID]
	if !ok {
		return question.Raw{}, false
	}
	return c.entries[i].Question, true
}

// Entries returns every question in book, module, file order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// BookEntries returns every question of one book.
func (c *Catalog) BookEntries(bookID int) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.BookID == bookID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of distinct questions.
func (c *Catalog) Len() int {
	return len(c.entries)
}
