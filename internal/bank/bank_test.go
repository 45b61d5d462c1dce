package bank

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) string {
	return fmt.Sprintf(`{
  "question_id": %q,
  "question_text": "What is %s?",
  "options": [{"id": "opt1", "text": "yes"}, {"id": "opt2", "text": "no"}],
  "correct_option_id": "opt1",
  "explanation": "because"
}`, id, id)
}

func moduleJSON(book, module int, ids ...string) string {
	qs := ""
	for i, id := range ids {
		if i > 0 {
			qs += ","
		}
		qs += record(id)
	}
	return fmt.Sprintf(`{"book_id": %d, "book_name": "Book %d", "module_id": %d, "module_name": "Module %d", "questions": [%s]}`,
		book, book, module, module, qs)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book1_quants", "module2", FileName), moduleJSON(1, 2, "b1m2q1"))
	writeFile(t, filepath.Join(dir, "book1_quants", "module1", FileName), moduleJSON(1, 1, "b1m1q1", "b1m1q2"))
	writeFile(t, filepath.Join(dir, "book2", "module1", FileName), moduleJSON(2, 1, "b2m1q1"))
	writeFile(t, filepath.Join(dir, "notes", "module1", FileName), moduleJSON(9, 1, "ignored"))

	cat, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, cat.Books(), 2)
	b1 := cat.Books()[0]
	assert.Equal(t, 1, b1.ID)
	assert.Equal(t, "Book 1", b1.Name)
	require.Len(t, b1.Modules, 2)
	assert.Equal(t, 1, b1.Modules[0].ModuleID)
	assert.Equal(t, 3, b1.QuestionCount())

	m, ok := cat.Module(1, 1)
	require.True(t, ok)
	assert.Len(t, m.Questions, 2)

	loc, ok := cat.Locate("b2m1q1")
	require.True(t, ok)
	assert.Equal(t, Location{BookID: 2, ModuleID: 1}, loc)

	assert.Equal(t, 4, cat.Len())
	assert.Len(t, cat.BookEntries(1), 3)
	_, ok = cat.Locate("ignored")
	assert.False(t, ok)
}

func TestLoad_MissingDir(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestLoad_ReportsBadFilesAndKeepsGoodOnes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book1", "module1", FileName), moduleJSON(1, 1, "ok1"))
	// Missing question_text fails schema validation.
	writeFile(t, filepath.Join(dir, "book1", "module2", FileName),
		`{"book_id": 1, "module_id": 2, "questions": [{"question_id": "bad", "options": []}]}`)
	// Declared ids disagree with the directory.
	writeFile(t, filepath.Join(dir, "book1", "module3", FileName), moduleJSON(4, 3, "misplaced"))

	cat, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module2")
	assert.Contains(t, err.Error(), "lives under book 1 module 3")

	assert.Equal(t, 1, cat.Len())
	_, ok := cat.Module(1, 1)
	assert.True(t, ok)
}

func TestLoad_IdsFromDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book3", "module7", FileName),
		fmt.Sprintf(`{"questions": [%s]}`, record("anon")))

	cat, err := Load(dir)
	require.NoError(t, err)
	loc, ok := cat.Locate("anon")
	require.True(t, ok)
	assert.Equal(t, Location{BookID: 3, ModuleID: 7}, loc)
}

func TestValidate_Duplicates(t *testing.T) {
	m1, err := ParseModule("a.json", []byte(moduleJSON(1, 1, "q1", "q2")))
	require.NoError(t, err)
	m2, err := ParseModule("b.json", []byte(moduleJSON(1, 2, "q2")))
	require.NoError(t, err)
	m3, err := ParseModule("c.json", []byte(moduleJSON(1, 1, "q3")))
	require.NoError(t, err)

	err = Validate([]*Module{m1, m2, m3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate question ID "q2"`)
	assert.Contains(t, err.Error(), "book 1 module 1 already loaded from a.json")

	// The catalog keeps the first occurrence.
	cat := NewCatalog([]*Module{m1, m2, m3})
	loc, _ := cat.Locate("q2")
	assert.Equal(t, 1, loc.ModuleID)
	_, ok := cat.Locate("q3")
	assert.False(t, ok)
}

func TestValidate_UnresolvableCorrectAnswer(t *testing.T) {
	m, err := ParseModule("x.json", []byte(`{"book_id": 1, "module_id": 1, "questions": [{
  "question_id": "q1", "question_text": "?",
  "options": [{"id": "opt1", "text": "a"}],
  "correct_option_id": "opt9"
}]}`))
	require.NoError(t, err)
	assert.Error(t, Validate([]*Module{m}))
}

func TestImport_File(t *testing.T) {
	src := filepath.Join(t.TempDir(), "incoming.json")
	writeFile(t, src, moduleJSON(5, 2, "i1", "i2"))
	data := t.TempDir()

	got, err := Import(src, data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Location{BookID: 5, ModuleID: 2}, got[0].Location)
	assert.Equal(t, 2, got[0].Questions)
	assert.Equal(t, ModulePath(data, 5, 2), got[0].Path)

	cat, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestImport_InvalidWritesNothing(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "book1", "module1", FileName), moduleJSON(1, 1, "a"))
	writeFile(t, filepath.Join(src, "book1", "module2", FileName), `{"questions": "nope"}`)
	data := t.TempDir()

	_, err := Import(src, data)
	require.Error(t, err)
	entries, err := os.ReadDir(data)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
