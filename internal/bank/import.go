package bank

import (
	"fmt"
	"os"
	"path/filepath"
)

// Imported describes one module written by Import.
type Imported struct {
	Location
	Questions int
	Path      string
}

// Import validates question files from src and copies them into the bank at
// dataDir. src is either a single questions.json, whose file must declare its
// book and module, or a directory laid out like the bank. Nothing is written
// unless every file validates.
func Import(src, dataDir string) ([]Imported, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("import source: %w", err)
	}

	var modules []*Module
	if info.IsDir() {
		cat, err := Load(src)
		if err != nil {
			return nil, err
		}
		for _, b := range cat.Books() {
			modules = append(modules, b.Modules...)
		}
	} else {
		m, err := ReadModule(src)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	if err := Validate(modules); err != nil {
		return nil, err
	}

	out := make([]Imported, 0, len(modules))
	for _, m := range modules {
		data, err := os.ReadFile(m.Path)
		if err != nil {
			return out, fmt.Errorf("read %s: %w", m.Path, err)
		}
		dst := ModulePath(dataDir, m.BookID, m.ModuleID)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return out, fmt.Errorf("create module dir: %w", err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return out, fmt.Errorf("write %s: %w", dst, err)
		}
		out = append(out, Imported{
			Location:  Location{BookID: m.BookID, ModuleID: m.ModuleID},
			Questions: len(m.Questions),
			Path:      dst,
		})
	}
	return out, nil
}
