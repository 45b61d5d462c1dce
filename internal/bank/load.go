package bank

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

var (
	bookDirRe   = regexp.MustCompile(`^book(\d+)(?:_.*)?$`)
	moduleDirRe = regexp.MustCompile(`^module(\d+)$`)
)

// Load reads every <dir>/book<N>[_name]/module<M>/questions.json. Ids
// missing from a file are taken from its directory names. The catalog always
// holds every module that read cleanly; a non-nil error lists the files that
// did not and any cross-module problems Validate found.
func Load(dir string) (*Catalog, error) {
	paths, err := Discover(dir)
	if err != nil {
		return NewCatalog(nil), err
	}

	var (
		modules []*Module
		errs    []error
	)
	for _, p := range paths {
		m, err := ReadModule(p.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if m.BookID == 0 {
			m.BookID = p.BookID
		}
		if m.ModuleID == 0 {
			m.ModuleID = p.ModuleID
		}
		if m.BookID != p.BookID || m.ModuleID != p.ModuleID {
			errs = append(errs, fmt.Errorf("%s: file declares book %d module %d but lives under book %d module %d",
				p.Path, m.BookID, m.ModuleID, p.BookID, p.ModuleID))
			continue
		}
		modules = append(modules, m)
	}
	if err := Validate(modules); err != nil {
		errs = append(errs, err)
	}
	return NewCatalog(modules), errors.Join(errs...)
}

// FilePath is a discovered question file and the ids its directories imply.
type FilePath struct {
	Location
	Path string
}

// Discover lists question files under dir in book, module order. A missing
// dir yields no files and no error.
func Discover(dir string) ([]FilePath, error) {
	books, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", dir, err)
	}

	var out []FilePath
	for _, b := range books {
		bm := bookDirRe.FindStringSubmatch(b.Name())
		if !b.IsDir() || bm == nil {
			continue
		}
		bookID, _ := strconv.Atoi(bm[1])
		modules, err := os.ReadDir(filepath.Join(dir, b.Name()))
		if err != nil {
			return nil, fmt.Errorf("read book dir: %w", err)
		}
		for _, m := range modules {
			mm := moduleDirRe.FindStringSubmatch(m.Name())
			if !m.IsDir() || mm == nil {
				continue
			}
			moduleID, _ := strconv.Atoi(mm[1])
			p := filepath.Join(dir, b.Name(), m.Name(), FileName)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			out = append(out, FilePath{Location: Location{BookID: bookID, ModuleID: moduleID}, Path: p})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookID != out[j].BookID {
			return out[i].BookID < out[j].BookID
		}
		return out[i].ModuleID < out[j].ModuleID
	})
	return out, nil
}

// ModulePath returns where a module's question file lives under dir.
func ModulePath(dir string, bookID, moduleID int) string {
	return filepath.Join(dir, fmt.Sprintf("book%d", bookID), fmt.Sprintf("module%d", moduleID), FileName)
}
