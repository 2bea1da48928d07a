package diag

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Set holds diagnostics grouped by file in the order files were first seen.
type Set struct {
	files  []string
	byFile map[string][]Diagnostic

	// Skipped counts blocks that could not be parsed.
	Skipped int
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byFile: make(map[string][]Diagnostic)}
}

// Add appends d under its file.
func (s *Set) Add(d Diagnostic) {
	if _, ok := s.byFile[d.File]; !ok {
		s.files = append(s.files, d.File)
	}
	s.byFile[d.File] = append(s.byFile[d.File], d)
}

// Files returns the files with errors in first-seen order.
func (s *Set) Files() []string {
	return slices.Clone(s.files)
}

// Errors returns the diagnostics recorded for a compiler-relative file.
func (s *Set) Errors(file string) []Diagnostic {
	return s.byFile[file]
}

// Total is the number of diagnostics in the set.
func (s *Set) Total() int {
	n := 0
	for _, ds := range s.byFile {
		n += len(ds)
	}
	return n
}

// CountWidth is the number of digits in Total, used to align counts.
func (s *Set) CountWidth() int {
	return len(strconv.Itoa(s.Total()))
}

// CountUnder returns how many diagnostics belong to path or anything below
// it. root is the directory the compiler ran in.
func (s *Set) CountUnder(root, path string) int {
	path = filepath.Clean(path)
	n := 0
	for _, f := range s.files {
		if within(path, Resolve(root, f)) {
			n += len(s.byFile[f])
		}
	}
	return n
}

// HasUnder reports whether any diagnostic belongs to path or below it.
func (s *Set) HasUnder(root, path string) bool {
	path = filepath.Clean(path)
	for _, f := range s.files {
		if within(path, Resolve(root, f)) {
			return true
		}
	}
	return false
}

// ForFile returns the diagnostics of the file at the absolute path abs.
func (s *Set) ForFile(root, abs string) []Diagnostic {
	abs = filepath.Clean(abs)
	for _, f := range s.files {
		if Resolve(root, f) == abs {
			return s.byFile[f]
		}
	}
	return nil
}

// within reports whether target equals dir or lies below it. Matching is
// done on whole path elements, so /a/src does not contain /a/src2/x.ts.
func within(dir, target string) bool {
	if target == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(target, dir)
}
