// Package diag parses the plain-text diagnostics printed by tsc and vue-tsc
// and aggregates them by file.
package diag

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/metrics"
)

// ErrMalformed is returned for a diagnostic block that does not match
// "path(line,col): error TSnnnn: message".
var ErrMalformed = errors.New("malformed diagnostic")

// Diagnostic is a single compiler error.
type Diagnostic struct {
	// File is the path as printed by the compiler, usually relative to the
	// project root.
	File    string
	Line    int
	Col     int
	Code    int
	Message string
}

// Location renders file(line,col) with the file resolved against root.
func (d Diagnostic) Location(root string) string {
	return fmt.Sprintf("%s(%d,%d)", Resolve(root, d.File), d.Line, d.Col)
}

// CodeString returns "TSnnnn".
func (d Diagnostic) CodeString() string {
	return "TS" + strconv.Itoa(d.Code)
}

var linePattern = regexp.MustCompile(`(?s)^(.+?)\((\d+),(\d+)\): error TS(\d+): ?(.*)$`)

// ParseBlock parses one diagnostic. Continuation lines, if any, are kept in
// the message.
func ParseBlock(block string) (Diagnostic, error) {
	m := linePattern.FindStringSubmatch(strings.TrimRight(block, "\r\n"))
	if m == nil {
		return Diagnostic{}, fmt.Errorf("%w: %q", ErrMalformed, firstLine(block))
	}
	line, _ := strconv.Atoi(m[2])
	col, _ := strconv.Atoi(m[3])
	code, _ := strconv.Atoi(m[4])
	return Diagnostic{
		File:    filepath.FromSlash(strings.TrimSpace(m[1])),
		Line:    line,
		Col:     col,
		Code:    code,
		Message: strings.TrimSpace(m[5]),
	}, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Blocks splits compiler output into diagnostic blocks: a line starting
// with a space belongs to the block above it. Empty lines are dropped.
func Blocks(r io.Reader) ([]string, error) {
	var blocks []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "":
		case strings.HasPrefix(line, " ") && len(blocks) > 0:
			blocks[len(blocks)-1] += "\n" + line
		default:
			blocks = append(blocks, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading compiler output: %w", err)
	}
	return blocks, nil
}

// Parse reads compiler output and groups diagnostics by file. Malformed
// blocks are skipped and counted in Set.Skipped.
func Parse(r io.Reader) (*Set, error) {
	defer metrics.Timer(metrics.Parse)()
	blocks, err := Blocks(r)
	if err != nil {
		return nil, err
	}
	s := NewSet()
	for _, b := range blocks {
		d, err := ParseBlock(b)
		if err != nil {
			debug.Log("diag: skipping block: %v", err)
			s.Skipped++
			continue
		}
		s.Add(d)
	}
	return s, nil
}

// ParseString is Parse over a string.
func ParseString(out string) (*Set, error) {
	return Parse(strings.NewReader(out))
}

// Resolve joins a compiler-relative path onto root. Absolute paths are
// returned cleaned.
func Resolve(root, file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(root, file)
}
