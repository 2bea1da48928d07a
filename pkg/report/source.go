package report

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// ErrLineOutOfRange is returned when the file has fewer lines than asked for.
var ErrLineOutOfRange = errors.New("line out of range")

// SourceLine is one numbered line of a source file.
type SourceLine struct {
	Number int
	Text   string
}

// Context holds the line a diagnostic points at and its neighbours. Prev and
// Next are nil at the start and end of the file.
type Context struct {
	Prev   *SourceLine
	Target SourceLine
	Next   *SourceLine
}

// Lines returns the available lines in file order.
func (c Context) Lines() []SourceLine {
	var out []SourceLine
	if c.Prev != nil {
		out = append(out, *c.Prev)
	}
	out = append(out, c.Target)
	if c.Next != nil {
		out = append(out, *c.Next)
	}
	return out
}

// ReadContext reads line (1-based) of path plus the lines around it. The
// file is only read up to line+1.
func ReadContext(path string, line int) (Context, error) {
	if line <= 0 {
		return Context{}, fmt.Errorf("%w: %d", ErrLineOutOfRange, line)
	}
	f, err := os.Open(path)
	if err != nil {
		return Context{}, err
	}
	defer f.Close()

	var (
		ctx   Context
		found bool
		n     int
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		n++
		switch n {
		case line - 1:
			ctx.Prev = &SourceLine{Number: n, Text: sc.Text()}
		case line:
			ctx.Target = SourceLine{Number: n, Text: sc.Text()}
			found = true
		case line + 1:
			ctx.Next = &SourceLine{Number: n, Text: sc.Text()}
			return ctx, nil
		}
	}
	if err := sc.Err(); err != nil {
		return Context{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if !found {
		return Context{}, fmt.Errorf("%w: %s has %d lines, wanted %d", ErrLineOutOfRange, path, n, line)
	}
	return ctx, nil
}
