// Package testutil builds TypeScript project fixtures for tests: source
// trees on disk and the compiler output that goes with them. Generated
// fixtures are deterministic for a given seed.
package testutil

import (
	"fmt"
	"math/rand"
	"path"
	"slices"
	"strings"
)

// Diagnostic is one generated compiler error.
type Diagnostic struct {
	File    string // slash separated, relative to the project root
	Line    int
	Col     int
	Code    int
	Message string
}

// String formats d the way tsc --pretty false does.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s(%d,%d): error TS%d: %s", d.File, d.Line, d.Col, d.Code, d.Message)
}

// Project is a generated source tree plus its diagnostics.
type Project struct {
	// Files maps slash separated relative paths to file contents.
	Files       map[string]string
	Diagnostics []Diagnostic
}

// Output renders the diagnostics as compiler stdout. Every second message
// gets an indented continuation line, like tsc prints for elaborations.
func (p Project) Output() string {
	var b strings.Builder
	for i, d := range p.Diagnostics {
		b.WriteString(d.String())
		b.WriteString("\n")
		if i%2 == 1 {
			b.WriteString("  The expected type comes from property 'value'.\n")
		}
	}
	return b.String()
}

// ErrorsUnder counts diagnostics in dir (slash separated, "" for the root)
// or below it.
func (p Project) ErrorsUnder(dir string) int {
	n := 0
	for _, d := range p.Diagnostics {
		if dir == "" || d.File == dir || strings.HasPrefix(d.File, dir+"/") {
			n++
		}
	}
	return n
}

// Dirs returns every directory holding a file, sorted.
func (p Project) Dirs() []string {
	seen := map[string]bool{}
	for f := range p.Files {
		for dir := path.Dir(f); dir != "."; dir = path.Dir(dir) {
			seen[dir] = true
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// GeneratorConfig controls project generation.
type GeneratorConfig struct {
	Seed int64
	// Depth is the maximum directory nesting.
	Depth int
	// Fanout is the maximum number of subdirectories per directory.
	Fanout int
	// FilesPerDir is the maximum number of .ts files per directory.
	FilesPerDir int
	// ErrorRate is the chance (0..1) that a file has errors.
	ErrorRate float64
}

// DefaultConfig returns a small, deterministic configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, Depth: 3, Fanout: 3, FilesPerDir: 3, ErrorRate: 0.4}
}

// Generator creates projects.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator. Zero limits fall back to DefaultConfig.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Depth <= 0 {
		cfg.Depth = def.Depth
	}
	if cfg.Fanout <= 0 {
		cfg.Fanout = def.Fanout
	}
	if cfg.FilesPerDir <= 0 {
		cfg.FilesPerDir = def.FilesPerDir
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

var messages = []struct {
	code int
	msg  string
}{
	{2304, "Cannot find name 'foo'."},
	{2322, "Type 'string' is not assignable to type 'number'."},
	{2339, "Property 'bar' does not exist on type '{}'."},
	{7006, "Parameter 'x' implicitly has an 'any' type."},
	{1005, "';' expected."},
}

// Project generates a tree under "src".
func (g *Generator) Project() Project {
	p := Project{Files: map[string]string{}}
	g.fill(&p, "src", 0)
	if len(p.Files) == 0 {
		p.Files["src/index.ts"] = "export {}\n"
	}
	return p
}

func (g *Generator) fill(p *Project, dir string, depth int) {
	for i := range g.rng.Intn(g.cfg.FilesPerDir) + 1 {
		name := fmt.Sprintf("%s/file%d.ts", dir, i)
		lines := g.rng.Intn(8) + 2
		var src strings.Builder
		for l := range lines {
			fmt.Fprintf(&src, "export const v%d = %d\n", l, l)
		}
		p.Files[name] = src.String()

		if g.rng.Float64() >= g.cfg.ErrorRate {
			continue
		}
		for range g.rng.Intn(3) + 1 {
			m := messages[g.rng.Intn(len(messages))]
			p.Diagnostics = append(p.Diagnostics, Diagnostic{
				File:    name,
				Line:    g.rng.Intn(lines) + 1,
				Col:     g.rng.Intn(10) + 1,
				Code:    m.code,
				Message: m.msg,
			})
		}
	}
	if depth+1 >= g.cfg.Depth {
		return
	}
	for i := range g.rng.Intn(g.cfg.Fanout + 1) {
		g.fill(p, fmt.Sprintf("%s/dir%d", dir, i), depth+1)
	}
}
