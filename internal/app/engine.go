package app

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/config"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/tsc"
)

// EngineChoice collects what decides the compiler engine.
type EngineChoice struct {
	// Flag is the --engine value; it wins over everything else.
	Flag string
	// Config supplies the global and per-project engines.
	Config *config.Config
	// Available lists the engines found for the project. tsc.Available when nil.
	Available func(root string) []tsc.Engine
	// Pick asks the user; nil means never ask.
	Pick func([]tsc.Engine) (tsc.Engine, error)
}

// ResolveEngine decides which engine checks root. When both engines are
// available and nothing is configured, the user is asked through Pick and
// the answer is remembered in Config. The boolean reports whether Config
// changed and should be saved.
func ResolveEngine(root string, c EngineChoice) (tsc.Engine, bool, error) {
	if c.Flag != "" {
		e, err := tsc.ParseEngine(c.Flag)
		return e, false, err
	}
	if c.Config != nil {
		if name := c.Config.EngineFor(root); name != "" {
			e, err := tsc.ParseEngine(name)
			return e, false, err
		}
	}

	available := c.Available
	if available == nil {
		available = tsc.Available
	}
	found := available(root)
	switch {
	case len(found) == 0:
		return "", false, fmt.Errorf("%w: install typescript in %s", tsc.ErrEngineNotFound, root)
	case len(found) == 1 || c.Pick == nil:
		return found[0], false, nil
	}

	e, err := c.Pick(found)
	if err != nil {
		return "", false, err
	}
	if c.Config == nil {
		return e, false, nil
	}
	c.Config.RememberEngine(root, string(e))
	return e, true, nil
}

// NewChecker builds a compiler for engine. The tsc version is checked up
// front; vue-tsc carries its own version numbers and is not.
func NewChecker(ctx context.Context, root string, e tsc.Engine, cacheDir string) (*tsc.Compiler, error) {
	c, err := tsc.NewCompiler(root, e)
	if err != nil {
		return nil, err
	}
	c.CacheDir = cacheDir
	if e == tsc.EngineTSC {
		v, err := tsc.CheckVersion(ctx, c.Runner, c.Bin)
		if err != nil {
			return nil, err
		}
		debug.Log("app: using %s %s", c.Bin, v)
	}
	return c, nil
}
