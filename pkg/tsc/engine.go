// Package tsc runs the TypeScript compiler (tsc or vue-tsc) over a project
// and captures its diagnostics.
package tsc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Engine names a compiler front end.
type Engine string

const (
	EngineTSC    Engine = "tsc"
	EngineVueTSC Engine = "vue-tsc"
)

// Engines lists the supported engines in preference order.
var Engines = []Engine{EngineTSC, EngineVueTSC}

var (
	// ErrEngineNotFound means neither node_modules/.bin nor PATH has the binary.
	ErrEngineNotFound = errors.New("compiler not found")
	// ErrUnknownEngine is returned by ParseEngine for anything but tsc/vue-tsc.
	ErrUnknownEngine = errors.New("unknown engine")
)

// ParseEngine accepts "tsc" and "vue-tsc". The empty string means auto.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case "", EngineTSC, EngineVueTSC:
		return Engine(s), nil
	}
	return "", fmt.Errorf("%w %q (want tsc or vue-tsc)", ErrUnknownEngine, s)
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Resolve finds the executable for e. node_modules/.bin directories are
// searched from root upwards before falling back to PATH, so a project-local
// compiler wins over a global one.
func Resolve(root string, e Engine) (string, error) {
	name := string(e)
	if runtime.GOOS == "windows" {
		name += ".cmd"
	}
	dir := root
	for {
		candidate := filepath.Join(dir, "node_modules", ".bin", name)
		if isExecutable(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if p, err := lookPath(string(e)); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: %s", ErrEngineNotFound, e)
}

// Available returns the engines that Resolve can find from root.
func Available(root string) []Engine {
	var out []Engine
	for _, e := range Engines {
		if _, err := Resolve(root, e); err == nil {
			out = append(out, e)
		}
	}
	return out
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}
