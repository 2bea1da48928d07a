package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoRoot means no directory argument was given.
	ErrNoRoot = errors.New("you didn't give a directory path")
	// ErrInvalidRoot is returned for a path that is neither absolute nor
	// relative to the working directory with a leading ".".
	ErrInvalidRoot = errors.New("invalid directory path")
	// ErrSingleFile is returned when the root is a file.
	ErrSingleFile = errors.New("can't run tsc-err-dirs on single file")
)

// ResolveRoot turns the directory argument into an absolute path. Only
// "."-prefixed paths (joined to cwd) and absolute paths are accepted, and
// the result must be an existing directory.
func ResolveRoot(arg, cwd string) (string, error) {
	var root string
	switch {
	case arg == "":
		return "", ErrNoRoot
	case strings.HasPrefix(arg, "."):
		root = filepath.Join(cwd, arg)
	case filepath.IsAbs(arg):
		root = filepath.Clean(arg)
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, arg)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSingleFile, root)
	}
	return root, nil
}
