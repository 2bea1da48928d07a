package ui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/diag"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/filetree"
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RunPrompt shows the file tree prompt until it is answered, cancelled by a
// path on changes, or quit.
func RunPrompt(ctx context.Context, opts filetree.Options, popts ...PromptOption) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewPrompt(ctx, opts, popts...)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return Result{}, fmt.Errorf("running prompt: %w", err)
	}
	return m.Result(), nil
}

// RunCompile runs fn behind a spinner. Without a terminal on stdout the
// spinner is skipped and fn runs directly.
func RunCompile(ctx context.Context, message string, fn CompileFunc) (*diag.Set, error) {
	if !IsTerminal(os.Stdout) {
		return fn(ctx)
	}
	m := NewCompileModel(ctx, message, fn)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("running compile: %w", err)
	}
	return m.Result()
}
