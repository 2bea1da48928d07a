// Package app runs the tsc-err-dirs session: compile the project, let the
// user browse the directories holding errors, print the errors of the
// chosen file, and start over whenever a source file changes.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/diag"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/filetree"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/metrics"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/report"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/ui"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/watcher"
)

// PromptMessage is the question shown above the tree.
const PromptMessage = "select file to show error details"

// WatchPattern describes what the watcher reacts to, for display.
const WatchPattern = "**/*.(ts|tsx)"

// Checker compiles the project and reports its diagnostics.
type Checker interface {
	Check(ctx context.Context) (*diag.Set, error)
	Command() string
}

// Selector shows one prompt and reports how it ended. A path arriving on
// changes must cancel the prompt.
type Selector interface {
	Select(ctx context.Context, opts filetree.Options, changes chan string) (ui.Result, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(ctx context.Context, opts filetree.Options, changes chan string) (ui.Result, error)

// Select calls f.
func (f SelectorFunc) Select(ctx context.Context, opts filetree.Options, changes chan string) (ui.Result, error) {
	return f(ctx, opts, changes)
}

// WatchFunc starts watching root and calls onChange with each changed
// file. The returned function stops the watch.
type WatchFunc func(root string, onChange func(path string)) (stop func(), err error)

// CompileRunner runs a compile, typically behind a spinner.
type CompileRunner func(ctx context.Context, message string, fn ui.CompileFunc) (*diag.Set, error)

// Options configures a session.
type Options struct {
	// Root is the absolute project directory, see ResolveRoot.
	Root     string
	Watch    bool
	PageSize int

	OnlyShowDir      bool
	HideRoot         bool
	GoUpperDirectory bool

	DebounceDuration time.Duration
	PollInterval     time.Duration
	ForcePoll        bool
}

// App is one interactive session over a project.
type App struct {
	opts     Options
	checker  Checker
	printer  *report.Printer
	selector Selector
	watch    WatchFunc
	compile  CompileRunner

	changes    chan string
	set        *diag.Set
	openedDirs map[string]bool
	lastActive string
}

// Option customizes an App.
type Option func(*App)

// WithSelector replaces the terminal prompt.
func WithSelector(s Selector) Option {
	return func(a *App) { a.selector = s }
}

// WithWatchFunc replaces the filesystem watcher.
func WithWatchFunc(fn WatchFunc) Option {
	return func(a *App) { a.watch = fn }
}

// WithCompileRunner replaces the spinner around compiles.
func WithCompileRunner(fn CompileRunner) Option {
	return func(a *App) { a.compile = fn }
}

// New creates a session. The default collaborators are the Bubble Tea
// prompt, the compile spinner and a recursive watcher configured from opts.
func New(opts Options, checker Checker, printer *report.Printer, options ...Option) *App {
	a := &App{
		opts:       opts,
		checker:    checker,
		printer:    printer,
		selector:   SelectorFunc(selectWithPrompt),
		compile:    ui.RunCompile,
		changes:    make(chan string, 1),
		set:        diag.NewSet(),
		openedDirs: make(map[string]bool),
	}
	a.watch = a.startWatcher
	for _, o := range options {
		o(a)
	}
	return a
}

func selectWithPrompt(ctx context.Context, opts filetree.Options, changes chan string) (ui.Result, error) {
	return ui.RunPrompt(ctx, opts, ui.WithChanges(changes))
}

func (a *App) startWatcher(root string, onChange func(string)) (func(), error) {
	w, err := watcher.NewWatcher(root,
		watcher.WithDebounceDuration(a.opts.DebounceDuration),
		watcher.WithPollInterval(a.opts.PollInterval),
		watcher.WithForcePoll(a.opts.ForcePoll),
		watcher.WithOnChange(onChange),
		watcher.WithOnError(func(err error) { debug.Log("app: watcher: %v", err) }),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w.Stop, nil
}

// Diagnostics returns the result of the latest compile.
func (a *App) Diagnostics() *diag.Set { return a.set }

// Run compiles the project and loops over prompts until the user quits or
// ctx is done. A project without errors returns right after the first
// compile.
func (a *App) Run(ctx context.Context) error {
	defer logMetrics()
	root := a.opts.Root
	a.printer.FirstCompile(root, a.checker.Command())
	if err := a.check(ctx, "tsc running for the first time ..."); err != nil {
		return err
	}
	if a.set.Total() == 0 {
		a.printer.NoErrors()
		return nil
	}

	if a.opts.Watch && a.watch != nil {
		stop, err := a.watch(root, a.notify)
		if err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		defer stop()
		a.printer.WatchReady(filepath.Join(root, WatchPattern))
	}

	target := root
	for {
		res, err := a.selector.Select(ctx, a.promptOptions(target), a.changes)
		if err != nil {
			return err
		}
		if res.ActivePath != "" {
			a.lastActive = res.ActivePath
		}
		debug.Log("app: prompt at %s ended %s", target, res.Outcome)

		switch res.Outcome {
		case ui.Quit:
			return nil
		case ui.Cancelled:
			a.printer.WatchChanged(res.ChangedPath)
			a.printer.Recompile(root)
			if err := a.check(ctx, "re-running tsc ..."); err != nil {
				return err
			}
			if a.set.Total() == 0 {
				a.printer.NoErrors()
			}
		case ui.Selected:
			if isDir(res.Path) {
				target = res.Path
				continue
			}
			a.printer.FileErrors(root, res.Path, a.set.ForFile(root, res.Path))
			target = root
		}
	}
}

// notify forwards a change without blocking the watcher. One pending change
// is enough to cancel the next prompt.
func (a *App) notify(path string) {
	select {
	case a.changes <- path:
	default:
	}
}

func (a *App) check(ctx context.Context, message string) error {
	start := time.Now()
	set, err := a.compile(ctx, message, a.checker.Check)
	if err != nil {
		return err
	}
	a.set = set
	a.printer.Compiled(set, time.Since(start))
	return nil
}

func logMetrics() {
	if s := metrics.Summary(); s != "" {
		debug.Log("app: timings\n%s", s)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
