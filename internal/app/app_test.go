package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/diag"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/filetree"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/report"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/testutil"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/ui"
)

const tscOutput = `src/a.ts(1,7): error TS2304: Cannot find name 'x'.
src/a.ts(2,1): error TS1005: ';' expected.
lib/b.ts(1,1): error TS2322: Type 'string' is not assignable to type 'number'.
`

type fakeChecker struct {
	outputs []string
	err     error
	calls   int
}

func (f *fakeChecker) Check(context.Context) (*diag.Set, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.outputs[min(f.calls, len(f.outputs)-1)]
	f.calls++
	return diag.ParseString(out)
}

func (f *fakeChecker) Command() string { return "tsc --noEmit" }

// script answers prompts in order and fails the test when it runs dry.
func script(t *testing.T, steps ...func(filetree.Options, <-chan string) ui.Result) Selector {
	t.Helper()
	i := 0
	return SelectorFunc(func(_ context.Context, opts filetree.Options, changes chan string) (ui.Result, error) {
		if i >= len(steps) {
			t.Fatalf("unexpected prompt #%d at %s", i+1, opts.Root)
		}
		step := steps[i]
		i++
		return step(opts, changes), nil
	})
}

func directCompile(ctx context.Context, _ string, fn ui.CompileFunc) (*diag.Set, error) {
	return fn(ctx)
}

func newProject(t *testing.T) string {
	t.Helper()
	return testutil.WriteTree(t, t.TempDir(), map[string]string{
		"src/a.ts":  "const y = x\nlet z = 1\n",
		"lib/b.ts":  "const n: number = 'a'\n",
		"docs/r.md": "# readme\n",
	})
}

func newTestApp(t *testing.T, opts Options, checker Checker, sel Selector, extra ...Option) (*App, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	printer := report.New(&buf, report.WithMarkdownStyle("notty"))
	options := append([]Option{WithSelector(sel), WithCompileRunner(directCompile)}, extra...)
	return New(opts, checker, printer, options...), &buf
}

func TestRunNoErrors(t *testing.T) {
	root := newProject(t)
	checker := &fakeChecker{outputs: []string{""}}
	a, out := newTestApp(t, Options{Root: root, Watch: true}, checker, script(t),
		WithWatchFunc(func(string, func(string)) (func(), error) {
			t.Fatal("a clean project must not be watched")
			return nil, nil
		}))

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Found 0 Errors.")
	assert.Contains(t, out.String(), "tsc --noEmit")
	assert.Equal(t, 1, checker.calls)
}

func TestRunSelectFileShowsErrorsThenQuit(t *testing.T) {
	root := newProject(t)
	src := filepath.Join(root, "src")
	file := filepath.Join(src, "a.ts")

	a, out := newTestApp(t, Options{Root: root, GoUpperDirectory: true}, &fakeChecker{outputs: []string{tscOutput}}, script(t,
		func(opts filetree.Options, _ <-chan string) ui.Result {
			assert.Equal(t, root, opts.Root)
			assert.True(t, opts.OnlyShowValid)
			assert.False(t, opts.EnableGoUpperDirectory, "no .. at the project root")
			assert.Equal(t, PromptMessage, opts.Message)

			ok, err := opts.Validator.Validate(context.Background(), src)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, _ = opts.Validator.Validate(context.Background(), filepath.Join(root, "docs"))
			assert.False(t, ok)

			assert.Contains(t, opts.Transformer.Transform(src, filetree.TransformInfo{IsDir: true}), "2 errors")
			assert.Contains(t, opts.Transformer.Transform(root, filetree.TransformInfo{IsRoot: true, IsDir: true}), "root: "+root)
			return ui.Result{Outcome: ui.Selected, Path: file, ActivePath: file}
		},
		func(opts filetree.Options, _ <-chan string) ui.Result {
			assert.Equal(t, root, opts.Root, "a file selection returns to the project root")
			assert.Equal(t, file, opts.Default, "the last active entry is preselected")
			return ui.Result{Outcome: ui.Quit}
		},
	))

	require.NoError(t, a.Run(context.Background()))
	s := out.String()
	assert.Contains(t, s, "Found 3 errors in 2 files.")
	assert.Contains(t, s, "error TS2304")
	assert.Contains(t, s, "error TS1005")
	assert.NotContains(t, s, "error TS2322", "only the selected file is reported")
}

func TestRunSelectDirectoryRebasesPrompt(t *testing.T) {
	root := newProject(t)
	src := filepath.Join(root, "src")

	a, _ := newTestApp(t, Options{Root: root, GoUpperDirectory: true}, &fakeChecker{outputs: []string{tscOutput}}, script(t,
		func(filetree.Options, <-chan string) ui.Result {
			return ui.Result{Outcome: ui.Selected, Path: src, ActivePath: src}
		},
		func(opts filetree.Options, _ <-chan string) ui.Result {
			assert.Equal(t, src, opts.Root)
			assert.True(t, opts.EnableGoUpperDirectory)
			assert.Contains(t, opts.Transformer.Transform(src, filetree.TransformInfo{IsRoot: true}), "root: "+src)
			return ui.Result{Outcome: ui.Quit}
		},
	))
	require.NoError(t, a.Run(context.Background()))
}

func TestRunGoUpperDisabledByConfig(t *testing.T) {
	root := newProject(t)
	src := filepath.Join(root, "src")

	a, _ := newTestApp(t, Options{Root: root}, &fakeChecker{outputs: []string{tscOutput}}, script(t,
		func(filetree.Options, <-chan string) ui.Result {
			return ui.Result{Outcome: ui.Selected, Path: src}
		},
		func(opts filetree.Options, _ <-chan string) ui.Result {
			assert.False(t, opts.EnableGoUpperDirectory)
			return ui.Result{Outcome: ui.Quit}
		},
	))
	require.NoError(t, a.Run(context.Background()))
}

func TestRunRecompilesOnChange(t *testing.T) {
	root := newProject(t)
	changed := filepath.Join(root, "lib", "b.ts")
	checker := &fakeChecker{outputs: []string{tscOutput, "src/a.ts(1,7): error TS2304: Cannot find name 'x'.\n"}}

	var onChange func(string)
	stopped := false
	watch := func(r string, fn func(string)) (func(), error) {
		assert.Equal(t, root, r)
		onChange = fn
		return func() { stopped = true }, nil
	}

	a, out := newTestApp(t, Options{Root: root, Watch: true}, checker, script(t,
		func(_ filetree.Options, changes <-chan string) ui.Result {
			require.NotNil(t, onChange)
			onChange(changed)
			onChange(changed) // coalesced, must not block
			return ui.Result{Outcome: ui.Cancelled, ChangedPath: <-changes}
		},
		func(opts filetree.Options, _ <-chan string) ui.Result {
			ok, _ := opts.Validator.Validate(context.Background(), filepath.Join(root, "lib"))
			assert.False(t, ok, "validation uses the fresh diagnostics")
			return ui.Result{Outcome: ui.Quit}
		},
	), WithWatchFunc(watch))

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 2, checker.calls)
	assert.Equal(t, 1, a.Diagnostics().Total())
	assert.True(t, stopped, "the watcher is stopped when the session ends")

	s := out.String()
	assert.Contains(t, s, "[WATCH] "+filepath.Join(root, WatchPattern)+" is ready")
	assert.Contains(t, s, "[WATCH] "+changed+" has changed ...")
	assert.Contains(t, s, "Start re-run tsc on "+root)
}

func TestRunRemembersOpenedDirs(t *testing.T) {
	root := newProject(t)
	src := filepath.Join(root, "src")
	lib := filepath.Join(root, "lib")

	a, _ := newTestApp(t, Options{Root: root}, &fakeChecker{outputs: []string{tscOutput}}, script(t,
		func(opts filetree.Options, _ <-chan string) ui.Result {
			opts.OnDirAction(src, filetree.DirOpen)
			opts.OnDirAction(lib, filetree.DirOpen)
			opts.OnDirAction(lib, filetree.DirClose)
			return ui.Result{Outcome: ui.Selected, Path: filepath.Join(src, "a.ts")}
		},
		func(opts filetree.Options, _ <-chan string) ui.Result {
			assert.Equal(t, map[string]bool{src: true}, opts.OpenedDirs)
			return ui.Result{Outcome: ui.Quit}
		},
	))
	require.NoError(t, a.Run(context.Background()))
}

func TestRunCompileError(t *testing.T) {
	boom := errors.New("tsc crashed")
	a, _ := newTestApp(t, Options{Root: newProject(t)}, &fakeChecker{err: boom}, script(t))
	assert.ErrorIs(t, a.Run(context.Background()), boom)
}

func TestRunSelectorError(t *testing.T) {
	boom := errors.New("no tty")
	sel := SelectorFunc(func(context.Context, filetree.Options, chan string) (ui.Result, error) {
		return ui.Result{}, boom
	})
	a, _ := newTestApp(t, Options{Root: newProject(t)}, &fakeChecker{outputs: []string{tscOutput}}, sel)
	assert.ErrorIs(t, a.Run(context.Background()), boom)
}

func TestRunWatchError(t *testing.T) {
	boom := errors.New("too many files")
	a, _ := newTestApp(t, Options{Root: newProject(t), Watch: true}, &fakeChecker{outputs: []string{tscOutput}}, script(t),
		WithWatchFunc(func(string, func(string)) (func(), error) { return nil, boom }))
	assert.ErrorIs(t, a.Run(context.Background()), boom)
}

func TestErrorCountsAlignment(t *testing.T) {
	out := ""
	for i := 0; i < 10; i++ {
		out += "src/a.ts(1,1): error TS1: x\n"
	}
	out += "lib/b.ts(1,1): error TS1: y\n"
	set, err := diag.ParseString(out)
	require.NoError(t, err)

	tr := errorCounts(set, "/p", "/p")
	assert.Contains(t, tr.Transform("/p/lib", filetree.TransformInfo{IsDir: true}), " 1 errors")
	assert.Contains(t, tr.Transform("/p/lib", filetree.TransformInfo{IsDir: true}), "lib/")
	assert.Contains(t, tr.Transform("/p/src/a.ts", filetree.TransformInfo{}), "10 errors")
	assert.NotContains(t, tr.Transform("/p/src/a.ts", filetree.TransformInfo{}), "a.ts/")
}

func TestRunGeneratedProjectValidatesErrorDirs(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.ErrorRate = 0.5
	p := testutil.New(cfg).Project()
	if len(p.Diagnostics) == 0 {
		t.Skip("seed produced a clean project")
	}
	root := testutil.TempProject(t, p)

	a, _ := newTestApp(t, Options{Root: root}, &fakeChecker{outputs: []string{p.Output()}}, script(t,
		func(opts filetree.Options, _ <-chan string) ui.Result {
			for _, dir := range p.Dirs() {
				abs := filepath.Join(root, filepath.FromSlash(dir))
				ok, err := opts.Validator.Validate(context.Background(), abs)
				require.NoError(t, err)
				assert.Equal(t, p.ErrorsUnder(dir) > 0, ok, dir)
			}
			return ui.Result{Outcome: ui.Quit}
		}))
	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, len(p.Diagnostics), a.Diagnostics().Total())
}
