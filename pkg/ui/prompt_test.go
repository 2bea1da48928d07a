package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/filetree"
)

// newProject creates root/a/x.ts and root/b.ts.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"a/x.ts", "b.ts"} {
		if err := os.WriteFile(filepath.Join(root, f), []byte("export {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func underA(root string) filetree.Validator {
	return filetree.ValidatorFunc(func(_ context.Context, path string) (bool, error) {
		a := filepath.Join(root, "a")
		return path == a || strings.HasPrefix(path, a+string(filepath.Separator)), nil
	})
}

func newTestPrompt(t *testing.T, root string, popts ...PromptOption) *Prompt {
	t.Helper()
	return NewPrompt(context.Background(), filetree.Options{
		Root:      root,
		Message:   "Select a file",
		Validator: underA(root),
	}, popts...)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func send(t *testing.T, m *Prompt, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func activePath(m *Prompt) string {
	if n := m.Navigator().ActiveNode(); n != nil {
		return n.Path
	}
	return ""
}

func TestPromptRejectsThenSelects(t *testing.T) {
	root := newProject(t)
	m := newTestPrompt(t, root)

	if got := activePath(m); got != filepath.Join(root, "a") {
		t.Fatalf("initial active = %q, want a", got)
	}

	send(t, m, "down")
	if cmd := send(t, m, "enter"); cmd != nil {
		t.Fatalf("rejected submit should not quit")
	}
	if m.Finished() {
		t.Fatalf("prompt finished on a rejected submit")
	}
	if !strings.Contains(m.View(), filetree.DefaultInvalidMessage) {
		t.Fatalf("view should show the rejection:\n%s", m.View())
	}
	if m.Navigator().State() != filetree.StateValidationError {
		t.Fatalf("state = %v, want validation-error", m.Navigator().State())
	}

	send(t, m, "up")
	if m.Navigator().State() != filetree.StateBrowsing {
		t.Fatalf("any key should leave the error state")
	}
	cmd := send(t, m, "enter")
	if cmd == nil {
		t.Fatalf("accepted submit should quit the program")
	}
	res := m.Result()
	if res.Outcome != Selected || res.Path != filepath.Join(root, "a") {
		t.Fatalf("result = %+v", res)
	}
	if res.ActivePath != res.Path {
		t.Fatalf("active path = %q, want %q", res.ActivePath, res.Path)
	}
	if !strings.Contains(m.View(), res.Path) {
		t.Fatalf("answered view should show the path:\n%s", m.View())
	}
}

func TestPromptTabTogglesFolder(t *testing.T) {
	root := newProject(t)
	m := newTestPrompt(t, root)

	send(t, m, "tab")
	if !strings.Contains(m.View(), "x.ts") {
		t.Fatalf("tab should open a/:\n%s", m.View())
	}
	send(t, m, "tab")
	if strings.Contains(m.View(), "x.ts") {
		t.Fatalf("second tab should close a/:\n%s", m.View())
	}
}

func TestPromptSpaceDoesNotToggle(t *testing.T) {
	root := newProject(t)
	m := newTestPrompt(t, root)

	send(t, m, "space")
	if strings.Contains(m.View(), "x.ts") {
		t.Fatalf("space must not open a folder:\n%s", m.View())
	}
}

func TestPromptRightAndLeft(t *testing.T) {
	root := newProject(t)
	m := newTestPrompt(t, root)

	send(t, m, "right")
	if !strings.Contains(m.View(), "x.ts") {
		t.Fatalf("right should open a/:\n%s", m.View())
	}
	send(t, m, "down")
	if got := activePath(m); got != filepath.Join(root, "a", "x.ts") {
		t.Fatalf("down should reach a/x.ts, got %q", got)
	}
	send(t, m, "left")
	if got := activePath(m); got != filepath.Join(root, "a") {
		t.Fatalf("left from a file should go to the parent, got %q", got)
	}
	if strings.Contains(m.View(), "x.ts") {
		t.Fatalf("left should close the parent:\n%s", m.View())
	}
}

func TestPromptQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m := newTestPrompt(t, newProject(t))
			if cmd := send(t, m, k); cmd == nil {
				t.Fatalf("%s should quit", k)
			}
			if m.Result().Outcome != Quit {
				t.Fatalf("outcome = %v, want quit", m.Result().Outcome)
			}
			if m.Navigator().State() != filetree.StateQuit {
				t.Fatalf("navigator state = %v", m.Navigator().State())
			}
			if m.View() != "" {
				t.Fatalf("quit prompt should clear its frame")
			}
		})
	}
}

func TestPromptEscIsNoop(t *testing.T) {
	m := newTestPrompt(t, newProject(t))
	before := activePath(m)
	if cmd := send(t, m, "esc"); cmd != nil {
		t.Fatalf("esc should not produce a command")
	}
	if m.Finished() || activePath(m) != before {
		t.Fatalf("esc changed the prompt")
	}
}

func TestPromptCancelledByChange(t *testing.T) {
	root := newProject(t)
	changes := make(chan string, 1)
	m := newTestPrompt(t, root, WithChanges(changes))

	init := m.Init()
	if init == nil {
		t.Fatalf("Init should wait for changes")
	}
	changes <- filepath.Join(root, "b.ts")
	msg := init()
	if _, ok := msg.(ChangedMsg); !ok {
		t.Fatalf("waiter returned %T", msg)
	}

	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("change should quit the prompt")
	}
	res := m.Result()
	if res.Outcome != Cancelled || res.ChangedPath != filepath.Join(root, "b.ts") {
		t.Fatalf("result = %+v", res)
	}
	if res.ActivePath != filepath.Join(root, "a") {
		t.Fatalf("active path = %q", res.ActivePath)
	}

	// Input after the prompt finished is ignored.
	send(t, m, "down")
	if m.Result().Outcome != Cancelled {
		t.Fatalf("finished prompt reacted to input")
	}
}

func TestPromptKeepsChangeArrivingAfterFinish(t *testing.T) {
	root := newProject(t)
	changes := make(chan string, 1)
	m := newTestPrompt(t, root, WithChanges(changes))
	wait := m.Init()

	send(t, m, "q")
	if m.Result().Outcome != Quit {
		t.Fatalf("result = %+v", m.Result())
	}
	changed := filepath.Join(root, "b.ts")
	changes <- changed
	if msg := wait(); msg != nil {
		t.Fatalf("waiter of a finished prompt returned %T", msg)
	}
	select {
	case got := <-changes:
		if got != changed {
			t.Fatalf("pending change = %q, want %q", got, changed)
		}
	default:
		t.Fatalf("change was dropped")
	}
}

func TestPromptRequeuesLateChangedMsg(t *testing.T) {
	root := newProject(t)
	changes := make(chan string, 1)
	m := newTestPrompt(t, root, WithChanges(changes))

	send(t, m, "q")
	changed := filepath.Join(root, "b.ts")
	m.Update(ChangedMsg{Path: changed})
	if m.Result().Outcome != Quit {
		t.Fatalf("late change overrode the result: %+v", m.Result())
	}
	select {
	case got := <-changes:
		if got != changed {
			t.Fatalf("pending change = %q, want %q", got, changed)
		}
	default:
		t.Fatalf("late change was dropped")
	}
}

func TestPromptWaiterStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewPrompt(ctx, filetree.Options{Root: newProject(t)}, WithChanges(make(chan string)))
	cancel()
	if msg := m.Init()(); msg != nil {
		t.Fatalf("cancelled waiter returned %T", msg)
	}
}

func TestPromptNoChangesNoInit(t *testing.T) {
	m := newTestPrompt(t, newProject(t))
	if m.Init() != nil {
		t.Fatalf("Init without a change channel should be nil")
	}
}

func TestPromptCopy(t *testing.T) {
	root := newProject(t)
	var copied string
	m := newTestPrompt(t, root, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	send(t, m, "y")
	if copied != filepath.Join(root, "a") {
		t.Fatalf("copied %q", copied)
	}
	if !strings.Contains(m.View(), "Copied") {
		t.Fatalf("status line missing:\n%s", m.View())
	}
	send(t, m, "down")
	if strings.Contains(m.View(), "Copied") {
		t.Fatalf("status should clear on the next key")
	}
}

func TestPromptCopyError(t *testing.T) {
	m := newTestPrompt(t, newProject(t), WithClipboard(func(string) error {
		return errors.New("no clipboard")
	}))
	send(t, m, "y")
	if !strings.Contains(m.View(), "no clipboard") {
		t.Fatalf("clipboard error not shown:\n%s", m.View())
	}
}

func TestPromptHelpToggle(t *testing.T) {
	m := newTestPrompt(t, newProject(t))
	if strings.Contains(m.View(), "copy path") {
		t.Fatalf("short help should not list every key")
	}
	send(t, m, "?")
	if !strings.Contains(m.View(), "copy path") {
		t.Fatalf("full help should list the copy key:\n%s", m.View())
	}
}

func TestPromptWindowSize(t *testing.T) {
	m := newTestPrompt(t, newProject(t))
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.help.Width != 40 {
		t.Fatalf("help width = %d, want 40", m.help.Width)
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{Selected: "selected", Cancelled: "cancelled", Quit: "quit", Outcome(9): "unknown"}
	for o, want := range cases {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", o, o.String(), want)
		}
	}
}
