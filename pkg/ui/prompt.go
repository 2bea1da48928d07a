// Package ui hosts the Bubble Tea programs of tsc-err-dirs: the file tree
// prompt, the compile spinner and the engine picker.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/filetree"
)

// Outcome tells the caller how a prompt ended.
type Outcome int

const (
	// Selected means the user submitted a valid path.
	Selected Outcome = iota
	// Cancelled means a source change tore the prompt down; the caller
	// should recompute its inputs and prompt again.
	Cancelled
	// Quit means the user asked to leave the program.
	Quit
)

func (o Outcome) String() string {
	switch o {
	case Selected:
		return "selected"
	case Cancelled:
		return "cancelled"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Result is what a finished prompt hands back.
type Result struct {
	Outcome Outcome
	// Path is the submitted path when Outcome is Selected.
	Path string
	// ChangedPath is the file that triggered a Cancelled outcome.
	ChangedPath string
	// ActivePath is the highlighted entry when the prompt ended.
	ActivePath string
}

// ChangedMsg reports a source change observed while the prompt is open.
type ChangedMsg struct{ Path string }

// Prompt is the Bubble Tea model around a filetree.Navigator.
type Prompt struct {
	ctx     context.Context
	nav     *filetree.Navigator
	keys    KeyMap
	help    help.Model
	changes chan string
	copy    func(string) error

	// waitCtx bounds the change waiter; finish cancels it.
	waitCtx     context.Context
	stopWaiting context.CancelFunc

	status   string
	result   Result
	finished bool
}

// PromptOption configures a Prompt.
type PromptOption func(*Prompt)

// WithChanges cancels the prompt when a path arrives on ch. A path taken
// from ch after the prompt finished is put back for the next prompt.
func WithChanges(ch chan string) PromptOption {
	return func(p *Prompt) { p.changes = ch }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) PromptOption {
	return func(p *Prompt) { p.copy = fn }
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) PromptOption {
	return func(p *Prompt) { p.keys = k }
}

// NewPrompt builds the navigator for opts and loads its first frame. ctx
// bounds the validator calls and the wait for changes.
func NewPrompt(ctx context.Context, opts filetree.Options, popts ...PromptOption) *Prompt {
	if opts.Styles == nil {
		s := TreeStyles()
		opts.Styles = &s
	}
	p := &Prompt{
		ctx:  ctx,
		nav:  filetree.New(opts),
		keys: DefaultKeyMap(),
		help: help.New(),
		copy: clipboard.WriteAll,
	}
	for _, o := range popts {
		o(p)
	}
	p.waitCtx, p.stopWaiting = context.WithCancel(ctx)
	p.nav.Start(ctx)
	return p
}

// Navigator exposes the wrapped navigator.
func (m *Prompt) Navigator() *filetree.Navigator { return m.nav }

// Result returns the outcome; it is only meaningful after the program exits.
func (m *Prompt) Result() Result { return m.result }

// Finished reports whether the prompt has produced a Result.
func (m *Prompt) Finished() bool { return m.finished }

// Init starts waiting for source changes.
func (m *Prompt) Init() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return waitForChange(m.waitCtx, m.changes)
}

func waitForChange(ctx context.Context, ch chan string) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-ch:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				requeue(ch, path)
				return nil
			}
			return ChangedMsg{Path: path}
		}
	}
}

// requeue puts path back without blocking. A change already pending
// covers it.
func requeue(ch chan string, path string) {
	select {
	case ch <- path:
	default:
	}
}

// Update handles keys, resizes and change notifications.
func (m *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.finished {
		if msg, ok := msg.(ChangedMsg); ok && m.changes != nil {
			requeue(m.changes, msg.Path)
		}
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.nav.SetWidth(msg.Width)
	case ChangedMsg:
		debug.Log("ui: prompt cancelled by change in %s", msg.Path)
		return m.finish(Result{Outcome: Cancelled, ChangedPath: msg.Path})
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Prompt) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.nav.Handle(m.ctx, filetree.KeyQuit)
		return m.finish(Result{Outcome: Quit})
	case key.Matches(msg, m.keys.Submit):
		if path, ok := m.nav.Submit(m.ctx); ok {
			return m.finish(Result{Outcome: Selected, Path: path})
		}
	case key.Matches(msg, m.keys.Up):
		m.nav.Handle(m.ctx, filetree.KeyUp)
	case key.Matches(msg, m.keys.Down):
		m.nav.Handle(m.ctx, filetree.KeyDown)
	case key.Matches(msg, m.keys.Left):
		m.nav.Handle(m.ctx, filetree.KeyLeft)
	case key.Matches(msg, m.keys.Right):
		m.nav.Handle(m.ctx, filetree.KeyRight)
	case key.Matches(msg, m.keys.Space):
		m.nav.Handle(m.ctx, filetree.KeySpace)
	case key.Matches(msg, m.keys.Toggle):
		m.nav.Handle(m.ctx, filetree.KeyTab)
	case key.Matches(msg, m.keys.Copy):
		m.copyActive()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Prompt) copyActive() {
	path := m.activePath()
	if path == "" {
		return
	}
	if err := m.copy(path); err != nil {
		debug.Log("ui: clipboard: %v", err)
		m.status = warningStyle.Render("Clipboard error: " + err.Error())
		return
	}
	m.status = statusStyle.Render(fmt.Sprintf("📋 Copied %s to clipboard", path))
}

func (m *Prompt) activePath() string {
	n := m.nav.ActiveNode()
	if n == nil || n.Synthetic {
		return ""
	}
	return n.Path
}

func (m *Prompt) finish(r Result) (tea.Model, tea.Cmd) {
	r.ActivePath = m.activePath()
	m.result = r
	m.finished = true
	m.stopWaiting()
	return m, tea.Quit
}

// View renders the tree, the status line and the help footer. A cancelled or
// quit prompt leaves nothing on screen.
func (m *Prompt) View() string {
	if m.finished {
		if m.result.Outcome == Selected {
			return m.nav.View() + "\n"
		}
		return ""
	}
	var b strings.Builder
	b.WriteString(m.nav.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
