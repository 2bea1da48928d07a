package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/diag"
)

// ErrInterrupted is returned when the user aborts a compile with ctrl+c.
var ErrInterrupted = errors.New("interrupted")

// CompileFunc runs one compile.
type CompileFunc func(ctx context.Context) (*diag.Set, error)

type compileDoneMsg struct {
	set *diag.Set
	err error
}

// CompileModel shows a spinner while a CompileFunc runs.
type CompileModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	run     CompileFunc
	message string
	spinner spinner.Model

	set  *diag.Set
	err  error
	done bool
}

// NewCompileModel prepares a spinner for run. The compile starts in Init.
func NewCompileModel(ctx context.Context, message string, run CompileFunc) *CompileModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	ctx, cancel := context.WithCancel(ctx)
	return &CompileModel{ctx: ctx, cancel: cancel, run: run, message: message, spinner: s}
}

// Init starts the spinner and the compile.
func (m *CompileModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.compile)
}

func (m *CompileModel) compile() tea.Msg {
	set, err := m.run(m.ctx)
	return compileDoneMsg{set: set, err: err}
}

// Update advances the spinner until the compile reports back.
func (m *CompileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case compileDoneMsg:
		if m.done {
			return m, nil
		}
		m.set, m.err, m.done = msg.set, msg.err, true
		m.cancel()
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err, m.done = ErrInterrupted, true
			m.cancel()
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View draws the spinner line; it is empty once done.
func (m *CompileModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + messageStyle.Render(m.message) + "\n"
}

// Result returns the compile outcome after the program exits.
func (m *CompileModel) Result() (*diag.Set, error) { return m.set, m.err }
