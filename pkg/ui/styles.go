package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/filetree"
)

// Adaptive colors for light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	spinnerStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	messageStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// TreeStyles returns the file tree styles in the UI palette.
func TreeStyles() filetree.Styles {
	s := filetree.DefaultStyles()
	s.Question = s.Question.Foreground(ColorText)
	s.Active = s.Active.Foreground(ColorInfo)
	s.ActiveInvalid = s.ActiveInvalid.Foreground(ColorDanger)
	s.Answer = s.Answer.Foreground(ColorInfo)
	s.Error = s.Error.Foreground(ColorDanger)
	return s
}
