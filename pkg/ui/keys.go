package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the prompt key bindings. It implements help.KeyMap.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Space  key.Binding
	Toggle key.Binding
	Submit key.Binding
	Copy   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the stock bindings. Esc is deliberately unbound.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "close / parent")),
		Right:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "open / child")),
		Space:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "go up on ..")),
		Toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle folder")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Submit, k.Help, k.Quit}
}

// FullHelp is shown after pressing ?.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.Space, k.Submit},
		{k.Copy, k.Help, k.Quit},
	}
}
