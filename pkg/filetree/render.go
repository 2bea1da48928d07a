package filetree

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Glyphs drawn in front of entries.
const (
	GlyphOpen   = "▾ "
	GlyphClosed = "▸ "
	GlyphActive = "▶ "
)

const upperDirLabel = "..(Press `Space` to go parent directory)"

// Styles holds the lipgloss styles used to draw a frame.
type Styles struct {
	Question      lipgloss.Style
	Hint          lipgloss.Style
	Answer        lipgloss.Style
	Active        lipgloss.Style
	ActiveInvalid lipgloss.Style
	Error         lipgloss.Style
	Separator     lipgloss.Style
	Pager         lipgloss.Style
}

// DefaultStyles returns the stock color scheme.
func DefaultStyles() Styles {
	return Styles{
		Question:      lipgloss.NewStyle().Bold(true),
		Hint:          lipgloss.NewStyle().Faint(true),
		Answer:        lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Active:        lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		ActiveInvalid: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Separator:     lipgloss.NewStyle().Faint(true),
		Pager:         lipgloss.NewStyle().Faint(true),
	}
}

// RenderOptions controls Flatten and Render.
type RenderOptions struct {
	OnlyShowDir bool
	HideRoot    bool
	Transformer Transformer
	Styles      Styles
	// Width clamps each line when positive.
	Width int
	Final bool
}

// Row is one entry of the flattened view.
type Row struct {
	ID    NodeID
	Depth int
}

// Flatten walks the open part of the tree in pre-order and returns the
// visible rows. The tree is not modified.
func Flatten(t *Tree, ro RenderOptions) []Row {
	rows := []Row{}
	top := []NodeID{t.Root()}
	if ro.HideRoot {
		top = t.Node(t.Root()).children
	}
	var walk func(ids []NodeID, depth int)
	walk = func(ids []NodeID, depth int) {
		for _, id := range ids {
			n := t.Node(id)
			if ro.OnlyShowDir && !n.IsDir() {
				continue
			}
			rows = append(rows, Row{ID: id, Depth: depth})
			if n.Open {
				walk(n.children, depth+1)
			}
		}
	}
	walk(top, 0)
	return rows
}

// Render returns the text of every visible row, one per line, and the
// matching visible list. Each call builds a new list.
func Render(t *Tree, active NodeID, ro RenderOptions) (string, []NodeID) {
	rows := Flatten(t, ro)
	lines := renderLines(t, rows, active, ro)
	ids := make([]NodeID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return strings.Join(lines, "\n"), ids
}

func renderLines(t *Tree, rows []Row, active NodeID, ro RenderOptions) []string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, renderRow(t, r, r.ID == active, ro))
	}
	return lines
}

func renderRow(t *Tree, r Row, isActive bool, ro RenderOptions) string {
	n := t.Node(r.ID)
	indent := 2 + 2*r.Depth

	var prefix string
	switch {
	case n.IsDir() && n.Open:
		prefix = GlyphOpen
	case n.IsDir():
		prefix = GlyphClosed
	case isActive:
		prefix = GlyphActive
	}
	pad := indent - runewidth.StringWidth(prefix) + 2
	if pad < 0 {
		pad = 0
	}

	line := strings.Repeat(" ", pad) + prefix + label(n, ro)
	if ro.Width > 0 {
		line = lipgloss.NewStyle().MaxWidth(ro.Width).Render(line)
	}
	if !isActive {
		return line
	}
	if n.Rejected() {
		return ro.Styles.ActiveInvalid.Render(line)
	}
	return ro.Styles.Active.Render(line)
}

func label(n *Node, ro RenderOptions) string {
	if n.Synthetic {
		return upperDirLabel
	}
	if ro.Transformer != nil {
		return ro.Transformer.Transform(n.Path, TransformInfo{
			IsFinal: ro.Final,
			IsDir:   n.IsDir(),
			IsRoot:  n.Root,
		})
	}
	if n.IsDir() {
		return n.Name + string(filepath.Separator)
	}
	return n.Name
}
