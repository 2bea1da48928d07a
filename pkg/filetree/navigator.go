package filetree

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/metrics"
)

// State is the navigator's position in the prompt lifecycle.
type State int

const (
	StateBrowsing State = iota
	// StateValidationError shows the last rejection; any input returns to browsing.
	StateValidationError
	StateAnswered
	// StateQuit means the user asked to leave the whole program.
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateValidationError:
		return "validation-error"
	case StateAnswered:
		return "answered"
	case StateQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Key is an input understood by the navigator.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	// KeySpace rebases on ".." and otherwise only redraws.
	KeySpace
	// KeyTab toggles the active directory.
	KeyTab
	KeyQuit
)

// DefaultInvalidMessage is shown when the Validator rejects without an error.
const DefaultInvalidMessage = "Please select a valid entry"

const (
	firstRenderHint = "(Use arrow keys, Use space to toggle folder)"
	separator       = "----------------"
	moreHint        = "(Move up and down to reveal more choices)"
)

// ErrNothingSelected is reported on submit when the tree has no entries.
var ErrNothingSelected = errors.New("nothing selected")

// Navigator owns a Tree and the active pointer and turns key events into
// tree mutations. It is not safe for concurrent use.
type Navigator struct {
	opts       Options
	tree       *Tree
	propagator *propagator

	active  NodeID
	visible []NodeID
	lines   []string

	firstRender bool
	state       State
	errMsg      string
	answer      string
	width       int
}

// New creates a navigator over opts.Root. Call Start before anything else.
func New(opts Options) *Navigator {
	t := NewTree(opts.Root, opts.Reader)
	return &Navigator{
		opts:       opts,
		tree:       t,
		propagator: newPropagator(t, opts),
		active:     NoNode,
	}
}

// Start loads the root, honors Default and draws the first frame.
func (v *Navigator) Start(ctx context.Context) {
	v.firstRender = true
	root := v.tree.Root()
	v.loadChildren(ctx, root)
	v.tree.Node(root).Open = true

	if v.opts.Default != "" {
		v.honorDefault(ctx)
	}
	if v.active == NoNode {
		if ch := v.tree.Node(root).children; len(ch) > 0 {
			v.active = ch[0]
		} else if !v.opts.HideRoot {
			v.active = root
		}
	}
	if a := v.tree.Node(v.active); a != nil && !a.Synthetic {
		v.loadChildren(ctx, v.active)
	}
	v.refresh()
}

// Tree exposes the underlying tree.
func (v *Navigator) Tree() *Tree { return v.tree }

// Active returns the active node ID.
func (v *Navigator) Active() NodeID { return v.active }

// ActiveNode returns the active node, or nil.
func (v *Navigator) ActiveNode() *Node { return v.tree.Node(v.active) }

// Visible returns a copy of the visible list from the last render.
func (v *Navigator) Visible() []NodeID { return slices.Clone(v.visible) }

// State returns the current state.
func (v *Navigator) State() State { return v.state }

// Err returns the message of the last rejected submission.
func (v *Navigator) Err() string { return v.errMsg }

// Answer returns the resolved path once answered.
func (v *Navigator) Answer() string { return v.answer }

// SetWidth clamps rendered lines to w cells; zero disables clamping.
func (v *Navigator) SetWidth(w int) {
	v.width = w
	v.refresh()
}

// Handle applies one key press.
func (v *Navigator) Handle(ctx context.Context, k Key) {
	if v.done() {
		return
	}
	if v.state == StateValidationError {
		v.state = StateBrowsing
		v.errMsg = ""
	}
	v.firstRender = false

	switch k {
	case KeyUp:
		v.move(ctx, -1)
	case KeyDown:
		v.move(ctx, 1)
	case KeyLeft:
		v.left()
	case KeyRight:
		v.right(ctx)
	case KeySpace:
		v.space(ctx)
	case KeyTab:
		v.tab(ctx)
	case KeyQuit:
		v.state = StateQuit
	}
	v.refresh()
}

// Submit validates the active path. On success the navigator is answered
// and the (filtered) path is returned; on failure the error message is kept
// for the next frame and the tree is left untouched.
func (v *Navigator) Submit(ctx context.Context) (string, bool) {
	if v.state == StateAnswered {
		return v.answer, true
	}
	if v.state == StateQuit {
		return "", false
	}
	n := v.ActiveNode()
	if n == nil {
		v.reject(ErrNothingSelected.Error())
		return "", false
	}
	path := n.Path
	if v.opts.Filter != nil {
		filtered, err := v.opts.Filter.Filter(ctx, path)
		if err != nil {
			v.reject(err.Error())
			return "", false
		}
		path = filtered
	}
	if v.opts.Validator != nil {
		ok, err := v.opts.Validator.Validate(ctx, path)
		if err != nil {
			v.reject(err.Error())
			return "", false
		}
		if !ok {
			v.reject(DefaultInvalidMessage)
			return "", false
		}
	}
	v.state = StateAnswered
	v.answer = path
	v.errMsg = ""
	return path, true
}

func (v *Navigator) reject(msg string) {
	v.state = StateValidationError
	v.errMsg = msg
}

func (v *Navigator) done() bool {
	return v.state == StateAnswered || v.state == StateQuit
}

func (v *Navigator) move(ctx context.Context, delta int) {
	if len(v.visible) == 0 {
		return
	}
	i := slices.Index(v.visible, v.active)
	if i < 0 {
		v.active = v.visible[0]
	} else {
		n := len(v.visible)
		v.active = v.visible[((i+delta)%n+n)%n]
	}
	if a := v.ActiveNode(); !a.Synthetic {
		v.loadChildren(ctx, v.active)
	}
}

func (v *Navigator) left() {
	n := v.ActiveNode()
	if n == nil {
		return
	}
	if (!n.IsDir() || !n.Open) && n.parent != NoNode && slices.Contains(v.visible, n.parent) {
		v.active = n.parent
	}
	v.setOpen(v.active, false)
}

func (v *Navigator) right(ctx context.Context) {
	n := v.ActiveNode()
	if n == nil || n.Synthetic || !n.IsDir() {
		return
	}
	v.loadChildren(ctx, v.active)
	v.setOpen(v.active, true)
}

func (v *Navigator) space(ctx context.Context) {
	n := v.ActiveNode()
	if n == nil {
		return
	}
	if n.Synthetic && v.canRebase(n.Path) {
		v.rebase(ctx, n.Path)
		return
	}
	// Space alone never toggles a directory; Tab does.
}

func (v *Navigator) tab(ctx context.Context) {
	n := v.ActiveNode()
	if n == nil || n.Synthetic || !n.IsDir() {
		return
	}
	v.loadChildren(ctx, v.active)
	n = v.ActiveNode()
	if n.loaded && len(n.children) == 0 {
		return
	}
	v.setOpen(v.active, !n.Open)
}

func (v *Navigator) setOpen(id NodeID, open bool) {
	n := v.tree.Node(id)
	if n == nil || !n.IsDir() || n.Synthetic || n.Open == open {
		return
	}
	n.Open = open
	if v.opts.OnDirAction == nil {
		return
	}
	action := DirClose
	if open {
		action = DirOpen
	}
	v.opts.OnDirAction(n.Path, action)
}

// canRebase reports whether target is a strict ancestor of the current root.
// At the filesystem root there is nothing above, so the walk stops there.
func (v *Navigator) canRebase(target string) bool {
	root := v.tree.Node(v.tree.Root()).Path
	if target == root {
		return false
	}
	rel, err := filepath.Rel(target, root)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// rebase replaces the whole tree with one rooted at target.
func (v *Navigator) rebase(ctx context.Context, target string) {
	v.tree.reset(target, filepath.Base(target))
	v.active = NoNode

	root := v.tree.Root()
	v.loadChildren(ctx, root)
	v.tree.Node(root).Open = true
	if ch := v.tree.Node(root).children; len(ch) > 0 {
		v.active = ch[0]
	} else if !v.opts.HideRoot {
		v.active = root
	}
	if a := v.ActiveNode(); a != nil && !a.Synthetic {
		v.loadChildren(ctx, v.active)
	}
	v.firstRender = true
}

// refresh rebuilds the visible list wholesale and re-renders the lines. If
// the active node is no longer visible it falls back to its nearest visible
// ancestor, then to the first entry.
func (v *Navigator) refresh() {
	defer metrics.Timer(metrics.Render)()
	ro := v.opts.renderOptions(v.width, false)
	rows := Flatten(v.tree, ro)
	ids := make([]NodeID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	if !slices.Contains(ids, v.active) {
		v.active = fallback(v.tree, v.active, ids)
	}
	v.visible = ids
	v.lines = renderLines(v.tree, rows, v.active, ro)
}

func fallback(t *Tree, active NodeID, ids []NodeID) NodeID {
	if len(ids) == 0 {
		return NoNode
	}
	for _, a := range t.Ancestors(active) {
		if slices.Contains(ids, a) {
			return a
		}
	}
	return ids[0]
}

// View renders the current frame.
func (v *Navigator) View() string {
	styles := v.opts.styles()

	var b strings.Builder
	b.WriteString(styles.Question.Render("? " + v.opts.Message))

	if v.state == StateAnswered {
		b.WriteString(" ")
		b.WriteString(styles.Answer.Render(v.answer))
		return b.String()
	}
	if v.firstRender {
		b.WriteString(" ")
		b.WriteString(styles.Hint.Render(firstRenderHint))
	}
	b.WriteString("\n")
	b.WriteString(v.page(styles))

	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Error.Render(">> "))
		b.WriteString(v.errMsg)
	}
	return b.String()
}

// page windows the rendered lines around the active entry.
func (v *Navigator) page(styles Styles) string {
	var b strings.Builder
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = v.opts.pageSize()
	p.SetTotalPages(len(v.lines))

	if idx := slices.Index(v.visible, v.active); idx > 0 {
		p.Page = idx / p.PerPage
	}
	start, end := p.GetSliceBounds(len(v.lines))
	for _, line := range v.lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(styles.Separator.Render(separator))
	if p.TotalPages > 1 {
		b.WriteString(" ")
		b.WriteString(styles.Pager.Render(p.View() + " " + moreHint))
	}
	return b.String()
}
