package filetree

import (
	"context"
	"slices"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/metrics"
)

// propagator applies the Validator to freshly loaded subtrees and folds the
// results into HasValidDescendant.
type propagator struct {
	tree      *Tree
	validator Validator
	filter    Filter

	onlyShowDir         bool
	onlyShowValid       bool
	hideChildrenOfValid bool
}

func newPropagator(t *Tree, o Options) *propagator {
	return &propagator{
		tree:                t,
		validator:           o.Validator,
		filter:              o.Filter,
		onlyShowDir:         o.OnlyShowDir,
		onlyShowValid:       o.OnlyShowValid,
		hideChildrenOfValid: o.HideChildrenOfValid,
	}
}

// enabled reports whether validation was requested at all.
func (p *propagator) enabled() bool { return p.validator != nil }

// run validates id and whatever of its subtree has not been validated yet,
// then refolds the flags of every validated ancestor.
func (p *propagator) run(ctx context.Context, id NodeID) {
	if !p.enabled() || p.tree.Node(id) == nil {
		return
	}
	p.visit(ctx, id)
	for _, a := range p.tree.Ancestors(id) {
		if n := p.tree.Node(a); n.Validated {
			n.HasValidDescendant = p.fold(a)
		}
	}
}

// visit computes the node's own validity before recursing, since children
// only exist once loaded.
func (p *propagator) visit(ctx context.Context, id NodeID) {
	n := p.tree.Node(id)
	if !n.Validated {
		n.Valid = p.check(ctx, n)
		n.Validated = true
	}
	if !n.loaded {
		n.HasValidDescendant = false
		return
	}
	// The root keeps its children, otherwise nothing is left to select.
	if p.hideChildrenOfValid && n.Valid && !n.Root {
		p.tree.truncate(id)
	}
	for _, c := range slices.Clone(n.children) {
		p.visit(ctx, c)
		if p.onlyShowValid && !p.tree.Node(c).keep() {
			p.tree.removeChild(id, c)
		}
	}
	n.HasValidDescendant = p.fold(id)
}

func (p *propagator) fold(id NodeID) bool {
	for _, c := range p.tree.Node(id).children {
		cn := p.tree.Node(c)
		if cn.Synthetic {
			continue
		}
		if cn.Validated && (cn.Valid || cn.HasValidDescendant) {
			return true
		}
	}
	return false
}

func (p *propagator) check(ctx context.Context, n *Node) bool {
	if p.onlyShowDir && !n.IsDir() {
		return false
	}
	path := n.Path
	if p.filter != nil {
		filtered, err := p.filter.Filter(ctx, path)
		if err != nil {
			debug.Log("filter %s: %v", path, err)
			return false
		}
		path = filtered
	}
	stop := metrics.Timer(metrics.Validate)
	ok, err := p.validator.Validate(ctx, path)
	stop()
	if err != nil {
		debug.Log("validate %s: %v", path, err)
		return false
	}
	return ok
}
