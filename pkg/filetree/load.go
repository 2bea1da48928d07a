package filetree

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
)

// loadChildren materializes the children of id at most once. Synthetic
// nodes, files, loaded nodes and open nodes are left alone. A read error is
// swallowed and leaves the node unloaded, so it renders as a leaf.
func (v *Navigator) loadChildren(ctx context.Context, id NodeID) {
	n := v.tree.Node(id)
	if n == nil || n.Synthetic || !n.IsDir() || n.loaded || n.Open {
		return
	}
	path := n.Path
	loaded, err := v.tree.list(id)
	if err != nil {
		debug.Log("filetree: cannot list %s: %v", path, err)
	}

	if loaded && len(v.opts.OpenedDirs) > 0 {
		for _, c := range slices.Clone(v.tree.Node(id).children) {
			cn := v.tree.Node(c)
			if cn.IsDir() && v.opts.OpenedDirs[cn.Path] {
				v.loadChildren(ctx, c)
				v.tree.Node(c).Open = true
			}
		}
	}

	v.propagator.run(ctx, id)

	if loaded && v.opts.EnableGoUpperDirectory && id == v.tree.Root() {
		v.addUpperDir()
	}
}

// addUpperDir puts the ".." entry in front of the root's children unless the
// root is already the filesystem root.
func (v *Navigator) addUpperDir() {
	root := v.tree.Root()
	path := v.tree.Node(root).Path
	if filepath.Dir(path) == path {
		return
	}
	v.tree.prepend(root, upperDirNode(path))
}

// honorDefault walks down from the root along the configured default path,
// opening each matched directory, and makes the exact match active.
func (v *Navigator) honorDefault(ctx context.Context) {
	target := canonical(v.opts.Default)
	id := v.tree.Root()
	for {
		next, exact := v.matchDefault(id, target)
		if next == NoNode {
			return
		}
		if exact {
			v.active = next
			if v.tree.Node(next).IsDir() {
				v.open(ctx, next)
			}
			for _, a := range v.tree.Ancestors(next) {
				an := v.tree.Node(a)
				if an.Root {
					break
				}
				an.Open = true
			}
			return
		}
		v.open(ctx, next)
		id = next
	}
}

func (v *Navigator) matchDefault(id NodeID, target string) (NodeID, bool) {
	for _, c := range v.tree.Node(id).children {
		cn := v.tree.Node(c)
		if cn.Synthetic {
			continue
		}
		if cn.Path == target {
			return c, true
		}
		if cn.IsDir() && strings.HasPrefix(target, cn.Path+string(filepath.Separator)) {
			return c, false
		}
	}
	return NoNode, false
}

// open loads id if needed and marks it open.
func (v *Navigator) open(ctx context.Context, id NodeID) {
	v.loadChildren(ctx, id)
	if n := v.tree.Node(id); n != nil && n.IsDir() {
		n.Open = true
	}
}
