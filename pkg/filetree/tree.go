package filetree

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/metrics"
)

// DirReader lists a directory. os.ReadDir is the default.
type DirReader interface {
	ReadDir(name string) ([]fs.DirEntry, error)
}

// DirReaderFunc adapts a function to DirReader.
type DirReaderFunc func(name string) ([]fs.DirEntry, error)

// ReadDir calls f(name).
func (f DirReaderFunc) ReadDir(name string) ([]fs.DirEntry, error) { return f(name) }

// OSReader reads directories from the real filesystem.
var OSReader DirReader = DirReaderFunc(os.ReadDir)

// Tree is an arena of nodes rooted at a single directory.
type Tree struct {
	nodes  []Node
	root   NodeID
	reader DirReader
}

// NewTree creates a tree whose root is the directory at path.
// The path is made absolute and cleaned.
func NewTree(path string, reader DirReader) *Tree {
	if reader == nil {
		reader = OSReader
	}
	t := &Tree{reader: reader}
	t.reset(canonical(path), RootName)
	return t
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// reset discards every node and starts over with a fresh root. Existing
// NodeIDs become meaningless.
func (t *Tree) reset(path, name string) {
	t.nodes = nil
	t.root = t.add(Node{
		Name:   name,
		Path:   path,
		Kind:   KindDir,
		Root:   true,
		parent: NoNode,
	})
}

func (t *Tree) add(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Root returns the current root.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the arena, including pruned ones.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node for id, or nil when id is out of range. The pointer
// is only valid until the next load grows the arena.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Find returns the ID of the first reachable node with the given path.
func (t *Tree) Find(path string) NodeID {
	found := NoNode
	t.Walk(t.root, func(id NodeID, n *Node) bool {
		if n.Path == path && !n.Synthetic {
			found = id
			return false
		}
		return true
	})
	return found
}

// Walk visits id and its materialized descendants in pre-order until fn
// returns false.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) bool {
	n := t.Node(id)
	if n == nil {
		return true
	}
	if !fn(id, n) {
		return false
	}
	for _, c := range n.children {
		if !t.Walk(c, fn) {
			return false
		}
	}
	return true
}

// Ancestors returns the chain from id's parent up to and including the root.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	n := t.Node(id)
	for n != nil && n.parent != NoNode {
		out = append(out, n.parent)
		n = t.Node(n.parent)
	}
	return out
}

// list reads the directory behind id and attaches one child per entry. It
// reports whether the children were assigned. On a read error the node is
// left unloaded so a later attempt may retry.
func (t *Tree) list(id NodeID) (bool, error) {
	path := t.nodes[id].Path
	stop := metrics.Timer(metrics.DirRead)
	entries, err := t.reader.ReadDir(path)
	stop()
	if err != nil {
		return false, err
	}
	children := make([]NodeID, 0, len(entries))
	for _, e := range entries {
		kind := KindFile
		if e.IsDir() {
			kind = KindDir
		}
		children = append(children, t.add(Node{
			Name:   e.Name(),
			Path:   filepath.Join(path, e.Name()),
			Kind:   kind,
			parent: id,
		}))
	}
	// t.nodes may have grown; index again.
	t.nodes[id].children = children
	t.nodes[id].loaded = true
	return true, nil
}

// prepend inserts child at the front of id's children.
func (t *Tree) prepend(id NodeID, child Node) NodeID {
	child.parent = id
	cid := t.add(child)
	n := &t.nodes[id]
	n.children = slices.Insert(n.children, 0, cid)
	return cid
}

// removeChild detaches child from id's children sequence.
func (t *Tree) removeChild(id, child NodeID) {
	n := &t.nodes[id]
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

// truncate empties id's children while keeping it loaded.
func (t *Tree) truncate(id NodeID) {
	t.nodes[id].children = t.nodes[id].children[:0]
}
