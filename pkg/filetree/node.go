// Package filetree implements a lazily loaded filesystem tree with a
// keyboard-driven navigator that resolves to a single selected path.
//
// Nodes live in an arena owned by a Tree and refer to each other by NodeID.
// A parent owns the ordered slice of its children; the parent link held by a
// child is only used for upward walks (Left key, opening ancestors).
package filetree

import "path/filepath"

// NodeID identifies a node inside a Tree arena.
type NodeID int

// NoNode is the zero reference: no parent, no active node.
const NoNode NodeID = -1

// Kind is the filesystem entry type of a node.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// UpperDirName is the name of the synthetic "go up" entry.
const UpperDirName = ".."

// RootName is the display name of the tree root before any rebase.
const RootName = ".(root directory)"

// Node is one filesystem entry bound into the navigation tree.
type Node struct {
	Name string
	Path string
	Kind Kind

	// Open is only meaningful for directories.
	Open bool

	// Synthetic marks the generated ".." entry.
	Synthetic bool
	// Root marks the current tree root.
	Root bool

	// Validated is set once Valid and HasValidDescendant have been computed
	// together. Both flags are meaningless while it is false.
	Validated          bool
	Valid              bool
	HasValidDescendant bool

	parent   NodeID
	children []NodeID
	loaded   bool
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.Kind == KindDir }

// Parent returns the non-owning back-reference, or NoNode.
func (n *Node) Parent() NodeID { return n.parent }

// Loaded reports whether the children sequence has been materialized.
// A loaded node with no children is terminal.
func (n *Node) Loaded() bool { return n.loaded }

// Children returns the ordered child IDs. The slice must not be modified.
func (n *Node) Children() []NodeID { return n.children }

// Rejected reports whether validation ran and rejected the node.
func (n *Node) Rejected() bool { return n.Validated && !n.Valid }

// keep reports whether the node survives the "only show valid" filter.
func (n *Node) keep() bool {
	return !n.Validated || n.Valid || n.HasValidDescendant
}

func upperDirNode(root string) Node {
	return Node{
		Name:      UpperDirName,
		Path:      filepath.Dir(root),
		Kind:      KindDir,
		Synthetic: true,
		Validated: true,
		Valid:     true,
		parent:    NoNode,
	}
}
