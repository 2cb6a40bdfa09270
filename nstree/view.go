package nstree

import (
	"iter"

	"github.com/minios-linux/i18nedit/keypath"
)

// Node is a read-only handle on a tree node. It is a live view: after a
// structural edit removes or renames its path, Valid reports false and the
// other accessors return zero values.
type Node struct {
	t   *Tree
	key string
}

func (n Node) get() *node {
	if n.t == nil {
		return nil
	}
	return n.t.nodes[n.key]
}

// Valid reports whether the node still exists.
func (n Node) Valid() bool { return n.get() != nil }

// IsRoot reports whether n is the root of the tree.
func (n Node) IsRoot() bool { return n.t != nil && n.key == "" }

// Path returns the node's key. The root has the zero path.
func (n Node) Path() keypath.KeyPath {
	if nd := n.get(); nd != nil {
		return nd.path
	}
	return keypath.KeyPath{}
}

// Key returns the dotted key string.
func (n Node) Key() string { return n.key }

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	nd := n.get()
	return nd != nil && len(nd.children) == 0
}

// Stored reports whether the node's path is a key held by some resource.
func (n Node) Stored() bool {
	nd := n.get()
	return nd != nil && nd.stored
}

// ChildCount returns the number of direct children.
func (n Node) ChildCount() int {
	if nd := n.get(); nd != nil {
		return len(nd.children)
	}
	return 0
}

// Children yields the direct children in insertion order.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		nd := n.get()
		if nd == nil {
			return
		}
		for _, seg := range nd.children {
			if !yield(Node{t: n.t, key: n.childKey(seg)}) {
				return
			}
		}
	}
}

// Parent returns the parent node. The root and invalid nodes have none.
func (n Node) Parent() (Node, bool) {
	nd := n.get()
	if nd == nil || n.IsRoot() {
		return Node{}, false
	}
	p, err := nd.path.Parent()
	if err != nil {
		return n.t.Root(), true
	}
	return Node{t: n.t, key: p.String()}, true
}

func (n Node) childKey(seg string) string {
	if n.key == "" {
		return seg
	}
	return n.key + keypath.Separator + seg
}

// Walk yields every node below n, depth-first in pre-order. The sequence is
// produced lazily from the live tree.
func (n Node) Walk() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for c := range n.Children() {
			if !yield(c) {
				return
			}
			for d := range c.Walk() {
				if !yield(d) {
					return
				}
			}
		}
	}
}

// All yields every node of the tree except the root, depth-first.
func (t *Tree) All() iter.Seq[Node] {
	return t.Root().Walk()
}

// Keys returns the stored keys in traversal order.
func (t *Tree) Keys() []keypath.KeyPath {
	var out []keypath.KeyPath
	for n := range t.All() {
		if n.Stored() {
			out = append(out, n.Path())
		}
	}
	return out
}

// Leaves returns the paths of all leaf nodes in traversal order.
func (t *Tree) Leaves() []keypath.KeyPath {
	var out []keypath.KeyPath
	for n := range t.All() {
		if n.IsLeaf() {
			out = append(out, n.Path())
		}
	}
	return out
}
