// Package nstree implements the namespace tree: the hierarchical projection
// of the union of flat translation keys held by every open resource.
//
// The tree is an arena of nodes indexed by their dotted path. A node is a
// group when it has children and a leaf otherwise. Each node also records
// whether its exact path is a stored key in at least one resource, which
// drives pruning on removal. The tree owns no translation values.
//
// Sibling order is the order in which children were first inserted. Callers
// that want sorted output sort the views themselves.
package nstree

import (
	"errors"
	"fmt"

	"github.com/minios-linux/i18nedit/keypath"
)

var (
	// ErrSamePath is returned by Rename and Duplicate when source and
	// destination are the same key.
	ErrSamePath = errors.New("source and destination keys are the same")
	// ErrNotFound is returned when the source key of a move has no node.
	ErrNotFound = errors.New("key not found")
	// ErrIntoAncestor is returned by Duplicate when the destination is an
	// ancestor of the source.
	ErrIntoAncestor = errors.New("cannot duplicate a key onto its own ancestor")
)

// Conflict classifies what happens when a subtree is moved or copied onto
// a path that already has a node.
type Conflict int

const (
	// ConflictNone means the destination does not exist.
	ConflictNone Conflict = iota
	// ConflictMerge means both sides are groups and can be unioned.
	ConflictMerge
	// ConflictReplace means at least one side is a leaf whose value would
	// be overwritten.
	ConflictReplace
)

func (c Conflict) String() string {
	switch c {
	case ConflictNone:
		return "none"
	case ConflictMerge:
		return "merge"
	case ConflictReplace:
		return "replace"
	}
	return fmt.Sprintf("Conflict(%d)", int(c))
}

type node struct {
	path     keypath.KeyPath
	children []string // child segments in insertion order
	stored   bool
}

func (n *node) removeChild(seg string) {
	for i, c := range n.children {
		if c == seg {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Tree is the namespace tree. The zero value is not usable; call New or
// Build.
type Tree struct {
	nodes map[string]*node
	root  *node
}

// New returns an empty tree.
func New() *Tree {
	t := &Tree{}
	t.Clear()
	return t
}

// Build constructs a tree holding every key in keys. Sibling order follows
// the first occurrence of each segment in keys.
func Build(keys []keypath.KeyPath) *Tree {
	t := New()
	for _, k := range keys {
		t.Insert(k)
	}
	return t
}

// Clear removes every node.
func (t *Tree) Clear() {
	t.root = &node{}
	t.nodes = map[string]*node{"": t.root}
}

// Len returns the number of nodes, excluding the root.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Root returns the view of the root node.
func (t *Tree) Root() Node { return Node{t: t} }

// Find returns the node at k.
func (t *Tree) Find(k keypath.KeyPath) (Node, bool) {
	if k.IsZero() {
		return Node{}, false
	}
	key := k.String()
	if _, ok := t.nodes[key]; !ok {
		return Node{}, false
	}
	return Node{t: t, key: key}, true
}

// Has reports whether a node exists at k.
func (t *Tree) Has(k keypath.KeyPath) bool {
	_, ok := t.Find(k)
	return ok
}

// Insert adds a node for k and every missing ancestor, and marks k as a
// stored key. Inserting an existing path changes no structure.
func (t *Tree) Insert(k keypath.KeyPath) {
	if k.IsZero() {
		return
	}
	t.ensure(k).stored = true
}

// ensure returns the node at k, creating it and its ancestors as
// structural (non-stored) nodes when missing.
func (t *Tree) ensure(k keypath.KeyPath) *node {
	key := k.String()
	if n, ok := t.nodes[key]; ok {
		return n
	}
	parent := t.root
	if p, err := k.Parent(); err == nil {
		parent = t.ensure(p)
	}
	n := &node{path: k}
	t.nodes[key] = n
	parent.children = append(parent.children, k.LastSegment())
	return n
}

// Remove deletes the node at k with its whole subtree, then prunes every
// ancestor left without children unless that ancestor is itself a stored
// key. It reports whether anything was removed.
func (t *Tree) Remove(k keypath.KeyPath) bool {
	key := k.String()
	n, ok := t.nodes[key]
	if !ok || n == t.root {
		return false
	}
	t.dropSubtree(key, n)
	t.detach(k)
	return true
}

func (t *Tree) dropSubtree(key string, n *node) {
	for _, seg := range n.children {
		ck := key + keypath.Separator + seg
		if c, ok := t.nodes[ck]; ok {
			t.dropSubtree(ck, c)
		}
	}
	delete(t.nodes, key)
}

// detach unlinks k from its parent and walks upward removing structural
// ancestors that became empty.
func (t *Tree) detach(k keypath.KeyPath) {
	for {
		p, err := k.Parent()
		parent := t.root
		if err == nil {
			parent = t.nodes[p.String()]
		}
		if parent == nil {
			return
		}
		parent.removeChild(k.LastSegment())
		if parent == t.root || len(parent.children) > 0 || parent.stored {
			return
		}
		delete(t.nodes, p.String())
		k = p
	}
}

// ConflictKind classifies moving or copying the subtree at oldPath onto
// newPath. It is ConflictNone when newPath has no node (or when both paths
// are equal), ConflictReplace when either node is a leaf, and ConflictMerge
// when both are groups.
func (t *Tree) ConflictKind(oldPath, newPath keypath.KeyPath) Conflict {
	if oldPath.Equal(newPath) {
		return ConflictNone
	}
	dst, ok := t.nodes[newPath.String()]
	if !ok {
		return ConflictNone
	}
	src, ok := t.nodes[oldPath.String()]
	if !ok {
		return ConflictNone
	}
	if len(src.children) == 0 || len(dst.children) == 0 {
		return ConflictReplace
	}
	return ConflictMerge
}

// Rename moves the subtree at oldPath to newPath. When a node already
// exists at newPath, a Replace-kind conflict overwrites the destination
// subtree and a Merge-kind conflict unions both subtrees. Callers decide
// whether the move should happen before calling Rename.
func (t *Tree) Rename(oldPath, newPath keypath.KeyPath) error {
	return t.move(oldPath, newPath, false)
}

// Duplicate copies the subtree at oldPath to newPath, keeping the source.
// Conflicts are resolved as in Rename. Duplicating onto an ancestor of
// oldPath fails with ErrIntoAncestor.
func (t *Tree) Duplicate(oldPath, newPath keypath.KeyPath) error {
	return t.move(oldPath, newPath, true)
}

// shape is one node of a detached subtree, relative to the subtree root.
type shape struct {
	rel    []string
	stored bool
}

func (t *Tree) move(oldPath, newPath keypath.KeyPath, keepSource bool) error {
	if oldPath.Equal(newPath) {
		return ErrSamePath
	}
	src, ok := t.nodes[oldPath.String()]
	if !ok || oldPath.IsZero() || newPath.IsZero() {
		return fmt.Errorf("%w: %s", ErrNotFound, oldPath)
	}
	if keepSource && newPath.IsAncestorOf(oldPath) {
		return fmt.Errorf("%w: %s -> %s", ErrIntoAncestor, oldPath, newPath)
	}
	kind := t.ConflictKind(oldPath, newPath)

	var shapes []shape
	t.collect(src, nil, &shapes)

	if !keepSource {
		t.Remove(oldPath)
	}
	if kind == ConflictReplace {
		t.Remove(newPath)
	}
	t.graft(newPath, shapes)
	return nil
}

func (t *Tree) collect(n *node, rel []string, out *[]shape) {
	*out = append(*out, shape{rel: rel, stored: n.stored})
	key := n.path.String()
	for _, seg := range n.children {
		c := t.nodes[key+keypath.Separator+seg]
		if c == nil {
			continue
		}
		childRel := make([]string, len(rel), len(rel)+1)
		copy(childRel, rel)
		t.collect(c, append(childRel, seg), out)
	}
}

func (t *Tree) graft(at keypath.KeyPath, shapes []shape) {
	for _, s := range shapes {
		p := at
		for _, seg := range s.rel {
			// Segments come from existing nodes and are already valid.
			p, _ = p.Child(seg)
		}
		n := t.ensure(p)
		if s.stored {
			n.stored = true
		}
	}
}
