package nstree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/i18nedit/keypath"
)

func keys(ss ...string) []keypath.KeyPath {
	out := make([]keypath.KeyPath, len(ss))
	for i, s := range ss {
		out[i] = keypath.MustParse(s)
	}
	return out
}

func k(s string) keypath.KeyPath { return keypath.MustParse(s) }

func paths(t *Tree) []string {
	var out []string
	for n := range t.All() {
		out = append(out, n.Key())
	}
	return out
}

func TestBuildCreatesPrefixes(t *testing.T) {
	tr := Build(keys("nav.home", "nav.about", "footer.copy.year", "title"))

	for _, s := range []string{"nav.home", "nav.about", "footer.copy.year", "title"} {
		n, ok := tr.Find(k(s))
		require.True(t, ok, s)
		assert.True(t, n.IsLeaf(), s)
		assert.True(t, n.Stored(), s)
	}
	for _, s := range []string{"nav", "footer", "footer.copy"} {
		n, ok := tr.Find(k(s))
		require.True(t, ok, s)
		assert.False(t, n.IsLeaf(), s)
		assert.False(t, n.Stored(), s)
	}
	assert.Equal(t, 7, tr.Len())
}

func TestBuildKeepsFirstSeenOrder(t *testing.T) {
	tr := Build(keys("z.b", "a", "z.a", "m"))
	assert.Equal(t, []string{"z", "z.b", "z.a", "a", "m"}, paths(tr))
}

func TestBuildMarksStoredAncestor(t *testing.T) {
	tr := Build(keys("a.b.c", "a.b"))
	n, ok := tr.Find(k("a.b"))
	require.True(t, ok)
	assert.True(t, n.Stored())
	assert.False(t, n.IsLeaf())
}

func TestInsertIdempotent(t *testing.T) {
	tr := New()
	tr.Insert(k("a.b"))
	before := paths(tr)
	tr.Insert(k("a.b"))
	tr.Insert(k("a"))
	assert.Equal(t, before, paths(tr))
}

func TestRemovePrunesStructuralAncestors(t *testing.T) {
	tr := Build(keys("a.b.c", "x"))
	require.True(t, tr.Remove(k("a.b.c")))

	assert.False(t, tr.Has(k("a.b.c")))
	assert.False(t, tr.Has(k("a.b")))
	assert.False(t, tr.Has(k("a")))
	assert.True(t, tr.Has(k("x")))
}

func TestRemoveKeepsStoredAncestor(t *testing.T) {
	tr := Build(keys("a.b", "a.b.c"))
	tr.Remove(k("a.b.c"))

	n, ok := tr.Find(k("a.b"))
	require.True(t, ok)
	assert.True(t, n.IsLeaf())
	assert.True(t, tr.Has(k("a")))
}

func TestRemoveSubtree(t *testing.T) {
	tr := Build(keys("a.b.x", "a.b.y", "a.c"))
	tr.Remove(k("a.b"))
	assert.Equal(t, []string{"a", "a.c"}, paths(tr))
	assert.False(t, tr.Remove(k("missing")))
}

func TestConflictKind(t *testing.T) {
	tr := Build(keys("a.b", "a.c", "g.one.x", "g.two.y"))

	assert.Equal(t, ConflictNone, tr.ConflictKind(k("a.b"), k("a.d")))
	assert.Equal(t, ConflictReplace, tr.ConflictKind(k("a.b"), k("a.c")))
	assert.Equal(t, ConflictReplace, tr.ConflictKind(k("a.b"), k("g.one")))
	assert.Equal(t, ConflictReplace, tr.ConflictKind(k("g.one"), k("a.b")))
	assert.Equal(t, ConflictMerge, tr.ConflictKind(k("g.one"), k("g.two")))
	assert.Equal(t, ConflictNone, tr.ConflictKind(k("a.b"), k("a.b")))
	assert.Equal(t, "merge", ConflictMerge.String())
}

func TestRenameMovesSubtree(t *testing.T) {
	tr := Build(keys("a.b.x", "a.b.y.z", "q"))
	require.NoError(t, tr.Rename(k("a.b"), k("c.d")))

	assert.False(t, tr.Has(k("a.b")))
	assert.False(t, tr.Has(k("a")), "structural parent must be pruned")
	for _, s := range []string{"c.d", "c.d.x", "c.d.y", "c.d.y.z"} {
		assert.True(t, tr.Has(k(s)), s)
	}
	n, _ := tr.Find(k("c.d.y.z"))
	assert.True(t, n.Stored())
}

func TestRenameErrors(t *testing.T) {
	tr := Build(keys("a"))
	assert.ErrorIs(t, tr.Rename(k("a"), k("a")), ErrSamePath)
	assert.ErrorIs(t, tr.Rename(k("b"), k("c")), ErrNotFound)
}

func TestRenameMerge(t *testing.T) {
	tr := Build(keys("a.b.x", "a.c.y"))
	require.Equal(t, ConflictMerge, tr.ConflictKind(k("a.b"), k("a.c")))
	require.NoError(t, tr.Rename(k("a.b"), k("a.c")))

	assert.True(t, tr.Has(k("a.c.x")))
	assert.True(t, tr.Has(k("a.c.y")))
	assert.False(t, tr.Has(k("a.b")))
}

func TestRenameReplaceOverwritesDestination(t *testing.T) {
	tr := Build(keys("a.b", "a.c.y"))
	require.Equal(t, ConflictReplace, tr.ConflictKind(k("a.b"), k("a.c")))
	require.NoError(t, tr.Rename(k("a.b"), k("a.c")))

	n, ok := tr.Find(k("a.c"))
	require.True(t, ok)
	assert.True(t, n.IsLeaf())
	assert.True(t, n.Stored())
	assert.False(t, tr.Has(k("a.c.y")))
}

func TestRenameIntoOwnDescendant(t *testing.T) {
	tr := Build(keys("a.x", "a.y"))
	require.NoError(t, tr.Rename(k("a"), k("a.b")))
	assert.Equal(t, []string{"a", "a.b", "a.b.x", "a.b.y"}, paths(tr))
}

func TestRenameOntoAncestorReplace(t *testing.T) {
	tr := Build(keys("a.b"))
	require.Equal(t, ConflictReplace, tr.ConflictKind(k("a.b"), k("a")))
	require.NoError(t, tr.Rename(k("a.b"), k("a")))
	assert.Equal(t, []string{"a"}, paths(tr))
	n, _ := tr.Find(k("a"))
	assert.True(t, n.Stored())
}

func TestDuplicateKeepsSource(t *testing.T) {
	tr := Build(keys("a.b.x", "a.b.y"))
	require.NoError(t, tr.Duplicate(k("a.b"), k("c")))

	for _, s := range []string{"a.b.x", "a.b.y", "c.x", "c.y"} {
		assert.True(t, tr.Has(k(s)), s)
	}
	assert.ErrorIs(t, tr.Duplicate(k("c"), k("c")), ErrSamePath)

	assert.ErrorIs(t, tr.Duplicate(k("a.b.x"), k("a")), ErrIntoAncestor)
	assert.True(t, tr.Has(k("a.b.x")))
	assert.True(t, tr.Has(k("a.b.y")))
}

func TestNodeViewInvalidatedByEdit(t *testing.T) {
	tr := Build(keys("a.b"))
	n, ok := tr.Find(k("a.b"))
	require.True(t, ok)
	require.NoError(t, tr.Rename(k("a.b"), k("a.c")))

	assert.False(t, n.Valid())
	assert.False(t, n.IsLeaf())
	assert.Equal(t, 0, n.ChildCount())
}

func TestChildrenAndParent(t *testing.T) {
	tr := Build(keys("a.b", "a.c"))
	a, _ := tr.Find(k("a"))

	var names []string
	for c := range a.Children() {
		names = append(names, c.Path().LastSegment())
	}
	assert.Equal(t, []string{"b", "c"}, names)

	b, _ := tr.Find(k("a.b"))
	p, ok := b.Parent()
	require.True(t, ok)
	assert.Equal(t, "a", p.Key())

	root, ok := a.Parent()
	require.True(t, ok)
	assert.True(t, root.IsRoot())
}

func TestKeysAndLeaves(t *testing.T) {
	tr := Build(keys("a.b", "a.b.c", "d"))
	var ks, ls []string
	for _, p := range tr.Keys() {
		ks = append(ks, p.String())
	}
	for _, p := range tr.Leaves() {
		ls = append(ls, p.String())
	}
	assert.Equal(t, []string{"a.b", "a.b.c", "d"}, ks)
	assert.Equal(t, []string{"a.b.c", "d"}, ls)
}

func TestWalkStopsEarly(t *testing.T) {
	tr := Build(keys("a.b.c", "d"))
	count := 0
	for range tr.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
