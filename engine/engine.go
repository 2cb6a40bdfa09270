// Package engine applies structural key edits to every resource store of a
// workspace and to its namespace tree in one step.
//
// Store and tree mutations cannot fail, so an edit is all-or-nothing as
// long as every check happens before the first mutation. Checks cover the
// shape of nested files after the edit and the confirmation of conflicts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/minios-linux/i18nedit/keypath"
	"github.com/minios-linux/i18nedit/nstree"
	"github.com/minios-linux/i18nedit/resource"
)

var (
	// ErrAborted is returned when a Replace conflict was not confirmed.
	ErrAborted = errors.New("edit aborted")
	// ErrNotFound is returned when the source key of a rename or duplicate
	// has no tree node.
	ErrNotFound = errors.New("key not found")
	// ErrInconsistent is returned by Verify when the tree and the stores
	// disagree.
	ErrInconsistent = errors.New("tree and resources disagree")
	// ErrIntoAncestor is returned when a duplicate targets an ancestor of
	// its source.
	ErrIntoAncestor = nstree.ErrIntoAncestor
)

// Workspace is the state the engine edits: the open stores and the tree
// projected from their keys.
type Workspace struct {
	Stores []*resource.Store
	Tree   *nstree.Tree
}

// NewWorkspace builds the tree from the stores' keys.
func NewWorkspace(stores []*resource.Store) *Workspace {
	ws := &Workspace{Stores: stores}
	Rebuild(ws)
	return ws
}

// ConfirmFunc decides whether an edit that overwrites values may proceed.
// It is called only for ConflictReplace.
type ConfirmFunc func(ctx context.Context, oldPath, newPath keypath.KeyPath, kind nstree.Conflict) (bool, error)

// AlwaysProceed confirms every overwrite.
func AlwaysProceed(context.Context, keypath.KeyPath, keypath.KeyPath, nstree.Conflict) (bool, error) {
	return true, nil
}

// AlwaysAbort declines every overwrite.
func AlwaysAbort(context.Context, keypath.KeyPath, keypath.KeyPath, nstree.Conflict) (bool, error) {
	return false, nil
}

// Engine carries the confirmation policy and logger shared by all edits.
type Engine struct {
	confirm ConfirmFunc
	log     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfirm sets the policy consulted before Replace edits. A nil
// function keeps the default, which declines.
func WithConfirm(fn ConfirmFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.confirm = fn
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an engine. Without options it declines every Replace edit and
// logs nothing.
func New(opts ...Option) *Engine {
	e := &Engine{
		confirm: AlwaysAbort,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Result describes a rename or duplicate.
type Result struct {
	// Applied is false when the call was a no-op.
	Applied bool
	// Conflict is the classification of the destination before the edit.
	Conflict nstree.Conflict
}

// AddKey stores an empty value under key in every store and adds the key
// to the tree. It is a no-op, returning false, when there are no stores or
// the tree already has a node at key.
func (e *Engine) AddKey(ctx context.Context, ws *Workspace, key keypath.KeyPath) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(ws.Stores) == 0 || ws.Tree.Has(key) {
		return false, nil
	}
	for _, s := range ws.Stores {
		if err := s.CheckAdd(key); err != nil {
			return false, fmt.Errorf("adding %s: %w", key, err)
		}
	}
	for _, s := range ws.Stores {
		s.Set(key, "")
	}
	ws.Tree.Insert(key)
	e.log.Debug("key added", "key", key.String(), "stores", len(ws.Stores))
	return true, nil
}

// RemoveKey removes key and everything below it from every store and from
// the tree. It reports whether anything was removed.
func (e *Engine) RemoveKey(ctx context.Context, ws *Workspace, key keypath.KeyPath) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	removed := 0
	for _, s := range ws.Stores {
		removed += s.RemoveSubtree(key)
	}
	had := ws.Tree.Remove(key)
	e.log.Debug("key removed", "key", key.String(), "entries", removed)
	return had || removed > 0, nil
}

// RenameKey moves the subtree at oldPath to newPath across all stores and
// the tree. A Replace conflict is applied only when the confirmation policy
// agrees; otherwise ErrAborted is returned and nothing changes. Merge
// conflicts proceed without asking, with source values winning over
// destination values at the same key.
func (e *Engine) RenameKey(ctx context.Context, ws *Workspace, oldPath, newPath keypath.KeyPath) (Result, error) {
	return e.transfer(ctx, ws, oldPath, newPath, false)
}

// DuplicateKey copies the subtree at oldPath to newPath, keeping the
// source. Conflicts are handled as in RenameKey. A destination that is an
// ancestor of oldPath is refused with ErrIntoAncestor.
func (e *Engine) DuplicateKey(ctx context.Context, ws *Workspace, oldPath, newPath keypath.KeyPath) (Result, error) {
	return e.transfer(ctx, ws, oldPath, newPath, true)
}

func (e *Engine) transfer(ctx context.Context, ws *Workspace, oldPath, newPath keypath.KeyPath, keepSource bool) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if oldPath.Equal(newPath) || len(ws.Stores) == 0 {
		return Result{}, nil
	}
	if !ws.Tree.Has(oldPath) {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, oldPath)
	}

	op := "rename"
	if keepSource {
		op = "duplicate"
		if newPath.IsAncestorOf(oldPath) {
			return Result{}, fmt.Errorf("%s %s -> %s: %w", op, oldPath, newPath, ErrIntoAncestor)
		}
	}
	kind := ws.Tree.ConflictKind(oldPath, newPath)
	overwrite := kind == nstree.ConflictReplace
	for _, s := range ws.Stores {
		if err := s.CheckTransfer(oldPath, newPath, keepSource, overwrite); err != nil {
			return Result{Conflict: kind}, fmt.Errorf("%s %s -> %s: %w", op, oldPath, newPath, err)
		}
	}
	if kind == nstree.ConflictReplace {
		ok, err := e.confirm(ctx, oldPath, newPath, kind)
		if err != nil {
			return Result{Conflict: kind}, fmt.Errorf("confirming %s %s -> %s: %w", op, oldPath, newPath, err)
		}
		if !ok {
			e.log.Info("edit declined", "op", op, "from", oldPath.String(), "to", newPath.String())
			return Result{Conflict: kind}, fmt.Errorf("%s %s -> %s: %w", op, oldPath, newPath, ErrAborted)
		}
	}
	// Last point at which the edit can still be abandoned cleanly.
	if err := ctx.Err(); err != nil {
		return Result{Conflict: kind}, err
	}

	for _, s := range ws.Stores {
		if keepSource {
			s.DuplicateSubtree(oldPath, newPath, overwrite)
		} else {
			s.RenameSubtree(oldPath, newPath, overwrite)
		}
	}
	var err error
	if keepSource {
		err = ws.Tree.Duplicate(oldPath, newPath)
	} else {
		err = ws.Tree.Rename(oldPath, newPath)
	}
	if err != nil {
		// Unreachable after the checks above; rebuild so the workspace
		// stays consistent with the stores that were already changed.
		Rebuild(ws)
		return Result{Applied: true, Conflict: kind}, err
	}
	e.log.Debug("subtree moved", "op", op, "from", oldPath.String(), "to", newPath.String(), "conflict", kind.String())
	return Result{Applied: true, Conflict: kind}, nil
}

// Rebuild replaces the tree with one built from the union of all store
// keys, in store order.
func Rebuild(ws *Workspace) {
	var keys []keypath.KeyPath
	for _, s := range ws.Stores {
		for k := range s.Entries() {
			// Stores only hold keys that passed validation on load or were
			// set through a KeyPath.
			if p, err := keypath.Parse(k); err == nil {
				keys = append(keys, p)
			}
		}
	}
	ws.Tree = nstree.Build(keys)
}

// Verify checks that the stored keys of the tree equal the union of the
// store keys and that every tree node lies on the path to a stored key.
func Verify(ws *Workspace) error {
	union := make(map[string]bool)
	for _, s := range ws.Stores {
		for k := range s.Entries() {
			union[k] = true
		}
	}
	inTree := make(map[string]bool)
	for _, k := range ws.Tree.Keys() {
		inTree[k.String()] = true
	}

	var problems []string
	for k := range union {
		if !inTree[k] {
			problems = append(problems, "missing from tree: "+k)
		}
	}
	for k := range inTree {
		if !union[k] {
			problems = append(problems, "not in any resource: "+k)
		}
	}
	for n := range ws.Tree.All() {
		if !n.Stored() && n.IsLeaf() {
			problems = append(problems, "dangling node: "+n.Key())
		}
	}
	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return fmt.Errorf("%w: %s", ErrInconsistent, strings.Join(problems, "; "))
}
