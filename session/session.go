// Package session owns the resources of one imported directory and the
// namespace tree built from them, and is the entry point for every edit.
//
// A Session is not safe for concurrent use. Edits are expected to arrive
// one at a time from a single caller.
package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"

	billy "github.com/go-git/go-billy/v5"
	"github.com/google/uuid"

	"github.com/minios-linux/i18nedit/config"
	"github.com/minios-linux/i18nedit/engine"
	"github.com/minios-linux/i18nedit/keypath"
	"github.com/minios-linux/i18nedit/locale"
	"github.com/minios-linux/i18nedit/nstree"
	"github.com/minios-linux/i18nedit/resource"
)

var (
	// ErrNoProject is returned by operations that need an imported
	// directory when none is open.
	ErrNoProject = errors.New("no resource directory is open")
	// ErrNotEditable is returned by SetValue for keys that are not leaves
	// of the tree.
	ErrNotEditable = errors.New("key has no editable value")
	// ErrLocaleExists is returned by AddLocale for a locale that already
	// has a resource.
	ErrLocaleExists = errors.New("locale already exists")
	// ErrUnknownLocale is returned when no open resource has the locale.
	ErrUnknownLocale = errors.New("no resource for locale")
	// ErrUnsaved is returned by Close when there are unsaved changes.
	ErrUnsaved = errors.New("session has unsaved changes")
)

// Session is an editing session over one resource directory.
type Session struct {
	id      string
	fs      billy.Filesystem
	log     *slog.Logger
	eng     *engine.Engine
	confirm engine.ConfirmFunc

	project *config.Project
	ws      *engine.Workspace
	dirty   bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostics logger. Every record carries the session
// id.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConfirm sets the policy consulted before edits that overwrite
// values. The default declines them.
func WithConfirm(fn engine.ConfirmFunc) Option {
	return func(s *Session) { s.confirm = fn }
}

// New returns an empty session reading and writing resources on fs.
func New(fs billy.Filesystem, opts ...Option) *Session {
	s := &Session{
		id:  uuid.NewString(),
		fs:  fs,
		log: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("session", s.id)
	s.eng = engine.New(engine.WithConfirm(s.confirm), engine.WithLogger(s.log))
	s.ws = engine.NewWorkspace(nil)
	return s
}

// Open returns a session with dir imported.
func Open(ctx context.Context, fs billy.Filesystem, dir string, opts ...Option) (*Session, *ImportReport, error) {
	s := New(fs, opts...)
	report, err := s.Import(ctx, dir)
	if err != nil {
		return nil, nil, err
	}
	return s, report, nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// ---------------------------------------------------------------------------
// Import / reload / reset
// ---------------------------------------------------------------------------

// ImportReport describes the outcome of an import.
type ImportReport struct {
	Dir string
	// Loaded lists the resource files that were opened.
	Loaded []string
	// Failures holds one error per resource that could not be read. Those
	// resources are not part of the session.
	Failures []*resource.ReadError
	// Skipped lists files that looked like resources but were not
	// imported (see config.Project.Skipped).
	Skipped []string
	// InvalidKeys maps a resource path to the keys it holds that are not
	// valid key paths; they are kept in the file but not shown.
	InvalidKeys map[string][]string
}

// Err joins the per-resource failures, or returns nil.
func (r *ImportReport) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Import replaces the session content with the resources found in dir.
// A resource that fails to load is reported in ImportReport.Failures and
// left out; the others are imported. An error is returned only when dir
// itself cannot be inspected, in which case the session is unchanged.
func (s *Session) Import(ctx context.Context, dir string) (*ImportReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	project, err := config.Detect(s.fs, dir)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Dir: dir, Skipped: project.Skipped}
	var stores []*resource.Store
	for _, r := range project.Resources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		store, err := resource.New(s.fs, r.Path, r.Locale, r.Format, resource.WithLogger(s.log))
		if err != nil {
			report.Failures = append(report.Failures, &resource.ReadError{Path: r.Path, Err: err})
			continue
		}
		if err := store.Load(); err != nil {
			var re *resource.ReadError
			if !errors.As(err, &re) {
				re = &resource.ReadError{Path: r.Path, Err: err}
			}
			s.log.Warn("resource skipped", "file", r.Path, "error", err)
			report.Failures = append(report.Failures, re)
			continue
		}
		if bad := store.Skipped(); len(bad) > 0 {
			if report.InvalidKeys == nil {
				report.InvalidKeys = make(map[string][]string)
			}
			report.InvalidKeys[r.Path] = bad
		}
		report.Loaded = append(report.Loaded, r.Path)
		stores = append(stores, store)
	}

	s.project = project
	s.ws = engine.NewWorkspace(stores)
	s.dirty = false
	s.log.Info("resources imported", "dir", dir, "loaded", len(report.Loaded), "failed", len(report.Failures))
	return report, nil
}

// Reload imports the current directory again, discarding unsaved changes.
func (s *Session) Reload(ctx context.Context) (*ImportReport, error) {
	if s.project == nil {
		return nil, ErrNoProject
	}
	return s.Import(ctx, s.project.Dir)
}

// Reset drops every resource and the tree.
func (s *Session) Reset() {
	s.project = nil
	s.ws = engine.NewWorkspace(nil)
	s.dirty = false
}

// Close ends the session. It refuses with ErrUnsaved while there are
// unsaved changes; callers save first or call Reset to discard them.
func (s *Session) Close() error {
	if s.dirty {
		return ErrUnsaved
	}
	s.Reset()
	return nil
}

// ---------------------------------------------------------------------------
// Structural edits
// ---------------------------------------------------------------------------

// AddKey adds key with an empty value to every resource. It reports false
// when the key already has a node or no resource is open.
func (s *Session) AddKey(ctx context.Context, key keypath.KeyPath) (bool, error) {
	ok, err := s.eng.AddKey(ctx, s.ws, key)
	if ok {
		s.dirty = true
	}
	return ok, err
}

// RemoveKey removes key and its subtree from every resource.
func (s *Session) RemoveKey(ctx context.Context, key keypath.KeyPath) (bool, error) {
	ok, err := s.eng.RemoveKey(ctx, s.ws, key)
	if ok {
		s.dirty = true
	}
	return ok, err
}

// RenameKey moves the subtree at oldPath to newPath in every resource.
func (s *Session) RenameKey(ctx context.Context, oldPath, newPath keypath.KeyPath) (engine.Result, error) {
	res, err := s.eng.RenameKey(ctx, s.ws, oldPath, newPath)
	if res.Applied {
		s.dirty = true
	}
	return res, err
}

// DuplicateKey copies the subtree at oldPath to newPath in every resource.
func (s *Session) DuplicateKey(ctx context.Context, oldPath, newPath keypath.KeyPath) (engine.Result, error) {
	res, err := s.eng.DuplicateKey(ctx, s.ws, oldPath, newPath)
	if res.Applied {
		s.dirty = true
	}
	return res, err
}

// SetValue sets the translation of key for the resource of localeID. The
// key must be a leaf of the tree.
func (s *Session) SetValue(key keypath.KeyPath, localeID, value string) error {
	n, ok := s.ws.Tree.Find(key)
	if !ok || !n.IsLeaf() {
		return fmt.Errorf("%w: %s", ErrNotEditable, key)
	}
	store, ok := s.Store(localeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocale, localeID)
	}
	if cur, ok := store.Get(key); ok && cur == value {
		return nil
	}
	store.Set(key, value)
	s.dirty = true
	return nil
}

// AddLocale creates a resource for id in the project layout, holding every
// key of the tree with an empty value, and writes it immediately. An empty
// format uses the project's format.
func (s *Session) AddLocale(id string, format resource.Format, opts resource.MarshalOptions) (*resource.Store, error) {
	if s.project == nil {
		return nil, ErrNoProject
	}
	loc, err := locale.Parse(id)
	if err != nil {
		return nil, err
	}
	if _, ok := s.Store(loc.ID); ok {
		return nil, fmt.Errorf("%w: %s", ErrLocaleExists, loc.ID)
	}
	if format == "" {
		format = s.project.Format
	}
	path, err := s.project.PathFor(loc, format)
	if err != nil {
		return nil, err
	}
	if _, err := s.fs.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrLocaleExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &resource.WriteError{Path: path, Err: err}
	}

	store, err := resource.New(s.fs, path, loc, format, resource.WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	for _, k := range s.ws.Tree.Keys() {
		store.Set(k, "")
	}
	if err := store.Save(opts); err != nil {
		return nil, err
	}

	s.ws.Stores = append(s.ws.Stores, store)
	s.project.Resources = append(s.project.Resources, config.Resource{Locale: loc, Path: path, Format: format})
	if s.project.Structure == config.StructureUnknown {
		s.project.Structure = config.StructureNested
	}
	s.log.Info("locale added", "locale", loc.ID, "file", path)
	return store, nil
}

// ---------------------------------------------------------------------------
// Saving
// ---------------------------------------------------------------------------

// Save writes every changed resource. Each failure is returned as a
// *resource.WriteError inside a joined error and does not stop the other
// resources from being written. The session stays dirty unless every
// resource was saved.
func (s *Session) Save(opts resource.MarshalOptions) error {
	var errs []error
	for _, store := range s.ws.Stores {
		if !store.Dirty() {
			continue
		}
		if err := store.Save(opts); err != nil {
			s.log.Error("resource not saved", "file", store.Path(), "error", err)
			errs = append(errs, err)
		}
	}
	s.dirty = len(errs) > 0
	return errors.Join(errs...)
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Project returns the detected project, or nil before the first import.
func (s *Session) Project() *config.Project { return s.project }

// Stores returns the open resources in project order.
func (s *Session) Stores() []*resource.Store { return s.ws.Stores }

// Store returns the resource for localeID. Ids are compared as locales, so
// "pt-BR" finds "pt_BR".
func (s *Session) Store(localeID string) (*resource.Store, bool) {
	want, err := locale.Parse(localeID)
	if err != nil {
		return nil, false
	}
	for _, store := range s.ws.Stores {
		if store.Locale().Equal(want) {
			return store, true
		}
	}
	return nil, false
}

// Tree returns the namespace tree.
func (s *Session) Tree() *nstree.Tree { return s.ws.Tree }

// Find returns the tree node for raw. Malformed keys are never found.
func (s *Session) Find(raw string) (nstree.Node, bool) {
	key, err := keypath.Parse(raw)
	if err != nil {
		return nstree.Node{}, false
	}
	return s.ws.Tree.Find(key)
}

// Walk yields every tree node depth-first.
func (s *Session) Walk() iter.Seq[nstree.Node] { return s.ws.Tree.All() }

// LocaleValue is the value of one key in one resource.
type LocaleValue struct {
	Locale  locale.Locale
	Value   string
	Present bool
}

// Values returns the value of key in every resource, in store order.
func (s *Session) Values(key keypath.KeyPath) []LocaleValue {
	out := make([]LocaleValue, len(s.ws.Stores))
	for i, store := range s.ws.Stores {
		v, ok := store.Get(key)
		out[i] = LocaleValue{Locale: store.Locale(), Value: v, Present: ok}
	}
	return out
}

// Verify checks that the tree matches the union of the resource keys.
func (s *Session) Verify() error { return engine.Verify(s.ws) }
