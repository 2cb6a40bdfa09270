// Package resource holds one locale's translations as an ordered flat
// key/value mapping backed by a file on a billy.Filesystem.
//
// A Store does not know about the key hierarchy; it treats keys as opaque
// strings, and prefix operations compare whole dot-separated segments.
package resource

import (
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/minios-linux/i18nedit/keypath"
	"github.com/minios-linux/i18nedit/locale"
)

// Store is the in-memory content of one resource file.
type Store struct {
	fs     billy.Filesystem
	path   string
	locale locale.Locale
	codec  Codec
	log    *slog.Logger

	entries *orderedmap.OrderedMap[string, string]
	// doc is the last document loaded or saved; re-used on save so the
	// codec can keep comments and layout details.
	doc Document
	// skipped holds keys present in the file that are not valid key paths.
	skipped []string
	dirty   bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns an empty store for the file at name on fs. The file is not
// touched until Load or Save.
func New(fs billy.Filesystem, name string, loc locale.Locale, format Format, opts ...Option) (*Store, error) {
	c, ok := Lookup(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	s := &Store{
		fs:      fs,
		path:    name,
		locale:  loc,
		codec:   c,
		log:     slog.New(slog.DiscardHandler),
		entries: orderedmap.New[string, string](),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Path returns the file name relative to the store's filesystem.
func (s *Store) Path() string { return s.path }

// Locale returns the store's locale.
func (s *Store) Locale() locale.Locale { return s.locale }

// Format returns the codec format of the file.
func (s *Store) Format() Format { return s.codec.Format() }

// Nested reports whether the file format nests keys. See Codec.Nested.
func (s *Store) Nested() bool { return s.codec.Nested() }

// Dirty reports whether the store was changed since the last Load or Save.
func (s *Store) Dirty() bool { return s.dirty }

// MarkClean clears the dirty flag without saving.
func (s *Store) MarkClean() { s.dirty = false }

// Skipped returns keys from the file that were ignored because they are not
// valid key paths. They are written back unchanged on save.
func (s *Store) Skipped() []string { return append([]string(nil), s.skipped...) }

// Len returns the number of entries.
func (s *Store) Len() int { return s.entries.Len() }

// Keys returns all keys in store order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, s.entries.Len())
	for p := s.entries.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Entries iterates over key/value pairs in store order. The store must not
// be modified during iteration.
func (s *Store) Entries() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for p := s.entries.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Stats returns the number of entries and how many have a non-empty value.
func (s *Store) Stats() (total, translated int) {
	for _, v := range s.Entries() {
		total++
		if v != "" {
			translated++
		}
	}
	return total, translated
}

// Get returns the value stored under key.
func (s *Store) Get(key keypath.KeyPath) (string, bool) {
	return s.entries.Get(key.String())
}

// Set stores value under key, appending the key when it is new.
func (s *Store) Set(key keypath.KeyPath, value string) {
	s.entries.Set(key.String(), value)
	s.dirty = true
}

// Remove deletes key. It reports whether the key was present.
func (s *Store) Remove(key keypath.KeyPath) bool {
	if _, ok := s.entries.Delete(key.String()); !ok {
		return false
	}
	s.dirty = true
	return true
}

// RemoveSubtree deletes key and every key below it, returning the number of
// entries removed.
func (s *Store) RemoveSubtree(prefix keypath.KeyPath) int {
	return s.removePrefix(prefix.String())
}

func (s *Store) removePrefix(prefix string) int {
	var doomed []string
	for k := range s.Entries() {
		if keypath.IsPrefixString(prefix, k) {
			doomed = append(doomed, k)
		}
	}
	for _, k := range doomed {
		s.entries.Delete(k)
	}
	if len(doomed) > 0 {
		s.dirty = true
	}
	return len(doomed)
}

// RenameSubtree moves every entry at or below oldPrefix under newPrefix.
// With overwrite set, entries at or below newPrefix are dropped first, even
// when this store has nothing under oldPrefix. It returns the number of
// entries written.
func (s *Store) RenameSubtree(oldPrefix, newPrefix keypath.KeyPath, overwrite bool) int {
	return s.transfer(oldPrefix.String(), newPrefix.String(), false, overwrite)
}

// DuplicateSubtree copies every entry at or below oldPrefix under newPrefix.
// Overwrite behaves as in RenameSubtree.
func (s *Store) DuplicateSubtree(oldPrefix, newPrefix keypath.KeyPath, overwrite bool) int {
	return s.transfer(oldPrefix.String(), newPrefix.String(), true, overwrite)
}

// CheckAdd returns a *ShapeError when storing key would make it both a
// value and a group in a nested file. Flat formats accept every key.
func (s *Store) CheckAdd(key keypath.KeyPath) error {
	if !s.codec.Nested() {
		return nil
	}
	k := key.String()
	for _, a := range key.Ancestors() {
		if _, ok := s.entries.Get(a.String()); ok {
			return &ShapeError{Path: s.path, Key: a.String()}
		}
	}
	for other := range s.Entries() {
		if other != k && keypath.IsPrefixString(k, other) {
			return &ShapeError{Path: s.path, Key: k}
		}
	}
	return nil
}

// CheckTransfer returns a *ShapeError when RenameSubtree (keepSource false)
// or DuplicateSubtree (keepSource true) with the same arguments would make
// some key both a value and a group in a nested file. The store is not
// changed.
func (s *Store) CheckTransfer(oldPrefix, newPrefix keypath.KeyPath, keepSource, overwrite bool) error {
	if !s.codec.Nested() {
		return nil
	}
	from, to := oldPrefix.String(), newPrefix.String()
	result := make(map[string]bool, s.entries.Len())
	var moved []string
	for k := range s.Entries() {
		if keypath.IsPrefixString(from, k) {
			moved = append(moved, to+k[len(from):])
			if !keepSource {
				continue
			}
		}
		if overwrite && keypath.IsPrefixString(to, k) {
			continue
		}
		result[k] = true
	}
	if len(moved) == 0 {
		return nil
	}
	for _, k := range moved {
		result[k] = true
	}
	for k := range result {
		p, err := keypath.Parse(k)
		if err != nil {
			continue
		}
		for _, a := range p.Ancestors() {
			if result[a.String()] {
				return &ShapeError{Path: s.path, Key: a.String()}
			}
		}
	}
	return nil
}

type entry struct{ key, value string }

func (s *Store) transfer(from, to string, keepSource, overwrite bool) int {
	var moved []entry
	for k, v := range s.Entries() {
		if keypath.IsPrefixString(from, k) {
			moved = append(moved, entry{key: to + k[len(from):], value: v})
		}
	}
	if !keepSource {
		s.removePrefix(from)
	}
	if overwrite {
		s.removePrefix(to)
	}
	for _, e := range moved {
		s.entries.Set(e.key, e.value)
	}
	if len(moved) > 0 {
		s.dirty = true
	}
	return len(moved)
}

// Load replaces the store content with the file content. On failure the
// store is left unchanged and a *ReadError is returned.
func (s *Store) Load() error {
	data, err := util.ReadFile(s.fs, s.path)
	if err != nil {
		return &ReadError{Path: s.path, Err: err}
	}
	doc, err := s.codec.Decode(data, s.locale)
	if err != nil {
		return &ReadError{Path: s.path, Err: err}
	}

	entries := orderedmap.New[string, string]()
	var skipped []string
	for _, k := range doc.Keys() {
		if !keypath.Valid(k) {
			s.log.Warn("skipping invalid key", "file", s.path, "key", k)
			skipped = append(skipped, k)
			continue
		}
		v, _ := doc.Get(k)
		entries.Set(k, v)
	}

	s.entries = entries
	s.doc = doc
	s.skipped = skipped
	s.dirty = false
	return nil
}

// Save writes the store to its file, creating parent directories as needed.
// On failure a *WriteError is returned and the store stays dirty.
func (s *Store) Save(opts MarshalOptions) error {
	doc := s.doc
	if doc == nil {
		doc = s.codec.New(s.locale)
	}
	for _, k := range doc.Keys() {
		if _, ok := s.entries.Get(k); !ok && keypath.Valid(k) {
			doc.Delete(k)
		}
	}
	for k, v := range s.Entries() {
		doc.Put(k, v)
	}

	data, err := doc.Marshal(opts)
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return &WriteError{Path: s.path, Err: err}
		}
	}
	if err := util.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	s.doc = doc
	s.dirty = false
	return nil
}
