// Package tomlfile implements reading and writing of TOML translation files
// (the format used by go-i18n message files and Hugo i18n bundles):
//
//	title = "Welcome"
//
//	[nav]
//	home = "Home"
//	about = "About"
//
// Tables are flattened to dot-joined keys in document order. Numbers,
// booleans and dates are read as their literal text; arrays are rejected.
// Marshal writes tables sorted by key, which keeps output deterministic.
package tomlfile

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// File represents a parsed TOML translation file.
type File struct {
	keys   []string
	values map[string]string
}

// New returns an empty file.
func New() *File {
	return &File{values: make(map[string]string)}
}

// Parse parses TOML data.
func Parse(data []byte) (*File, error) {
	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	f := New()
	for _, key := range md.Keys() {
		v, ok := lookup(doc, key)
		if !ok {
			continue
		}
		path := strings.Join(key, ".")
		switch val := v.(type) {
		case map[string]any:
			// Table header; its members are listed separately.
		case string:
			f.Put(path, val)
		case int64, float64, bool:
			f.Put(path, fmt.Sprint(val))
		case time.Time:
			f.Put(path, val.Format(time.RFC3339))
		case []any, []map[string]any:
			return nil, fmt.Errorf("parsing TOML: %s: arrays are not supported", path)
		default:
			f.Put(path, fmt.Sprint(val))
		}
	}
	return f, nil
}

func lookup(doc map[string]any, key toml.Key) (any, bool) {
	var cur any = doc
	for _, seg := range key {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Keys returns the flattened keys in document order.
func (f *File) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Get returns the value for key.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Put sets key, appending it when new.
func (f *File) Put(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Delete removes key. Returns false if it was not present.
func (f *File) Delete(key string) bool {
	if _, ok := f.values[key]; !ok {
		return false
	}
	delete(f.values, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
	return true
}

// Marshal encodes the file as TOML with nested tables.
func (f *File) Marshal() ([]byte, error) {
	doc := make(map[string]any)
	for _, key := range f.keys {
		segs := strings.Split(key, ".")
		m := doc
		for i, seg := range segs[:len(segs)-1] {
			switch next := m[seg].(type) {
			case nil:
				child := make(map[string]any)
				m[seg] = child
				m = child
			case map[string]any:
				m = next
			default:
				return nil, fmt.Errorf("key %q is both a value and a group", strings.Join(segs[:i+1], "."))
			}
		}
		last := segs[len(segs)-1]
		if _, isTable := m[last].(map[string]any); isTable {
			return nil, fmt.Errorf("key %q is both a value and a group", key)
		}
		m[last] = f.values[key]
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding TOML: %w", err)
	}
	return buf.Bytes(), nil
}
