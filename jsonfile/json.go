// Package jsonfile implements reading and writing of nested JSON translation
// files, the layout used by ember-i18n, i18next namespaces, vue-i18n and
// most JavaScript frameworks:
//
//	{
//	    "nav": {
//	        "home": "Home",
//	        "about": "About"
//	    },
//	    "title": "Welcome"
//	}
//
// Nested objects are flattened to dot-joined keys ("nav.home") in document
// order. Numbers, booleans and null are read as their literal text ("" for
// null); arrays are rejected because they have no key path.
//
// Marshal rebuilds the nested object from the flat keys, preserving key
// order. A key that is both a string and an object ("a" and "a.b") cannot
// be represented and makes Marshal fail.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// File represents a parsed JSON translation file.
type File struct {
	// keys preserves document order.
	keys   []string
	values map[string]string
}

// New returns an empty file.
func New() *File {
	return &File{values: make(map[string]string)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses JSON data. An empty or whitespace-only input is an empty file.
func Parse(data []byte) (*File, error) {
	f := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	// Expect opening '{'.
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing JSON: expected '{', got %v", tok)
	}
	if err := f.parseObject(dec, ""); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("parsing JSON: trailing data after root object")
	}
	return f, nil
}

// parseObject reads members until the closing '}' of the current object.
func (f *File) parseObject(dec *json.Decoder, prefix string) error {
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parsing JSON key: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("parsing JSON: expected string key, got %T", kt)
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		vt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parsing JSON value for %q: %w", path, err)
		}
		switch v := vt.(type) {
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("parsing JSON: %q: arrays are not supported", path)
			}
			if err := f.parseObject(dec, path); err != nil {
				return err
			}
		case string:
			f.Put(path, v)
		case json.Number:
			f.Put(path, v.String())
		case bool:
			f.Put(path, fmt.Sprint(v))
		case nil:
			f.Put(path, "")
		default:
			return fmt.Errorf("parsing JSON: %q: unexpected %T", path, vt)
		}
	}
	// Consume closing '}'.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

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

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// object is an ordered JSON object under construction.
type object struct {
	names    []string
	strings  map[string]string
	children map[string]*object
}

func newObject() *object {
	return &object{strings: make(map[string]string), children: make(map[string]*object)}
}

func (f *File) tree() (*object, error) {
	root := newObject()
	for _, key := range f.keys {
		segs := strings.Split(key, ".")
		o := root
		for i, seg := range segs {
			last := i == len(segs)-1
			if last {
				if _, isObj := o.children[seg]; isObj {
					return nil, fmt.Errorf("key %q is both a value and a group", key)
				}
				if _, seen := o.strings[seg]; !seen {
					o.names = append(o.names, seg)
				}
				o.strings[seg] = f.values[key]
				continue
			}
			if _, isStr := o.strings[seg]; isStr {
				return nil, fmt.Errorf("key %q is both a value and a group", strings.Join(segs[:i+1], "."))
			}
			child, ok := o.children[seg]
			if !ok {
				child = newObject()
				o.children[seg] = child
				o.names = append(o.names, seg)
			}
			o = child
		}
	}
	return root, nil
}

// Marshal produces indented JSON (4 spaces) with a trailing newline.
func (f *File) Marshal() ([]byte, error) {
	return f.marshal("    ")
}

// MarshalCompact produces minified JSON.
func (f *File) MarshalCompact() ([]byte, error) {
	return f.marshal("")
}

func (f *File) marshal(indent string) ([]byte, error) {
	root, err := f.tree()
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := writeObject(&b, root, indent, 0); err != nil {
		return nil, err
	}
	if indent != "" {
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

func writeObject(b *bytes.Buffer, o *object, indent string, depth int) error {
	if len(o.names) == 0 {
		b.WriteString("{}")
		return nil
	}
	b.WriteByte('{')
	for i, name := range o.names {
		if i > 0 {
			b.WriteByte(',')
		}
		newline(b, indent, depth+1)
		if err := writeString(b, name); err != nil {
			return err
		}
		b.WriteByte(':')
		if indent != "" {
			b.WriteByte(' ')
		}
		if child, ok := o.children[name]; ok {
			if err := writeObject(b, child, indent, depth+1); err != nil {
				return err
			}
			continue
		}
		if err := writeString(b, o.strings[name]); err != nil {
			return err
		}
	}
	newline(b, indent, depth)
	b.WriteByte('}')
	return nil
}

func newline(b *bytes.Buffer, indent string, depth int) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indent, depth))
}

// writeString writes a JSON string without HTML escaping so that
// translations containing markup stay readable.
func writeString(b *bytes.Buffer, s string) error {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder appends a newline.
	b.Truncate(b.Len() - 1)
	return nil
}
