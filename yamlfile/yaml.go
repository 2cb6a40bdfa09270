// Package yamlfile implements reading and writing of YAML translation files.
//
// The expected file format is a nested YAML map with scalar leaf values:
//
//	greeting: Hello
//	nav:
//	  home: Home
//	  about: About
//
// Rails i18n style (locale as the top-level key) is also supported:
//
//	en:
//	  greeting: Hello
//	  nav:
//	    home: Home
//
// Leaves are flattened to dot-joined keys. Non-string scalars are read as
// their literal text and written back as strings; sequences are rejected.
// Scalar styles and the Rails locale key are preserved on round-trip, and
// key order follows the order of the flattened entries.
package yamlfile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// Entry represents a single translatable leaf value.
type Entry struct {
	// Path is the dot-joined key path (e.g. "nav.home").
	Path string
	// Value is the current translation (empty = untranslated).
	Value string
	// Style is the original yaml scalar style for round-trip fidelity.
	Style yaml.Style
}

// File represents a parsed YAML translation file.
type File struct {
	// entries stores all leaf entries in document order.
	entries []Entry
	// index maps path → index in entries.
	index map[string]int
	// rootLocaleKey is set when the file uses Rails i18n style (e.g. "en:").
	// The actual translations live one level deeper.
	rootLocaleKey string
}

// New returns an empty file.
func New() *File {
	return &File{index: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses YAML data into a File. A single top-level key shaped like a
// two-letter language code ("en", "pt-BR") is taken as a Rails locale key.
func Parse(data []byte) (*File, error) {
	return ParseLocale(data, "")
}

// ParseLocale is like Parse but only treats the top-level key as a Rails
// locale key when it names locale (compared case-insensitively, with '_'
// and '-' equivalent).
func ParseLocale(data []byte, locale string) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	f := New()

	// yaml.Unmarshal wraps the document in a DocumentNode.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return f, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("YAML root must be a mapping, got kind %d", root.Kind)
	}

	// Detect Rails i18n style: single top-level key whose value is a mapping.
	if len(root.Content) == 2 {
		keyNode := root.Content[0]
		valNode := root.Content[1]
		if keyNode.Kind == yaml.ScalarNode && valNode.Kind == yaml.MappingNode && isLocaleKey(keyNode.Value, locale) {
			f.rootLocaleKey = keyNode.Value
			return f, collectEntries(valNode, "", f)
		}
	}

	return f, collectEntries(root, "", f)
}

func isLocaleKey(s, locale string) bool {
	norm := func(v string) string { return strings.ToLower(strings.ReplaceAll(v, "_", "-")) }
	if locale != "" {
		return norm(s) == norm(locale)
	}
	base, _, _ := strings.Cut(norm(s), "-")
	if len(base) != 2 {
		return false
	}
	for _, r := range base {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// collectEntries recursively walks a mapping node and appends leaf entries.
func collectEntries(node *yaml.Node, prefix string, f *File) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		path := keyNode.Value
		if prefix != "" {
			path = prefix + "." + keyNode.Value
		}

		switch valNode.Kind {
		case yaml.MappingNode:
			if err := collectEntries(valNode, path, f); err != nil {
				return err
			}
		case yaml.ScalarNode:
			value := valNode.Value
			if valNode.Tag == "!!null" {
				value = ""
			}
			f.put(path, value, valNode.Style)
		case yaml.AliasNode:
			if valNode.Alias != nil && valNode.Alias.Kind == yaml.ScalarNode {
				f.put(path, valNode.Alias.Value, valNode.Alias.Style)
				continue
			}
			return fmt.Errorf("%s: aliases to collections are not supported", path)
		default:
			return fmt.Errorf("%s: sequences are not supported", path)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Querying
// ---------------------------------------------------------------------------

// Keys returns all entry paths in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.entries))
	for i, e := range f.entries {
		keys[i] = e.Path
	}
	return keys
}

// Get returns the current value for the given path.
func (f *File) Get(path string) (string, bool) {
	idx, ok := f.index[path]
	if !ok {
		return "", false
	}
	return f.entries[idx].Value, true
}

// Put sets the value for path, appending a new entry when it is missing.
func (f *File) Put(path, value string) {
	f.put(path, value, 0)
}

func (f *File) put(path, value string, style yaml.Style) {
	if idx, ok := f.index[path]; ok {
		f.entries[idx].Value = value
		return
	}
	f.index[path] = len(f.entries)
	f.entries = append(f.entries, Entry{Path: path, Value: value, Style: style})
}

// Delete removes the entry at path. Returns false if it was not present.
func (f *File) Delete(path string) bool {
	idx, ok := f.index[path]
	if !ok {
		return false
	}
	f.entries = append(f.entries[:idx], f.entries[idx+1:]...)
	clear(f.index)
	for i, e := range f.entries {
		f.index[e.Path] = i
	}
	return true
}

// RootLocaleKey returns the Rails-style top-level locale key, if any.
func (f *File) RootLocaleKey() string { return f.rootLocaleKey }

// SetRootLocaleKey switches the file to Rails style under locale. An empty
// locale writes the plain nested layout.
func (f *File) SetRootLocaleKey(locale string) { f.rootLocaleKey = locale }

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal rebuilds the nested YAML document from the entries.
func (f *File) Marshal() ([]byte, error) {
	body := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range f.entries {
		if err := insertEntry(body, e); err != nil {
			return nil, err
		}
	}

	root := body
	if f.rootLocaleKey != "" {
		root = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.rootLocaleKey},
			body,
		}}
	}
	if len(root.Content) == 0 {
		return []byte("{}\n"), nil
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return yaml.Marshal(doc)
}

func insertEntry(m *yaml.Node, e Entry) error {
	segs := strings.Split(e.Path, ".")
	for i, seg := range segs {
		last := i == len(segs)-1
		val := lookup(m, seg)
		switch {
		case last && val == nil:
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: seg},
				scalar(e))
		case last:
			return fmt.Errorf("key %q is both a value and a group", e.Path)
		case val == nil:
			child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: seg},
				child)
			m = child
		case val.Kind != yaml.MappingNode:
			return fmt.Errorf("key %q is both a value and a group", strings.Join(segs[:i+1], "."))
		default:
			m = val
		}
	}
	return nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// scalar builds a string node, forcing quotes where a plain scalar would
// be read back as something other than the same string.
func scalar(e Entry) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value, Style: e.Style}
	if n.Style == 0 && needsQuoting(e.Value) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func needsQuoting(v string) bool {
	if v == "" {
		return true
	}
	var probe any
	if err := yaml.Unmarshal([]byte(v), &probe); err != nil {
		return true
	}
	s, ok := probe.(string)
	return !ok || s != v
}
