// Package propfile implements reading and writing of Java .properties files.
//
// Format: key=value pairs, one per line. Lines starting with '#' or '!' are
// comments and are preserved verbatim in the output. Blank lines are also
// preserved. A value ending in an odd number of backslashes continues on the
// next line; continuation lines are joined with their leading whitespace
// stripped.
//
// Keys are stored flat; dotted keys such as "nav.home" are the hierarchy
// the editor derives its tree from.
//
// The File type maintains the original line order so that round-trip
// serialization reproduces the source structure. Keys added with Put are
// appended after the last entry.
package propfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// lineKind classifies each line in the file.
type lineKind int

const (
	lineBlank   lineKind = iota // blank / whitespace-only line
	lineComment                 // comment line (starts with # or !)
	lineEntry                   // key=value pair
)

// line is a single logical line in the properties file.
type line struct {
	kind  lineKind
	raw   string // original text (comment/blank)
	key   string // only for lineEntry
	value string // only for lineEntry, unescaped
}

// File represents a parsed .properties file.
type File struct {
	// lines stores all lines in document order.
	lines []line
	// index maps key → index in lines for fast lookup.
	index map[string]int
}

// New returns an empty file.
func New() *File {
	return &File{index: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses .properties content from a byte slice.
func Parse(data []byte) (*File, error) {
	f := New()

	text := string(data)
	// Normalise Windows line endings.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	rawLines := strings.Split(text, "\n")

	// Drop trailing empty element from a file that ends with \n.
	if len(rawLines) > 0 && rawLines[len(rawLines)-1] == "" {
		rawLines = rawLines[:len(rawLines)-1]
	}

	for i := 0; i < len(rawLines); i++ {
		raw := rawLines[i]
		trimmed := strings.TrimSpace(raw)

		switch {
		case trimmed == "":
			f.lines = append(f.lines, line{kind: lineBlank, raw: raw})

		case strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!"):
			f.lines = append(f.lines, line{kind: lineComment, raw: raw})

		default:
			logical := trimmed
			for continues(logical) && i+1 < len(rawLines) {
				i++
				logical = logical[:len(logical)-1] + strings.TrimLeft(rawLines[i], " \t\f")
			}
			k, v := splitKeyValue(logical)
			if k == "" {
				// Malformed line: keep it as a comment.
				f.lines = append(f.lines, line{kind: lineComment, raw: raw})
				continue
			}
			value, err := unescape(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: key %q: %w", i+1, k, err)
			}
			if idx, exists := f.index[k]; exists {
				// Duplicate key: overwrite value but keep position.
				f.lines[idx].value = value
				continue
			}
			f.index[k] = len(f.lines)
			f.lines = append(f.lines, line{kind: lineEntry, key: k, value: value})
		}
	}

	return f, nil
}

// continues reports whether s ends with an unescaped backslash.
func continues(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// splitKeyValue splits "key = value" or "key=value" into key and value.
// The separator may be '=' or ':'. Surrounding whitespace is stripped.
func splitKeyValue(s string) (key, value string) {
	for i, ch := range s {
		if ch == '=' || ch == ':' {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
		}
	}
	// No separator: the whole line is a key with an empty value.
	return strings.TrimSpace(s), ""
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+5 > len(s) {
				return "", fmt.Errorf("truncated \\u escape")
			}
			r, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\u escape %q", s[i-1:i+5])
			}
			b.WriteRune(rune(r))
			i += 4
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

func escape(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case ' ':
			// Leading spaces would be stripped on parse.
			if i == 0 {
				b.WriteString(`\ `)
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Keys returns all translation keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.index))
	for _, ln := range f.lines {
		if ln.kind == lineEntry {
			keys = append(keys, ln.key)
		}
	}
	return keys
}

// Get returns the value for key and whether it was found.
func (f *File) Get(key string) (string, bool) {
	if idx, ok := f.index[key]; ok {
		return f.lines[idx].value, true
	}
	return "", false
}

// Set sets the value for an existing key. Returns true on success,
// false if the key does not exist.
func (f *File) Set(key, value string) bool {
	idx, ok := f.index[key]
	if !ok {
		return false
	}
	f.lines[idx].value = value
	return true
}

// Put sets the value for key, appending a new entry after the last
// existing one when the key is not present.
func (f *File) Put(key, value string) {
	if f.Set(key, value) {
		return
	}
	at := len(f.lines)
	for i := len(f.lines) - 1; i >= 0; i-- {
		if f.lines[i].kind == lineEntry {
			at = i + 1
			break
		}
	}
	f.lines = append(f.lines, line{})
	copy(f.lines[at+1:], f.lines[at:])
	f.lines[at] = line{kind: lineEntry, key: key, value: value}
	f.reindex()
}

// Delete removes key. Returns false if it was not present.
func (f *File) Delete(key string) bool {
	idx, ok := f.index[key]
	if !ok {
		return false
	}
	f.lines = append(f.lines[:idx], f.lines[idx+1:]...)
	f.reindex()
	return true
}

func (f *File) reindex() {
	clear(f.index)
	for i, ln := range f.lines {
		if ln.kind == lineEntry {
			f.index[ln.key] = i
		}
	}
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises the file back to .properties format.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	for _, ln := range f.lines {
		switch ln.kind {
		case lineBlank:
			buf.WriteByte('\n')
		case lineComment:
			buf.WriteString(ln.raw)
			buf.WriteByte('\n')
		case lineEntry:
			buf.WriteString(ln.key)
			buf.WriteByte('=')
			buf.WriteString(escape(ln.value))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
