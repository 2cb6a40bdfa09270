// Package android reads and writes Android strings.xml resource files.
//
// Only translatable <string> resources are exposed as keys. Everything else
// in <resources> (string-arrays, plurals, translatable="false" strings and
// unknown elements) is kept as raw XML and written back in place. Comments
// between resources are preserved.
package android

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// EntryKind identifies the type of an entry.
type EntryKind int

const (
	// KindString is a translatable <string> resource.
	KindString EntryKind = iota
	// KindRaw is any other element, kept verbatim.
	KindRaw
	// KindComment is an XML comment.
	KindComment
)

// Entry is one item of the <resources> element.
type Entry struct {
	Kind EntryKind

	// Name is the resource name; empty for comments.
	Name string
	// Value is the text of a string resource with apostrophes unescaped.
	Value string
	// UseCDATA is set when the value was wrapped in <![CDATA[...]]>.
	UseCDATA bool

	// Raw is the verbatim XML of a KindRaw entry.
	Raw string
	// Comment is the comment text without <!-- -->.
	Comment string
}

// File is a parsed strings.xml file.
type File struct {
	Entries []*Entry
	byName  map[string]int
}

// New returns an empty file.
func New() *File {
	return &File{byName: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// encoding/xml reports CDATA as plain character data, so string resources
// wrapped in CDATA are found beforehand.
var reStringCDATA = regexp.MustCompile(`<string\s[^>]*name="([^"]+)"[^>]*>\s*<!\[CDATA\[`)

// Parse parses strings.xml data. A document without a <resources> root
// element is an error.
func Parse(data []byte) (*File, error) {
	f := New()

	cdata := make(map[string]bool)
	for _, m := range reStringCDATA.FindAllSubmatch(data, -1) {
		cdata[string(m[1])] = true
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	seenRoot, inResources := false, false
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inResources {
				if t.Name.Local != "resources" || seenRoot {
					return nil, fmt.Errorf("unexpected element <%s>, want <resources>", t.Name.Local)
				}
				seenRoot, inResources = true, true
				continue
			}
			name, translatable := parseAttrs(t)
			if t.Name.Local == "string" && translatable && name != "" {
				var inner strings.Builder
				if err := readElementContent(dec, &inner); err != nil {
					return nil, fmt.Errorf("reading <string name=%q>: %w", name, err)
				}
				f.addEntry(&Entry{Kind: KindString, Name: name, Value: inner.String(), UseCDATA: cdata[name]})
				continue
			}
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("reading <%s name=%q>: %w", t.Name.Local, name, err)
			}
			raw := string(data[offset:dec.InputOffset()])
			f.Entries = append(f.Entries, &Entry{Kind: KindRaw, Name: name, Raw: raw})

		case xml.Comment:
			if inResources {
				if c := strings.TrimSpace(string(t)); c != "" {
					f.Entries = append(f.Entries, &Entry{Kind: KindComment, Comment: c})
				}
			}

		case xml.EndElement:
			if t.Name.Local == "resources" {
				inResources = false
			}
		}
	}
	if !seenRoot {
		return nil, errors.New("missing <resources> element")
	}
	return f, nil
}

func (f *File) addEntry(e *Entry) {
	f.byName[e.Name] = len(f.Entries)
	f.Entries = append(f.Entries, e)
}

func (f *File) reindex() {
	clear(f.byName)
	for i, e := range f.Entries {
		if e.Kind == KindString {
			f.byName[e.Name] = i
		}
	}
}

// parseAttrs extracts name and translatable from a start element.
func parseAttrs(elem xml.StartElement) (name string, translatable bool) {
	translatable = true
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "name":
			name = attr.Value
		case "translatable":
			if strings.EqualFold(attr.Value, "false") {
				translatable = false
			}
		}
	}
	return
}

// readElementContent reads the inner content of an element up to its close
// tag. Inline markup such as <xliff:g> or <b> is kept as text.
func readElementContent(dec *xml.Decoder, b *strings.Builder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.WriteString(unescapeApostrophe(string(t)))
		case xml.StartElement:
			depth++
			b.WriteString("<")
			if t.Name.Space != "" {
				b.WriteString(t.Name.Space)
				b.WriteString(":")
			}
			b.WriteString(t.Name.Local)
			for _, attr := range t.Attr {
				fmt.Fprintf(b, ` %s="%s"`, attr.Name.Local, attr.Value)
			}
			b.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				b.WriteString("</")
				if t.Name.Space != "" {
					b.WriteString(t.Name.Space)
					b.WriteString(":")
				}
				b.WriteString(t.Name.Local)
				b.WriteString(">")
			}
		}
	}
	return nil
}

func unescapeApostrophe(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Keys returns the names of the translatable strings in document order.
func (f *File) Keys() []string {
	var keys []string
	for _, e := range f.Entries {
		if e.Kind == KindString {
			keys = append(keys, e.Name)
		}
	}
	return keys
}

// Get returns the value of a translatable string.
func (f *File) Get(name string) (string, bool) {
	idx, ok := f.byName[name]
	if !ok {
		return "", false
	}
	return f.Entries[idx].Value, true
}

// Put sets a string value, appending a new <string> when name is absent.
func (f *File) Put(name, value string) {
	if idx, ok := f.byName[name]; ok {
		f.Entries[idx].Value = value
		return
	}
	f.addEntry(&Entry{Kind: KindString, Name: name, Value: value})
}

// Delete removes a translatable string. It reports whether it existed.
func (f *File) Delete(name string) bool {
	idx, ok := f.byName[name]
	if !ok {
		return false
	}
	f.Entries = append(f.Entries[:idx], f.Entries[idx+1:]...)
	f.reindex()
	return true
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal produces the file in the layout Android Studio writes.
func (f *File) Marshal() ([]byte, error) {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources>\n")

	for _, e := range f.Entries {
		switch e.Kind {
		case KindComment:
			fmt.Fprintf(&b, "    <!-- %s -->\n", e.Comment)
		case KindRaw:
			fmt.Fprintf(&b, "    %s\n", strings.TrimSpace(e.Raw))
		case KindString:
			fmt.Fprintf(&b, "    <string name=\"%s\">%s</string>\n", attrEscape(e.Name), marshalValue(e.Value, e.UseCDATA))
		}
	}

	b.WriteString("</resources>\n")
	return []byte(b.String()), nil
}

func marshalValue(s string, useCDATA bool) string {
	if useCDATA {
		return "<![CDATA[" + escapeApostrophe(s) + "]]>"
	}
	return xmlEscape(s)
}

// xmlEscape escapes a value for element content. Values holding both < and
// > carry inline markup and are written as they are.
func xmlEscape(s string) string {
	if strings.Contains(s, "<") && strings.Contains(s, ">") {
		return escapeApostrophe(s)
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return escapeApostrophe(s)
}

func attrEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// escapeApostrophe escapes apostrophes for aapt without double escaping.
func escapeApostrophe(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// ---------------------------------------------------------------------------
// Resource directories
// ---------------------------------------------------------------------------

// DirName returns the values directory for a locale id, e.g. "values-pt-rBR"
// for "pt_BR" or "pt-BR".
func DirName(id string) string {
	lang, region, ok := strings.Cut(strings.ReplaceAll(id, "_", "-"), "-")
	if ok && len(region) == 2 {
		return "values-" + lang + "-r" + strings.ToUpper(region)
	}
	return "values-" + strings.ReplaceAll(id, "_", "-")
}

// LocaleFromDir extracts the locale id from a values directory name:
// "values-pt-rBR" gives "pt-BR", "values-de" gives "de". The default
// "values" directory yields an empty id and true.
func LocaleFromDir(name string) (string, bool) {
	if name == "values" {
		return "", true
	}
	rest, ok := strings.CutPrefix(name, "values-")
	if !ok || rest == "" {
		return "", false
	}
	if lang, region, ok := strings.Cut(rest, "-r"); ok {
		return lang + "-" + region, true
	}
	return rest, true
}
