package resource

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/minios-linux/i18nedit/android"
	"github.com/minios-linux/i18nedit/jsonfile"
	"github.com/minios-linux/i18nedit/locale"
	"github.com/minios-linux/i18nedit/propfile"
	"github.com/minios-linux/i18nedit/tomlfile"
	"github.com/minios-linux/i18nedit/yamlfile"
)

// Format names a resource file format.
type Format string

// Built-in formats.
const (
	FormatProperties Format = "properties"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
	FormatTOML       Format = "toml"
	FormatAndroid    Format = "android"
)

// MarshalOptions controls how a document is serialised.
type MarshalOptions struct {
	// Minify drops indentation where the format allows it.
	Minify bool
}

// Document is the parsed form of one resource file: an ordered flat
// key/value mapping that can be serialised back.
type Document interface {
	Keys() []string
	Get(key string) (string, bool)
	Put(key, value string)
	Delete(key string) bool
	Marshal(opts MarshalOptions) ([]byte, error)
}

// Codec converts between a file format and a Document.
type Codec interface {
	Format() Format
	// Extensions lists file extensions including the dot, preferred first.
	Extensions() []string
	Decode(data []byte, loc locale.Locale) (Document, error)
	New(loc locale.Locale) Document
	// Nested reports whether the format stores keys as nested maps. Such a
	// file cannot hold a key that is both a value and a group.
	Nested() bool
}

var (
	registryMu sync.RWMutex
	registry   = map[Format]Codec{}
)

// Register makes a codec available to Lookup and ForPath, replacing any
// codec previously registered for the same format.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Format()] = c
}

// Lookup returns the codec for format.
func Lookup(format Format) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[format]
	return c, ok
}

// ForPath returns the codec handling the extension of name.
func ForPath(name string) (Codec, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil, false
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, c := range registry {
		if slices.Contains(c.Extensions(), ext) {
			return c, true
		}
	}
	return nil, false
}

// Formats returns the registered formats, sorted.
func Formats() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Format, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// ---------------------------------------------------------------------------
// Built-in codecs
// ---------------------------------------------------------------------------

type funcCodec struct {
	format Format
	exts   []string
	decode func(data []byte, loc locale.Locale) (Document, error)
	empty  func(loc locale.Locale) Document
	nested bool
}

func (c funcCodec) Format() Format       { return c.format }
func (c funcCodec) Extensions() []string { return c.exts }

func (c funcCodec) Decode(data []byte, loc locale.Locale) (Document, error) {
	return c.decode(data, loc)
}

func (c funcCodec) New(loc locale.Locale) Document { return c.empty(loc) }

func (c funcCodec) Nested() bool { return c.nested }

type propDoc struct{ *propfile.File }

func (d propDoc) Marshal(MarshalOptions) ([]byte, error) { return d.File.Marshal() }

type jsonDoc struct{ *jsonfile.File }

func (d jsonDoc) Marshal(opts MarshalOptions) ([]byte, error) {
	if opts.Minify {
		return d.File.MarshalCompact()
	}
	return d.File.Marshal()
}

type yamlDoc struct{ *yamlfile.File }

func (d yamlDoc) Marshal(MarshalOptions) ([]byte, error) { return d.File.Marshal() }

type androidDoc struct{ *android.File }

func (d androidDoc) Marshal(MarshalOptions) ([]byte, error) { return d.File.Marshal() }

type tomlDoc struct{ *tomlfile.File }

func (d tomlDoc) Marshal(MarshalOptions) ([]byte, error) { return d.File.Marshal() }

func init() {
	Register(funcCodec{
		format: FormatProperties,
		exts:   []string{".properties"},
		decode: func(data []byte, _ locale.Locale) (Document, error) {
			f, err := propfile.Parse(data)
			if err != nil {
				return nil, err
			}
			return propDoc{f}, nil
		},
		empty: func(locale.Locale) Document { return propDoc{propfile.New()} },
	})
	Register(funcCodec{
		format: FormatJSON,
		nested: true,
		exts:   []string{".json"},
		decode: func(data []byte, _ locale.Locale) (Document, error) {
			f, err := jsonfile.Parse(data)
			if err != nil {
				return nil, err
			}
			return jsonDoc{f}, nil
		},
		empty: func(locale.Locale) Document { return jsonDoc{jsonfile.New()} },
	})
	Register(funcCodec{
		format: FormatYAML,
		nested: true,
		exts:   []string{".yaml", ".yml"},
		decode: func(data []byte, loc locale.Locale) (Document, error) {
			f, err := yamlfile.ParseLocale(data, loc.ID)
			if err != nil {
				return nil, err
			}
			return yamlDoc{f}, nil
		},
		empty: func(locale.Locale) Document { return yamlDoc{yamlfile.New()} },
	})
	Register(funcCodec{
		format: FormatTOML,
		nested: true,
		exts:   []string{".toml"},
		decode: func(data []byte, _ locale.Locale) (Document, error) {
			f, err := tomlfile.Parse(data)
			if err != nil {
				return nil, err
			}
			return tomlDoc{f}, nil
		},
		empty: func(locale.Locale) Document { return tomlDoc{tomlfile.New()} },
	})
	Register(funcCodec{
		format: FormatAndroid,
		exts:   []string{".xml"},
		decode: func(data []byte, _ locale.Locale) (Document, error) {
			f, err := android.Parse(data)
			if err != nil {
				return nil, err
			}
			return androidDoc{f}, nil
		},
		empty: func(locale.Locale) Document { return androidDoc{android.New()} },
	})
}
