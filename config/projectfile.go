package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/i18nedit/locale"
	"github.com/minios-linux/i18nedit/resource"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// ProjectFile is the optional .i18nedit.yaml placed in a resource
// directory. Every field is optional; missing fields fall back to
// auto-detection.
type ProjectFile struct {
	// Layout forces "flat" or "nested" resource placement.
	Layout string `yaml:"layout,omitempty"`
	// Format is the format of locales created with AddLocale
	// ("json", "yaml", "toml", "properties").
	Format string `yaml:"format,omitempty"`
	// FileName is the base name of per-locale files in the nested layout
	// (default "translations").
	FileName string `yaml:"file_name,omitempty"`
	// SourceLocale is listed first in every report (default "en").
	SourceLocale string `yaml:"source_locale,omitempty"`
	// Locales restricts the import to these locales when non-empty.
	Locales []string `yaml:"locales,omitempty"`
	// Ignore lists glob patterns, relative to the directory, of files that
	// are never imported.
	Ignore []string `yaml:"ignore,omitempty"`
}

// ProjectFileName is the project file name.
const ProjectFileName = ".i18nedit.yaml"

// DefaultFileName is the nested-layout base name used when none is known.
const DefaultFileName = "translations"

// LoadProjectFile loads and validates the project file in dir.
// Returns nil if no project file exists.
func LoadProjectFile(fs billy.Filesystem, dir string) (*ProjectFile, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := util.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pf ProjectFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty file decodes to io.EOF and means "all defaults".
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Defaults
	if pf.SourceLocale == "" {
		pf.SourceLocale = "en"
	}
	if pf.FileName == "" {
		pf.FileName = DefaultFileName
	}

	// Validate
	switch Structure(pf.Layout) {
	case "", StructureFlat, StructureNested:
	default:
		return nil, fmt.Errorf("%s: unknown layout %q (valid: flat, nested)", path, pf.Layout)
	}
	if pf.Format != "" {
		if _, ok := resource.Lookup(resource.Format(pf.Format)); !ok {
			return nil, fmt.Errorf("%s: unknown format %q (valid: %s)", path, pf.Format, formatList())
		}
	}
	if strings.ContainsAny(pf.FileName, `/\`) {
		return nil, fmt.Errorf("%s: file_name %q must not contain a path separator", path, pf.FileName)
	}
	if _, err := locale.Parse(pf.SourceLocale); err != nil {
		return nil, fmt.Errorf("%s: source_locale: %w", path, err)
	}
	for _, id := range pf.Locales {
		if _, err := locale.Parse(id); err != nil {
			return nil, fmt.Errorf("%s: locales: %w", path, err)
		}
	}
	for _, pattern := range pf.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%s: ignore pattern %q: %w", path, pattern, err)
		}
	}

	return &pf, nil
}

// ignored reports whether rel matches one of the ignore patterns.
func (pf *ProjectFile) ignored(rel string) bool {
	if pf == nil {
		return false
	}
	for _, pattern := range pf.Ignore {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// allows reports whether loc passes the Locales filter.
func (pf *ProjectFile) allows(loc locale.Locale) bool {
	if pf == nil || len(pf.Locales) == 0 {
		return true
	}
	return slices.ContainsFunc(pf.Locales, func(id string) bool {
		l, err := locale.Parse(id)
		return err == nil && l.Equal(loc)
	})
}

func formatList() string {
	var names []string
	for _, f := range resource.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
