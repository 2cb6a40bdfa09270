// Package config implements auto-detection of the resource files in a
// project directory, optionally steered by a .i18nedit.yaml project file.
//
// Two layouts are recognised, looking one level deep only:
//
//	flat:   dir/en.json, dir/de.json, dir/messages_fr.properties
//	nested: dir/en/translations.json, dir/de/translations.json
//
// Android res directories (res/values/strings.xml, res/values-de/strings.xml)
// are detected as a nested layout.
package config

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/minios-linux/i18nedit/android"
	"github.com/minios-linux/i18nedit/locale"
	"github.com/minios-linux/i18nedit/resource"
)

// Structure indicates how resource files are organized.
type Structure string

const (
	// StructureFlat: dir/en.json, dir/de.json
	StructureFlat Structure = "flat"
	// StructureNested: dir/en/translations.json, dir/de/translations.json
	StructureNested Structure = "nested"
	// StructureUnknown: no resources found and no layout configured
	StructureUnknown Structure = "unknown"
)

const androidFileName = "strings"

// Resource is one detected resource file.
type Resource struct {
	Locale locale.Locale
	// Path is the file path on the project filesystem.
	Path   string
	Format resource.Format
}

// Project holds the detected layout of a resource directory.
type Project struct {
	// Dir is the resource directory on the filesystem.
	Dir string
	// Structure is the layout new locales are created in.
	Structure Structure
	// Format is the format new locales are created in.
	Format resource.Format
	// FileName is the base name of nested-layout files.
	FileName string
	// SourceLocale is the locale reports list first.
	SourceLocale string
	// Resources are the detected files, source locale first, then by
	// locale id.
	Resources []Resource
	// Skipped lists files that look like resources but were not taken:
	// ignored by pattern, filtered by locale, or a second file for a
	// locale already seen.
	Skipped []string
	// File is the loaded project file, nil when absent.
	File *ProjectFile
}

// Detect inspects dir on fs. It fails only when dir cannot be read or the
// project file is invalid; a directory without resources yields a Project
// with no Resources.
func Detect(fs billy.Filesystem, dir string) (*Project, error) {
	pf, err := LoadProjectFile(fs, dir)
	if err != nil {
		return nil, err
	}
	entries, err := readDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	p := &Project{
		Dir:          dir,
		Structure:    StructureUnknown,
		FileName:     DefaultFileName,
		SourceLocale: "en",
		File:         pf,
	}
	if pf != nil {
		p.FileName = pf.FileName
		p.SourceLocale = pf.SourceLocale
	}

	var flat, nested []Resource
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			if r, ok := p.detectNested(fs, name); ok {
				nested = append(nested, r)
			}
			continue
		}
		if r, ok := detectFlat(dir, name); ok {
			flat = append(flat, r)
		}
	}

	// Detect structure
	layout := ""
	if pf != nil {
		layout = pf.Layout
	}
	switch {
	case layout == string(StructureFlat):
		p.Structure = StructureFlat
		nested = nil
	case layout == string(StructureNested):
		p.Structure = StructureNested
		flat = nil
	case len(nested) > 0:
		p.Structure = StructureNested
	case len(flat) > 0:
		p.Structure = StructureFlat
	}

	seen := make(map[string]bool)
	for _, r := range append(nested, flat...) {
		rel, _ := filepath.Rel(dir, r.Path)
		key := r.Locale.Tag.String()
		switch {
		case pf.ignored(rel), !pf.allows(r.Locale), seen[key]:
			p.Skipped = append(p.Skipped, r.Path)
			continue
		}
		seen[key] = true
		p.Resources = append(p.Resources, r)
	}
	p.sortResources()
	p.Format = p.detectFormat()
	return p, nil
}

// detectFlat recognises dir/<locale>.<ext> and dir/<name>_<locale>.<ext>.
func detectFlat(dir, name string) (Resource, bool) {
	c, ok := resource.ForPath(name)
	if !ok {
		return Resource{}, false
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	loc, ok := locale.FromFileName(base)
	if !ok {
		return Resource{}, false
	}
	return Resource{Locale: loc, Path: filepath.Join(dir, name), Format: c.Format()}, true
}

// detectNested recognises dir/<locale>/<file>.<ext>. A file named after
// FileName is preferred; otherwise the first resource file by name is
// taken. Android values directories (values, values-de, values-pt-rBR) are
// recognised too and only their strings.xml-style files are considered.
func (p *Project) detectNested(fs billy.Filesystem, name string) (Resource, bool) {
	loc, androidDir, ok := p.dirLocale(name)
	if !ok {
		return Resource{}, false
	}
	sub := filepath.Join(p.Dir, name)
	files, err := readDir(fs, sub)
	if err != nil {
		return Resource{}, false
	}

	var found []Resource
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		c, ok := resource.ForPath(f.Name())
		if !ok || (androidDir && c.Format() != resource.FormatAndroid) {
			continue
		}
		r := Resource{Locale: loc, Path: filepath.Join(sub, f.Name()), Format: c.Format()}
		base := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if base == p.FileName || (androidDir && base == androidFileName) {
			return r, true
		}
		found = append(found, r)
	}
	if len(found) == 0 {
		return Resource{}, false
	}
	return found[0], true
}

// dirLocale resolves a subdirectory name to a locale. The default Android
// "values" directory holds the source locale.
func (p *Project) dirLocale(name string) (loc locale.Locale, androidDir, ok bool) {
	if l, err := locale.Parse(name); err == nil {
		return l, false, true
	}
	id, ok := android.LocaleFromDir(name)
	if !ok {
		return locale.Locale{}, false, false
	}
	if id == "" {
		id = p.SourceLocale
	}
	l, err := locale.Parse(id)
	if err != nil {
		return locale.Locale{}, false, false
	}
	return l, true, true
}

func (p *Project) sortResources() {
	src := locale.Canonical(p.SourceLocale)
	slices.SortStableFunc(p.Resources, func(a, b Resource) int {
		as, bs := locale.Canonical(a.Locale.ID) == src, locale.Canonical(b.Locale.ID) == src
		switch {
		case as && !bs:
			return -1
		case bs && !as:
			return 1
		}
		return cmp.Compare(a.Locale.ID, b.Locale.ID)
	})
}

// detectFormat picks the configured format, else the most common format
// among the detected resources, else JSON.
func (p *Project) detectFormat() resource.Format {
	if p.File != nil && p.File.Format != "" {
		return resource.Format(p.File.Format)
	}
	counts := make(map[resource.Format]int)
	best := resource.FormatJSON
	for _, r := range p.Resources {
		counts[r.Format]++
		if counts[r.Format] > counts[best] {
			best = r.Format
		}
	}
	return best
}

// PathFor returns where a new resource for loc in the given format goes.
// Projects without resources use the nested layout.
func (p *Project) PathFor(loc locale.Locale, format resource.Format) (string, error) {
	c, ok := resource.Lookup(format)
	if !ok {
		return "", fmt.Errorf("%w: %q", resource.ErrUnknownFormat, format)
	}
	ext := c.Extensions()[0]
	if format == resource.FormatAndroid && p.Structure != StructureFlat {
		return filepath.Join(p.Dir, android.DirName(loc.ID), androidFileName+ext), nil
	}
	if p.Structure == StructureFlat {
		return filepath.Join(p.Dir, loc.ID+ext), nil
	}
	return filepath.Join(p.Dir, loc.ID, p.FileName+ext), nil
}

// Locales returns the ids of the detected resources in order.
func (p *Project) Locales() []string {
	ids := make([]string, len(p.Resources))
	for i, r := range p.Resources {
		ids[i] = r.Locale.ID
	}
	return ids
}

func readDir(fs billy.Filesystem, dir string) ([]os.FileInfo, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b os.FileInfo) int { return cmp.Compare(a.Name(), b.Name()) })
	return entries, nil
}
