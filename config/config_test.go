package config

import (
	"reflect"
	"strings"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/minios-linux/i18nedit/locale"
	"github.com/minios-linux/i18nedit/resource"
)

func writeFiles(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for name, content := range files {
		if err := util.WriteFile(fs, name, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
	return fs
}

func paths(p *Project) []string {
	out := make([]string, len(p.Resources))
	for i, r := range p.Resources {
		out[i] = r.Path
	}
	return out
}

func TestDetect(t *testing.T) {
	t.Run("flat layout", func(t *testing.T) {
		fs := writeFiles(t, map[string]string{
			"i18n/de.json":                 "{}",
			"i18n/en.json":                 "{}",
			"i18n/messages_fr.properties":  "",
			"i18n/README.md":               "",
			"i18n/package.json":            "{}",
			"i18n/deep/nested/ru.json":     "{}",
		})
		p, err := Detect(fs, "i18n")
		if err != nil {
			t.Fatalf("Detect error: %v", err)
		}
		if p.Structure != StructureFlat {
			t.Fatalf("Structure = %q, want flat", p.Structure)
		}
		want := []string{"i18n/en.json", "i18n/de.json", "i18n/messages_fr.properties"}
		if got := paths(p); !reflect.DeepEqual(got, want) {
			t.Fatalf("resources = %v, want %v", got, want)
		}
		if p.Format != resource.FormatJSON {
			t.Fatalf("Format = %q, want json", p.Format)
		}
	})

	t.Run("nested layout prefers file name", func(t *testing.T) {
		fs := writeFiles(t, map[string]string{
			"res/en/translations.yaml": "a: b\n",
			"res/en/aaa.json":          "{}",
			"res/pt_BR/other.yml":      "a: c\n",
			"res/notes/translations.json": "{}",
		})
		p, err := Detect(fs, "res")
		if err != nil {
			t.Fatalf("Detect error: %v", err)
		}
		if p.Structure != StructureNested {
			t.Fatalf("Structure = %q, want nested", p.Structure)
		}
		want := []string{"res/en/translations.yaml", "res/pt_BR/other.yml"}
		if got := paths(p); !reflect.DeepEqual(got, want) {
			t.Fatalf("resources = %v, want %v", got, want)
		}
		if p.Format != resource.FormatYAML {
			t.Fatalf("Format = %q, want yaml", p.Format)
		}
	})

	t.Run("android values directories", func(t *testing.T) {
		fs := writeFiles(t, map[string]string{
			"res/values/strings.xml":        "<resources/>",
			"res/values/colors.xml":         "<resources/>",
			"res/values-pt-rBR/strings.xml": "<resources/>",
			"res/values-night/strings.xml":  "<resources/>",
			"res/drawable/icon.xml":         "<vector/>",
		})
		p, err := Detect(fs, "res")
		if err != nil {
			t.Fatalf("Detect error: %v", err)
		}
		want := []string{"res/values/strings.xml", "res/values-pt-rBR/strings.xml"}
		if got := paths(p); !reflect.DeepEqual(got, want) {
			t.Fatalf("resources = %v, want %v", got, want)
		}
		if p.Resources[0].Locale.ID != "en" || p.Resources[1].Locale.ID != "pt-BR" {
			t.Fatalf("locales = %v", p.Locales())
		}
		if p.Format != resource.FormatAndroid {
			t.Fatalf("Format = %q, want android", p.Format)
		}
		de, _ := locale.Parse("de")
		if got, _ := p.PathFor(de, resource.FormatAndroid); got != "res/values-de/strings.xml" {
			t.Fatalf("PathFor = %q", got)
		}
	})

	t.Run("duplicate locale keeps first", func(t *testing.T) {
		fs := writeFiles(t, map[string]string{
			"d/en.json": "{}",
			"d/en.yaml": "",
		})
		p, err := Detect(fs, "d")
		if err != nil {
			t.Fatalf("Detect error: %v", err)
		}
		if got := paths(p); !reflect.DeepEqual(got, []string{"d/en.json"}) {
			t.Fatalf("resources = %v", got)
		}
		if !reflect.DeepEqual(p.Skipped, []string{"d/en.yaml"}) {
			t.Fatalf("Skipped = %v", p.Skipped)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		fs := memfs.New()
		if err := fs.MkdirAll("empty", 0755); err != nil {
			t.Fatal(err)
		}
		p, err := Detect(fs, "empty")
		if err != nil {
			t.Fatalf("Detect error: %v", err)
		}
		if p.Structure != StructureUnknown || len(p.Resources) != 0 {
			t.Fatalf("unexpected project %#v", p)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := Detect(memfs.New(), "nope"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDetectWithProjectFile(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"p/" + ProjectFileName: "layout: flat\nformat: toml\nsource_locale: de\n" +
			"locales: [de, en, fr]\nignore: [\"*_old.json\"]\n",
		"p/en.json":     "{}",
		"p/de.json":     "{}",
		"p/fr_old.json": "{}",
		"p/ru.json":     "{}",
		"p/es/translations.json": "{}",
	})
	p, err := Detect(fs, "p")
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if p.Structure != StructureFlat {
		t.Fatalf("Structure = %q", p.Structure)
	}
	if got := paths(p); !reflect.DeepEqual(got, []string{"p/de.json", "p/en.json"}) {
		t.Fatalf("resources = %v", got)
	}
	if p.Format != resource.FormatTOML {
		t.Fatalf("Format = %q, want toml", p.Format)
	}
	if len(p.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want fr_old and ru", p.Skipped)
	}
}

func TestLoadProjectFile(t *testing.T) {
	t.Run("missing file returns nil", func(t *testing.T) {
		pf, err := LoadProjectFile(memfs.New(), ".")
		if err != nil {
			t.Fatalf("LoadProjectFile error: %v", err)
		}
		if pf != nil {
			t.Fatalf("expected nil, got %#v", pf)
		}
	})

	t.Run("empty file applies defaults", func(t *testing.T) {
		fs := writeFiles(t, map[string]string{ProjectFileName: ""})
		pf, err := LoadProjectFile(fs, ".")
		if err != nil {
			t.Fatalf("LoadProjectFile error: %v", err)
		}
		if pf.SourceLocale != "en" || pf.FileName != DefaultFileName {
			t.Fatalf("defaults not applied: %#v", pf)
		}
	})

	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: "languages: [en]\n", wantErr: "not found"},
		{name: "bad layout", content: "layout: tree\n", wantErr: "unknown layout"},
		{name: "bad format", content: "format: po\n", wantErr: "unknown format"},
		{name: "bad locale", content: "locales: [\"not a locale\"]\n", wantErr: "locales"},
		{name: "file name with slash", content: "file_name: a/b\n", wantErr: "path separator"},
		{name: "bad pattern", content: "ignore: [\"[\"]\n", wantErr: "ignore pattern"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := writeFiles(t, map[string]string{ProjectFileName: tc.content})
			_, err := LoadProjectFile(fs, ".")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestPathFor(t *testing.T) {
	de, err := locale.Parse("de")
	if err != nil {
		t.Fatal(err)
	}

	flat := &Project{Dir: "i18n", Structure: StructureFlat, FileName: DefaultFileName}
	if got, _ := flat.PathFor(de, resource.FormatYAML); got != "i18n/de.yaml" {
		t.Fatalf("flat PathFor = %q", got)
	}

	nested := &Project{Dir: "i18n", Structure: StructureUnknown, FileName: "messages"}
	if got, _ := nested.PathFor(de, resource.FormatProperties); got != "i18n/de/messages.properties" {
		t.Fatalf("nested PathFor = %q", got)
	}

	if _, err := flat.PathFor(de, resource.Format("po")); err == nil {
		t.Fatal("expected unknown format error")
	}
}
