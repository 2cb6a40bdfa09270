package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDirAndFilePathUseXDGConfigHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if want := filepath.Join(tmp, "i18nedit"); dir != want {
		t.Fatalf("Dir() = %q, want %q", dir, want)
	}
	if want := filepath.Join(tmp, "i18nedit", "settings.yaml"); FilePath() != want {
		t.Fatalf("FilePath() = %q, want %q", FilePath(), want)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(s, Default()) {
		t.Fatalf("Load() = %#v, want defaults", s)
	}
}

func TestSaveLoadLifecycle(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s := Default()
	s.MinifyOutput = true
	s.UpdateTimeout = 5 * time.Second
	s.LastSelectedKey = "nav.home"
	s.LastExpandedKeys = []string{"nav"}
	s.AddHistory("/srv/i18n")

	if err := Save(s); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(loaded, s) {
		t.Fatalf("Load() = %#v, want %#v", loaded, s)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	path := filepath.Join(tmp, "i18nedit", "settings.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("history: {\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesAreNotPersisted(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("I18NEDIT_MINIFY", "true")
	t.Setenv("I18NEDIT_UPDATE_TIMEOUT", "2s")
	t.Setenv("I18NEDIT_RELEASES_URL", "http://localhost/latest")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !s.MinifyOutput || s.UpdateTimeout != 2*time.Second || s.ReleasesURL != "http://localhost/latest" {
		t.Fatalf("env not applied: %#v", s)
	}

	if err := Update(func(s *Settings) { s.AddHistory("/a") }); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	file, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if file.MinifyOutput || file.ReleasesURL != DefaultReleasesURL {
		t.Fatalf("env override leaked into file: %#v", file)
	}
	if !reflect.DeepEqual(file.History, []string{"/a"}) {
		t.Fatalf("History = %v", file.History)
	}
}

func TestInvalidEnvValue(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("I18NEDIT_UPDATE_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestAddHistory(t *testing.T) {
	s := Default()
	for _, d := range []string{"a", "b", "c", "d", "e", "f"} {
		s.AddHistory(d)
	}
	if want := []string{"f", "e", "d", "c", "b"}; !reflect.DeepEqual(s.History, want) {
		t.Fatalf("History = %v, want %v", s.History, want)
	}

	s.AddHistory("c")
	if want := []string{"c", "f", "e", "d", "b"}; !reflect.DeepEqual(s.History, want) {
		t.Fatalf("History = %v, want %v", s.History, want)
	}
	if last, ok := s.LastDir(); !ok || last != "c" {
		t.Fatalf("LastDir() = %q, %v", last, ok)
	}
	if _, ok := Default().LastDir(); ok {
		t.Fatal("LastDir() on empty history should be false")
	}
}
