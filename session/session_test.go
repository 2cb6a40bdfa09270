package session

import (
	"context"
	"errors"
	"os"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/i18nedit/engine"
	"github.com/minios-linux/i18nedit/keypath"
	"github.com/minios-linux/i18nedit/locale"
	"github.com/minios-linux/i18nedit/resource"
)

func k(s string) keypath.KeyPath { return keypath.MustParse(s) }

func project(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func read(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func TestImportBuildsTreeFromUnion(t *testing.T) {
	fs := project(t, map[string]string{
		"i18n/en.json": `{"nav": {"home": "Home"}, "title": "T"}`,
		"i18n/de.json": `{"nav": {"about": "Über"}}`,
	})
	s, report, err := Open(context.Background(), fs, "i18n")
	require.NoError(t, err)

	assert.Equal(t, []string{"i18n/en.json", "i18n/de.json"}, report.Loaded)
	assert.Empty(t, report.Failures)
	assert.NoError(t, report.Err())
	assert.Len(t, s.Stores(), 2)
	for _, key := range []string{"nav", "nav.home", "nav.about", "title"} {
		_, ok := s.Find(key)
		assert.True(t, ok, key)
	}
	assert.False(t, s.Dirty())
	assert.NoError(t, s.Verify())
	assert.NotEmpty(t, s.ID())
}

func TestImportSkipsUnreadableResource(t *testing.T) {
	fs := project(t, map[string]string{
		"i18n/en.json": `{"a": "A"}`,
		"i18n/de.json": `{"a": `,
		"i18n/fr.yaml": "b: B\n",
	})
	s, report, err := Open(context.Background(), fs, "i18n")
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "i18n/de.json", report.Failures[0].Path)
	assert.ErrorIs(t, report.Err(), resource.ErrRead)
	assert.Len(t, s.Stores(), 2)
	_, ok := s.Store("de")
	assert.False(t, ok)
	assert.NoError(t, s.Verify())
}

func TestImportReportsInvalidKeys(t *testing.T) {
	fs := project(t, map[string]string{"i18n/en.properties": "ok=1\nnot ok=2\n"})
	_, report, err := Open(context.Background(), fs, "i18n")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"i18n/en.properties": {"not ok"}}, report.InvalidKeys)
}

func TestImportMissingDirectoryKeepsSession(t *testing.T) {
	fs := project(t, map[string]string{"i18n/en.json": `{"a": "A"}`})
	s, _, err := Open(context.Background(), fs, "i18n")
	require.NoError(t, err)

	_, err = s.Import(context.Background(), "missing")
	require.Error(t, err)
	assert.Len(t, s.Stores(), 1)
	assert.Equal(t, "i18n", s.Project().Dir)
}

func TestEditsMarkDirtyAndSave(t *testing.T) {
	fs := project(t, map[string]string{
		"i18n/en.json": `{"a": "A"}`,
		"i18n/de.json": `{"a": "Ä"}`,
	})
	ctx := context.Background()
	s, _, err := Open(ctx, fs, "i18n")
	require.NoError(t, err)

	added, err := s.AddKey(ctx, k("nav.home"))
	require.NoError(t, err)
	require.True(t, added)
	assert.True(t, s.Dirty())
	require.NoError(t, s.SetValue(k("nav.home"), "de", "Start"))

	require.NoError(t, s.Save(resource.MarshalOptions{}))
	assert.False(t, s.Dirty())
	assert.Contains(t, read(t, fs, "i18n/de.json"), `"home": "Start"`)
	assert.Contains(t, read(t, fs, "i18n/en.json"), `"home": ""`)
}

func TestAddBelowValueKeepsSessionSavable(t *testing.T) {
	fs := project(t, map[string]string{
		"i18n/en.json": `{"nav": {"home": "Home"}}`,
		"i18n/de.json": `{"nav": {"home": "Start"}}`,
	})
	ctx := context.Background()
	s, _, err := Open(ctx, fs, "i18n")
	require.NoError(t, err)

	added, err := s.AddKey(ctx, k("nav.home.title"))
	require.ErrorIs(t, err, resource.ErrShape)
	assert.False(t, added)
	assert.False(t, s.Dirty())
	assert.NoError(t, s.Verify())

	_, ok := s.Find("nav.home.title")
	assert.False(t, ok)
	require.NoError(t, s.SetValue(k("nav.home"), "de", "Startseite"))
	require.NoError(t, s.Save(resource.MarshalOptions{}))
	assert.False(t, s.Dirty())
	assert.Contains(t, read(t, fs, "i18n/de.json"), `"home": "Startseite"`)
}

func TestNoOpEditsStayClean(t *testing.T) {
	fs := project(t, map[string]string{"i18n/en.json": `{"a": "A"}`})
	ctx := context.Background()
	s, _, err := Open(ctx, fs, "i18n")
	require.NoError(t, err)

	_, err = s.AddKey(ctx, k("a"))
	require.NoError(t, err)
	_, err = s.RenameKey(ctx, k("a"), k("a"))
	require.NoError(t, err)
	require.NoError(t, s.SetValue(k("a"), "en", "A"))
	assert.False(t, s.Dirty())
}

func TestSetValueRules(t *testing.T) {
	fs := project(t, map[string]string{"i18n/en.json": `{"nav": {"home": "Home"}}`})
	s, _, err := Open(context.Background(), fs, "i18n")
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetValue(k("nav"), "en", "x"), ErrNotEditable)
	assert.ErrorIs(t, s.SetValue(k("missing"), "en", "x"), ErrNotEditable)
	assert.ErrorIs(t, s.SetValue(k("nav.home"), "ru", "x"), ErrUnknownLocale)
}

func TestRenameReplaceUsesConfirmPolicy(t *testing.T) {
	files := map[string]string{"i18n/en.json": `{"a": "A", "b": {"x": "X"}}`}
	ctx := context.Background()

	s, _, err := Open(ctx, project(t, files), "i18n")
	require.NoError(t, err)
	_, err = s.RenameKey(ctx, k("a"), k("b"))
	require.ErrorIs(t, err, engine.ErrAborted)
	assert.False(t, s.Dirty())

	s, _, err = Open(ctx, project(t, files), "i18n", WithConfirm(engine.AlwaysProceed))
	require.NoError(t, err)
	res, err := s.RenameKey(ctx, k("a"), k("b"))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, s.Dirty())
	v, _ := s.Stores()[0].Get(k("b"))
	assert.Equal(t, "A", v)
	assert.NoError(t, s.Verify())
}

func TestDuplicateAndRemove(t *testing.T) {
	fs := project(t, map[string]string{"i18n/en.json": `{"nav": {"home": "Home"}}`})
	ctx := context.Background()
	s, _, err := Open(ctx, fs, "i18n")
	require.NoError(t, err)

	_, err = s.DuplicateKey(ctx, k("nav"), k("menu"))
	require.NoError(t, err)
	removed, err := s.RemoveKey(ctx, k("nav"))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"menu.home"}, s.Stores()[0].Keys())
	assert.NoError(t, s.Verify())
}

func TestAddLocale(t *testing.T) {
	fs := project(t, map[string]string{
		"i18n/en/translations.json": `{"nav": {"home": "Home"}}`,
	})
	s, _, err := Open(context.Background(), fs, "i18n")
	require.NoError(t, err)

	store, err := s.AddLocale("pt_BR", "", resource.MarshalOptions{})
	require.NoError(t, err)
	assert.Equal(t, "i18n/pt_BR/translations.json", store.Path())
	assert.Equal(t, []string{"nav.home"}, store.Keys())
	assert.Contains(t, read(t, fs, "i18n/pt_BR/translations.json"), `"home": ""`)
	assert.NoError(t, s.Verify())

	_, err = s.AddLocale("pt-BR", "", resource.MarshalOptions{})
	assert.ErrorIs(t, err, ErrLocaleExists)
	_, err = s.AddLocale("not a locale", "", resource.MarshalOptions{})
	assert.ErrorIs(t, err, locale.ErrInvalid)

	// Reload picks the new file up.
	report, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Loaded, 2)
}

func TestAddLocaleRequiresProject(t *testing.T) {
	_, err := New(memfs.New()).AddLocale("de", "", resource.MarshalOptions{})
	assert.ErrorIs(t, err, ErrNoProject)
}

// failingFS rejects writes to one file.
type failingFS struct {
	billy.Filesystem
	name string
}

func (f failingFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if name == f.name {
		return nil, errors.New("disk full")
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

func TestSavePartialFailureKeepsDirty(t *testing.T) {
	base := project(t, map[string]string{
		"i18n/en.json": `{"a": "A"}`,
		"i18n/de.json": `{"a": "Ä"}`,
	})
	fs := failingFS{Filesystem: base, name: "i18n/de.json"}
	ctx := context.Background()
	s, _, err := Open(ctx, fs, "i18n")
	require.NoError(t, err)

	_, err = s.AddKey(ctx, k("b"))
	require.NoError(t, err)
	err = s.Save(resource.MarshalOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, resource.ErrWrite)
	var we *resource.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "i18n/de.json", we.Path)
	assert.True(t, s.Dirty())
	assert.Contains(t, read(t, base, "i18n/en.json"), `"b"`, "other resources are still written")

	en, _ := s.Store("en")
	assert.False(t, en.Dirty())
	de, _ := s.Store("de")
	assert.True(t, de.Dirty())
}

func TestCloseRefusesWhenDirty(t *testing.T) {
	fs := project(t, map[string]string{"i18n/en.json": `{"a": "A"}`})
	ctx := context.Background()
	s, _, err := Open(ctx, fs, "i18n")
	require.NoError(t, err)

	_, err = s.AddKey(ctx, k("b"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Close(), ErrUnsaved)

	s.Reset()
	assert.NoError(t, s.Close())
	assert.Nil(t, s.Project())
	assert.Empty(t, s.Stores())
	_, err = s.Reload(ctx)
	assert.ErrorIs(t, err, ErrNoProject)
}

func TestValuesAndWalk(t *testing.T) {
	fs := project(t, map[string]string{
		"i18n/en.json": `{"a": {"b": "AB"}}`,
		"i18n/de.json": `{}`,
	})
	s, _, err := Open(context.Background(), fs, "i18n")
	require.NoError(t, err)

	vals := s.Values(k("a.b"))
	require.Len(t, vals, 2)
	assert.Equal(t, LocaleValue{Locale: vals[0].Locale, Value: "AB", Present: true}, vals[0])
	assert.False(t, vals[1].Present)

	var paths []string
	for n := range s.Walk() {
		paths = append(paths, n.Key())
	}
	assert.Equal(t, []string{"a", "a.b"}, paths)

	_, ok := s.Find("a..b")
	assert.False(t, ok)
}
