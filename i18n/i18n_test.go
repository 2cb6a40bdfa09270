package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}

	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestMatch(t *testing.T) {
	available := []string{"de", "pt_BR", "ru"}
	tests := []struct {
		lang string
		want string
		ok   bool
	}{
		{lang: "ru_RU", want: "ru", ok: true},
		{lang: "pt-BR", want: "pt_BR", ok: true},
		{lang: "de", want: "de", ok: true},
		{lang: "en_US", ok: false},
		{lang: "ja", ok: false},
		{lang: "???", ok: false},
	}
	for _, tc := range tests {
		got, ok := match(tc.lang, available)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("match(%q) = %q, %v; want %q, %v", tc.lang, got, ok, tc.want, tc.ok)
		}
	}
}

func TestInitLoadsEmbeddedCatalog(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	if langs := Languages(); len(langs) == 0 || langs[0] != "ru" {
		t.Fatalf("Languages() = %v, want ru first", langs)
	}

	Init("ru_RU")
	if got := T("Saved"); got != "Сохранено" {
		t.Fatalf("T(Saved) = %q", got)
	}
	if got := N("Reloaded %d resource", "Reloaded %d resources", 5); got != "Перечитано %d ресурсов" {
		t.Fatalf("N(5) = %q", got)
	}

	Init("en")
	if got := T("Saved"); got != "Saved" {
		t.Fatalf("T(Saved) with en = %q", got)
	}
}
