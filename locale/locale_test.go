package locale

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	l, err := Parse("pt_BR")
	if err != nil {
		t.Fatalf("Parse(pt_BR): %v", err)
	}
	if l.ID != "pt_BR" || l.Tag.String() != "pt-BR" {
		t.Fatalf("unexpected locale %#v", l)
	}
	if Canonical("pt_br") != "pt-BR" {
		t.Fatalf("Canonical(pt_br) = %q", Canonical("pt_br"))
	}

	for _, bad := range []string{"", "   ", "not a locale", "translations"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) expected error", bad)
		}
	}
}

func TestNamesAndFlag(t *testing.T) {
	de, err := Parse("de")
	if err != nil {
		t.Fatal(err)
	}
	if de.Name() != "Deutsch" {
		t.Errorf("Name() = %q, want Deutsch", de.Name())
	}
	if de.EnglishName() != "German" {
		t.Errorf("EnglishName() = %q, want German", de.EnglishName())
	}
	if got := de.Flag(); got != "🇩🇪" {
		t.Errorf("Flag() = %q", got)
	}

	br, _ := Parse("pt-BR")
	if got := br.Flag(); got != "🇧🇷" {
		t.Errorf("Flag(pt-BR) = %q", got)
	}
}

func TestFlagFromRegion(t *testing.T) {
	if got := flagFromRegion("us"); got != "🇺🇸" {
		t.Fatalf("flagFromRegion(us) = %q", got)
	}
	if got := flagFromRegion("USA"); got != "" {
		t.Fatalf("flagFromRegion(USA) = %q, want empty", got)
	}
	if got := flagFromRegion("1A"); got != "" {
		t.Fatalf("flagFromRegion(1A) = %q, want empty", got)
	}
}

func TestFromFileName(t *testing.T) {
	cases := map[string]string{
		"en":          "en",
		"pt_BR":       "pt_BR",
		"messages_de": "de",
		"strings-fr":  "fr",
	}
	for in, want := range cases {
		l, ok := FromFileName(in)
		if !ok {
			t.Errorf("FromFileName(%q) not recognised", in)
			continue
		}
		if l.ID != want {
			t.Errorf("FromFileName(%q) = %q, want %q", in, l.ID, want)
		}
	}
	if _, ok := FromFileName("translations"); ok {
		t.Error("FromFileName(translations) should not match")
	}
}

func TestEqual(t *testing.T) {
	a, _ := Parse("pt_BR")
	b, _ := Parse("pt-br")
	if !a.Equal(b) {
		t.Fatal("pt_BR and pt-br should be equal")
	}
}
