// Package i18n translates the messages of the i18nedit command line.
//
// Catalogs are gettext .po files embedded under
// locales/{lang}/LC_MESSAGES/i18nedit.po and read with gotext. The user's
// language is taken from the usual gettext environment variables and
// matched against the embedded catalogs, so "ru_RU.UTF-8" uses the "ru"
// catalog.
//
//	i18n.Init("")
//	fmt.Println(i18n.T("Saved"))
//	fmt.Println(i18n.N("%d key", "%d keys", n))
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const domain = "i18nedit"

var po *gotext.Locale

// Init loads the catalog for lang, or for the language detected from the
// environment when lang is empty. Without a matching catalog messages are
// returned untranslated.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	catalog, ok := match(lang, Languages())
	if !ok {
		po = nil
		return
	}

	po = gotext.NewLocaleFSWithPath(catalog, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Languages returns the languages with an embedded catalog, sorted.
func Languages() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	slices.Sort(out)
	return out
}

// match picks the catalog closest to lang. English is the source language
// and never needs a catalog.
func match(lang string, available []string) (string, bool) {
	want, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil || len(available) == 0 {
		return "", false
	}
	if base, _ := want.Base(); base.String() == "en" {
		return "", false
	}

	tags := make([]language.Tag, 0, len(available))
	for _, a := range available {
		tags = append(tags, language.Make(strings.ReplaceAll(a, "_", "-")))
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return "", false
	}
	return available[idx], true
}

// T translates msgid, returning it unchanged when there is no translation.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms chosen by n.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage follows the gettext lookup order LANGUAGE, LC_ALL,
// LC_MESSAGES, LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			// colon-separated preference list
			val, _, _ = strings.Cut(val, ":")
		}
		// "ru_RU.UTF-8" -> "ru_RU"
		val, _, _ = strings.Cut(val, ".")
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
