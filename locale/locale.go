// Package locale resolves locale identifiers used in resource file names
// ("en", "pt_BR", "zh-Hant") into BCP 47 tags with display metadata.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrInvalid is returned for identifiers that are not a known language.
var ErrInvalid = errors.New("invalid locale")

// Locale identifies the language of one resource. ID keeps the spelling
// used on disk so files are written back under the same name.
type Locale struct {
	ID  string
	Tag language.Tag
}

// Parse resolves id into a Locale. Underscores are accepted as subtag
// separators.
func Parse(id string) (Locale, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Locale{}, fmt.Errorf("%w: empty identifier", ErrInvalid)
	}
	tag, err := language.Parse(strings.ReplaceAll(id, "_", "-"))
	if err != nil {
		return Locale{}, fmt.Errorf("%w %q: %v", ErrInvalid, id, err)
	}
	if base, conf := tag.Base(); conf == language.No || base.String() == "und" {
		return Locale{}, fmt.Errorf("%w %q: unknown language", ErrInvalid, id)
	}
	return Locale{ID: id, Tag: tag}, nil
}

// Canonical returns the canonical BCP 47 form, e.g. "pt-BR" for "pt_br".
func Canonical(id string) string {
	l, err := Parse(id)
	if err != nil {
		return canonicalize(id)
	}
	return l.Tag.String()
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// String returns the on-disk identifier.
func (l Locale) String() string { return l.ID }

// Equal reports whether both locales denote the same tag.
func (l Locale) Equal(o Locale) bool { return l.Tag == o.Tag }

// Name returns the language's own name for itself ("Deutsch", "日本語"),
// falling back to the identifier.
func (l Locale) Name() string {
	if name := display.Self.Name(l.Tag); name != "" {
		return name
	}
	return l.ID
}

// EnglishName returns the English name of the language.
func (l Locale) EnglishName() string {
	if name := display.English.Tags().Name(l.Tag); name != "" {
		return name
	}
	return l.ID
}

// Flag returns the emoji flag of the locale's region, or the most likely
// region for a bare language. Empty when no region can be derived.
func (l Locale) Flag() string {
	region, conf := l.Tag.Region()
	if conf == language.No {
		return ""
	}
	return flagFromRegion(region.String())
}

// flagFromRegion converts a two-letter region code to regional indicator
// symbols.
func flagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(region) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}

// FromFileName extracts a locale from a resource file base name without
// extension. It accepts bare identifiers ("en", "pt_BR") and a leading
// bundle name separated by '_' or '-' ("messages_de", "app-en_US").
func FromFileName(base string) (Locale, bool) {
	if l, err := Parse(base); err == nil {
		return l, true
	}
	for i, r := range base {
		if r != '_' && r != '-' {
			continue
		}
		if l, err := Parse(base[i+1:]); err == nil {
			return l, true
		}
	}
	return Locale{}, false
}
