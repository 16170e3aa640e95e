// Package currency formats monetary values the way a locale writes its
// currency: symbol, symbol placement, grouping, decimal separator and the
// currency's minor-unit digits.
package currency

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/efreitasn/tipcalc/internal/domain"
)

// DefaultLocale is used when neither configuration nor the environment
// names a locale.
var DefaultLocale = language.AmericanEnglish

// localeEnvKeys are consulted in POSIX precedence order.
var localeEnvKeys = []string{"LC_ALL", "LC_MONETARY", "LANG"}

// ResolveLocale parses a BCP 47 tag ("en-US") or a POSIX locale name
// ("en_US.UTF-8", "de_DE@euro"). The POSIX "C" locale maps to DefaultLocale.
func ResolveLocale(raw string) (language.Tag, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "":
		return language.Und, fmt.Errorf("empty locale: %w", domain.ErrUnknownLocale)
	case "C", "POSIX":
		return DefaultLocale, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("locale %q: %w", raw, domain.ErrUnknownLocale)
	}
	return tag, nil
}

// LocaleFromEnv returns the locale named by LC_ALL, LC_MONETARY or LANG,
// whichever is set first, falling back to DefaultLocale. Unparseable values
// are skipped.
func LocaleFromEnv(lookup func(string) (string, bool)) language.Tag {
	for _, key := range localeEnvKeys {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		if tag, err := ResolveLocale(v); err == nil {
			return tag
		}
	}
	return DefaultLocale
}
