package currency

import (
	"github.com/google/btree"
	"golang.org/x/text/language"
)

const nbsp = "\u00a0"

// Pattern describes where a locale puts the currency symbol relative to the
// number, following the CLDR standard currency pattern.
type Pattern struct {
	Suffix    bool   // symbol after the number
	Separator string // text between symbol and number
}

var prefixPattern = Pattern{}

type patternEntry struct {
	Locale  string
	Pattern Pattern
}

func patternLess(a, b patternEntry) bool {
	return a.Locale < b.Locale
}

// PatternRegistry maps locale keys ("de", "pt-BR") to currency patterns.
// It is read-only after construction and safe for concurrent use.
type PatternRegistry struct {
	entries *btree.BTreeG[patternEntry]
}

// NewPatternRegistry creates a registry seeded with the built-in patterns.
func NewPatternRegistry() *PatternRegistry {
	const degree = 8
	r := &PatternRegistry{entries: btree.NewG[patternEntry](degree, patternLess)}
	for locale, p := range builtinPatterns {
		r.entries.ReplaceOrInsert(patternEntry{Locale: locale, Pattern: p})
	}
	return r
}

var builtinPatterns = map[string]Pattern{
	"en":    prefixPattern,
	"en-IN": prefixPattern,
	"es":    {Suffix: true, Separator: nbsp},
	"es-MX": prefixPattern,
	"es-US": prefixPattern,
	"de":    {Suffix: true, Separator: nbsp},
	"de-AT": {Separator: nbsp},
	"de-CH": {Separator: nbsp},
	"fr":    {Suffix: true, Separator: nbsp},
	"it":    {Suffix: true, Separator: nbsp},
	"nl":    {Separator: nbsp},
	"pt":    {Separator: nbsp},
	"pt-PT": {Suffix: true, Separator: nbsp},
	"da":    {Suffix: true, Separator: nbsp},
	"sv":    {Suffix: true, Separator: nbsp},
	"nb":    {Suffix: true, Separator: nbsp},
	"fi":    {Suffix: true, Separator: nbsp},
	"pl":    {Suffix: true, Separator: nbsp},
	"cs":    {Suffix: true, Separator: nbsp},
	"ru":    {Suffix: true, Separator: nbsp},
	"uk":    {Suffix: true, Separator: nbsp},
	"tr":    prefixPattern,
	"ja":    prefixPattern,
	"zh":    prefixPattern,
	"ko":    prefixPattern,
	"hi":    prefixPattern,
}

// Lookup returns the pattern for tag, trying the full tag, then
// language-region, then the bare language. Unknown locales get the symbol
// as a prefix with no separator.
func (r *PatternRegistry) Lookup(tag language.Tag) Pattern {
	for _, key := range lookupKeys(tag) {
		if e, ok := r.entries.Get(patternEntry{Locale: key}); ok {
			return e.Pattern
		}
	}
	return prefixPattern
}

// Locales returns the registered locale keys in ascending order.
func (r *PatternRegistry) Locales() []string {
	out := make([]string, 0, r.entries.Len())
	r.entries.Ascend(func(e patternEntry) bool {
		out = append(out, e.Locale)
		return true
	})
	return out
}

func lookupKeys(tag language.Tag) []string {
	base, _ := tag.Base()
	keys := []string{tag.String()}
	if region, conf := tag.Region(); conf == language.Exact {
		keys = append(keys, base.String()+"-"+region.String())
	}
	return append(keys, base.String())
}
