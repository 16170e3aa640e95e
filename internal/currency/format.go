package currency

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/efreitasn/tipcalc/internal/domain"
)

// Formatter renders decimals as currency strings for one locale and one
// currency. It is immutable and safe for concurrent use.
type Formatter struct {
	locale  language.Tag
	unit    currency.Unit
	scale   int
	symbol  string
	pattern Pattern
	printer *message.Printer
	sep     string     // locale decimal separator
	digits  [10]string // locale digits for 0-9
}

// NewFormatter builds a Formatter for locale. The currency is the locale's
// own unless iso names an ISO 4217 code.
func NewFormatter(locale language.Tag, iso string, patterns *PatternRegistry) (*Formatter, error) {
	unit, err := unitFor(locale, iso)
	if err != nil {
		return nil, err
	}

	scale, _ := currency.Standard.Rounding(unit)
	printer := message.NewPrinter(locale)

	f := &Formatter{
		locale:  locale,
		unit:    unit,
		scale:   scale,
		symbol:  printer.Sprint(currency.Symbol(unit)),
		pattern: patterns.Lookup(locale),
		printer: printer,
	}
	for i := range f.digits {
		f.digits[i] = printer.Sprint(number.Decimal(uint64(i)))
	}
	// "1.5" in the locale's own digits; what sits between them is the separator.
	sample := printer.Sprint(number.Decimal(1.5, number.Scale(1)))
	f.sep = strings.TrimSuffix(strings.TrimPrefix(sample, f.digits[1]), f.digits[5])
	return f, nil
}

func unitFor(locale language.Tag, iso string) (currency.Unit, error) {
	if iso = strings.TrimSpace(iso); iso != "" {
		unit, err := currency.ParseISO(strings.ToUpper(iso))
		if err != nil {
			return currency.Unit{}, fmt.Errorf("currency %q: %w", iso, domain.ErrUnknownCurrency)
		}
		return unit, nil
	}
	unit, conf := currency.FromTag(locale)
	if conf == language.No {
		return currency.Unit{}, fmt.Errorf("no currency for locale %s: %w", locale, domain.ErrUnknownCurrency)
	}
	return unit, nil
}

// HasCurrency reports whether locale implies a currency, which is what a
// Formatter without an override needs. Region-less macro areas such as
// es-419 or en-001, and languages with no country, have none.
func HasCurrency(locale language.Tag) bool {
	_, err := unitFor(locale, "")
	return err == nil
}

// Format rounds v half-to-even to the currency's minor-unit digits and
// writes it with the locale's separators and symbol placement. The integer
// part is grouped by the locale; no digit passes through float64.
func (f *Formatter) Format(v decimal.Decimal) string {
	v = v.Round(f.scale)
	neg := v.IsNeg()
	whole, frac, _ := strings.Cut(v.Abs().String(), ".")

	// A decimal has at most 19 digits, which always fits in a uint64.
	n, _ := strconv.ParseUint(whole, 10, 64)

	var digits strings.Builder
	digits.WriteString(f.printer.Sprint(number.Decimal(n)))
	if f.scale > 0 {
		digits.WriteString(f.sep)
		frac += strings.Repeat("0", f.scale-len(frac))
		for _, c := range frac {
			digits.WriteString(f.digits[c-'0'])
		}
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if f.pattern.Suffix {
		b.WriteString(digits.String())
		b.WriteString(f.pattern.Separator)
		b.WriteString(f.symbol)
	} else {
		b.WriteString(f.symbol)
		b.WriteString(f.pattern.Separator)
		b.WriteString(digits.String())
	}
	return b.String()
}

// Locale returns the formatter's locale.
func (f *Formatter) Locale() language.Tag { return f.locale }

// Currency returns the ISO 4217 code of the formatter's currency.
func (f *Formatter) Currency() string { return f.unit.String() }

// Scale returns the number of minor-unit digits.
func (f *Formatter) Scale() int { return f.scale }
