package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/govalues/decimal"
	"golang.org/x/text/language"

	"github.com/efreitasn/tipcalc/internal/currency"
	"github.com/efreitasn/tipcalc/internal/domain"
	"github.com/efreitasn/tipcalc/internal/tip"
)

// QuoteRequest is the raw input of one recomputation: the text of the two
// numeric fields, the round-up toggle and optional formatting overrides.
type QuoteRequest struct {
	Amount   string
	Percent  *string // nil when the field is omitted; tip.DefaultPercent applies
	RoundUp  bool
	Locale   string // BCP 47 or POSIX name; empty uses the service default
	Currency string // ISO 4217 code; empty uses the locale's currency
}

// Quote is the result of a recomputation.
type Quote struct {
	Amount    decimal.Decimal
	Percent   decimal.Decimal
	RoundUp   bool
	RawTip    decimal.Decimal // before round-up
	Tip       decimal.Decimal
	Formatted string
	Locale    string
	Currency  string
}

// LocaleInfo describes one locale with a built-in currency pattern.
type LocaleInfo struct {
	Locale   string
	Currency string
	Sample   string
}

// TipService turns raw form input into formatted tips. It keeps no state
// between calls besides its immutable defaults.
type TipService struct {
	patterns  *currency.PatternRegistry
	formatter *currency.Formatter
	logger    *slog.Logger
}

// NewTipService creates a TipService whose default formatting follows
// locale and, when non-empty, the iso currency override.
func NewTipService(locale language.Tag, iso string, patterns *currency.PatternRegistry, logger *slog.Logger) (*TipService, error) {
	f, err := currency.NewFormatter(locale, iso, patterns)
	if err != nil {
		return nil, fmt.Errorf("default formatter: %w", err)
	}
	return &TipService{
		patterns:  patterns,
		formatter: f,
		logger:    logger,
	}, nil
}

// DefaultLocale returns the locale used when a request names none.
func (s *TipService) DefaultLocale() language.Tag {
	return s.formatter.Locale()
}

// Quote parses the request fail-soft, computes the tip and formats it.
// Unparseable numeric text counts as zero. Errors are returned only for an
// invalid locale or currency override and for numbers too large to compute.
func (s *TipService) Quote(req QuoteRequest) (*Quote, error) {
	f, err := s.formatterFor(req.Locale, req.Currency)
	if err != nil {
		return nil, err
	}

	amount, err := domain.ParseNumber(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	percent := tip.DefaultPercent
	if req.Percent != nil {
		percent, err = domain.ParseNumber(*req.Percent)
		if err != nil {
			return nil, fmt.Errorf("tip percent: %w", err)
		}
	}

	raw, err := tip.Calculate(amount, percent, false)
	if err != nil {
		return nil, err
	}
	final, err := tip.Calculate(amount, percent, req.RoundUp)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Amount:    amount,
		Percent:   percent,
		RoundUp:   req.RoundUp,
		RawTip:    raw,
		Tip:       final,
		Formatted: f.Format(final),
		Locale:    f.Locale().String(),
		Currency:  f.Currency(),
	}

	s.logger.Debug("tip computed",
		slog.String("amount", amount.String()),
		slog.String("percent", percent.String()),
		slog.Bool("round_up", req.RoundUp),
		slog.String("tip", q.Formatted),
		slog.String("locale", q.Locale),
	)

	return q, nil
}

// Locales lists the locales with a built-in currency pattern, each with the
// formatted 15% tip on a 100-unit bill as a sample.
func (s *TipService) Locales() []LocaleInfo {
	keys := s.patterns.Locales()
	out := make([]LocaleInfo, 0, len(keys))
	for _, key := range keys {
		tag, err := language.Parse(key)
		if err != nil {
			continue
		}
		f, err := currency.NewFormatter(tag, "", s.patterns)
		if err != nil {
			s.logger.Warn("locale without currency", slog.String("locale", key), slog.String("error", err.Error()))
			continue
		}
		sample, err := tip.NewCalculator(f).Compute(decimal.Hundred, tip.DefaultPercent, false)
		if err != nil {
			continue
		}
		out = append(out, LocaleInfo{
			Locale:   key,
			Currency: f.Currency(),
			Sample:   sample,
		})
	}
	return out
}

func (s *TipService) formatterFor(locale, iso string) (*currency.Formatter, error) {
	locale = strings.TrimSpace(locale)
	iso = strings.TrimSpace(iso)
	if locale == "" && iso == "" {
		return s.formatter, nil
	}

	tag := s.formatter.Locale()
	if locale != "" {
		var err error
		tag, err = currency.ResolveLocale(locale)
		if err != nil {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("locale %q is not a valid BCP 47 or POSIX locale", locale),
			}
		}
	}

	f, err := currency.NewFormatter(tag, iso, s.patterns)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCurrency) {
			return nil, &domain.ValidationError{Message: err.Error()}
		}
		return nil, err
	}
	return f, nil
}
