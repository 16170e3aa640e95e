package tip

import (
	"fmt"

	"github.com/govalues/decimal"

	"github.com/efreitasn/tipcalc/internal/domain"
)

// Formatter renders a monetary value as a currency string.
type Formatter interface {
	Format(v decimal.Decimal) string
}

// Calculator computes tips and formats them with a fixed Formatter.
// It holds no per-call state and is safe for concurrent use.
type Calculator struct {
	formatter Formatter
}

// NewCalculator creates a Calculator that formats with f.
func NewCalculator(f Formatter) *Calculator {
	return &Calculator{formatter: f}
}

// Compute returns the formatted tip for amount at percent.
func (c *Calculator) Compute(amount, percent decimal.Decimal, roundUp bool) (string, error) {
	tip, err := Calculate(amount, percent, roundUp)
	if err != nil {
		return "", err
	}
	return c.formatter.Format(tip), nil
}

// ComputeFloat is Compute for float64 inputs. Non-finite values and values
// outside the decimal range are rejected with domain.ErrOutOfRange.
func (c *Calculator) ComputeFloat(amount, percent float64, roundUp bool) (string, error) {
	a, err := decimal.NewFromFloat64(amount)
	if err != nil {
		return "", fmt.Errorf("amount %v: %w", amount, domain.ErrOutOfRange)
	}
	p, err := decimal.NewFromFloat64(percent)
	if err != nil {
		return "", fmt.Errorf("percent %v: %w", percent, domain.ErrOutOfRange)
	}
	return c.Compute(a, p, roundUp)
}
