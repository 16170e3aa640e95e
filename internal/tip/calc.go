// Package tip computes tips from a bill amount and a tip percentage.
package tip

import (
	"fmt"

	"github.com/govalues/decimal"

	"github.com/efreitasn/tipcalc/internal/domain"
)

// DefaultPercent is the tip percentage used when the caller omits one.
var DefaultPercent = decimal.MustNew(15, 0)

// Calculate returns percent / 100 * amount. When roundUp is set the tip is
// rounded toward positive infinity to a whole currency unit. Inputs are not
// validated: negative amounts or percentages propagate arithmetically.
//
// The only error is domain.ErrOutOfRange, returned when the product does not
// fit in a decimal.
func Calculate(amount, percent decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	rate, err := percent.Quo(decimal.Hundred)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("tip rate %v%%: %w", percent, domain.ErrOutOfRange)
	}
	tip, err := rate.Mul(amount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("tip of %v at %v%%: %w", amount, percent, domain.ErrOutOfRange)
	}
	if roundUp {
		tip = tip.Ceil(0)
	}
	return tip, nil
}

// CalculateDefault is Calculate with DefaultPercent.
func CalculateDefault(amount decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	return Calculate(amount, DefaultPercent, roundUp)
}
