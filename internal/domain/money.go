package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
)

// ParseNumber converts user-entered text to a decimal. Parsing is
// fail-soft: empty input and non-numeric text yield zero. Text that is a
// well-formed finite number but too large for a decimal returns
// ErrOutOfRange; magnitudes too small to represent round to zero.
func ParseNumber(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.Parse(raw)
	if err == nil {
		return d, nil
	}
	if tooLarge(raw) {
		return decimal.Decimal{}, fmt.Errorf("number %q: %w", raw, ErrOutOfRange)
	}
	return decimal.Zero, nil
}

// tooLarge reports whether raw is plain decimal notation whose magnitude
// is at least one. Hex floats and the words Inf/NaN are not numbers here.
func tooLarge(raw string) bool {
	if strings.ContainsAny(raw, "xXnN_") {
		return false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}
	if math.IsNaN(f) {
		return false
	}
	return math.Abs(f) >= 1
}

// ParseFlag interprets a toggle value. Anything strconv.ParseBool rejects
// leaves the toggle off.
func ParseFlag(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return v
}
