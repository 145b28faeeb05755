// Package odds provides pure numeric conversions between American and
// decimal odds formats and the two-way de-vig used to recover fair
// probabilities from bookmaker prices.
package odds

import (
	"errors"
	"math"
)

// Conversion errors. A zero American price is market-impossible and is
// rejected rather than silently propagating infinity through the pipeline.
var (
	ErrZeroPrice      = errors.New("american odds of 0 are invalid")
	ErrInvalidDecimal = errors.New("decimal price must be positive")
)

// AmericanToDecimal converts American odds to a decimal price.
// +150 becomes 2.50, -110 becomes 1.909...
func AmericanToDecimal(american float64) (float64, error) {
	if american == 0 {
		return 0, ErrZeroPrice
	}
	if american > 0 {
		return 1 + american/100, nil
	}
	return 1 + 100/math.Abs(american), nil
}

// DecimalToAmerican converts a decimal price to rounded American odds.
// It is the inverse of AmericanToDecimal up to rounding. Callers must pass
// a price strictly greater than 1; anything else returns 0.
func DecimalToAmerican(d float64) float64 {
	if d <= 1 {
		return 0
	}
	if d >= 2 {
		return math.Round((d - 1) * 100)
	}
	return math.Round(-100 / (d - 1))
}

// ImpliedFromDecimal returns the raw implied probability of a decimal price.
func ImpliedFromDecimal(d float64) (float64, error) {
	if d <= 0 {
		return 0, ErrInvalidDecimal
	}
	return 1 / d, nil
}
