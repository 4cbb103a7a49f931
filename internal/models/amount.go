package models

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Limits of typed numbers.
const (
	MaxIntegerDigits = 15
	MoneyPlaces      = 2
	PercentPlaces    = 4
)

var plainDecimal = regexp.MustCompile(`^-?(\d+)(?:[.,](\d+))?$`) //nolint:gochecknoglobals // compiled once

// ParseAmount parses a plain decimal such as "1000.50" or "1000,50" with at most
// MaxIntegerDigits integer digits and places fractional digits. Exponents are rejected.
func ParseAmount(raw string, places int) (decimal.Decimal, bool) {
	value := strings.TrimSpace(raw)

	parts := plainDecimal.FindStringSubmatch(value)
	if parts == nil || len(parts[1]) > MaxIntegerDigits || len(parts[2]) > places {
		return decimal.Decimal{}, false
	}

	amount, err := decimal.NewFromString(strings.Replace(value, ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}
