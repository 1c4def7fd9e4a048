// Package core holds the domain model, its validation rules and amount parsing.
//
// Amounts are currency-agnostic decimals. Clients may send them as JSON
// numbers or as strings (form fields), so parsing starts from text.
//
// Importing core sets the process-wide decimal.MarshalJSONWithoutQuotes, so
// every decimal.Decimal in the process encodes as a JSON number rather than a
// string. All JSON the service and the client exchange relies on that.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount bounds: at most MaxAmountIntegerDigits digits before the decimal
// point and MaxAmountFractionDigits after it.
const (
	MaxAmountIntegerDigits  = 12
	MaxAmountFractionDigits = 8

	maxAmountInputLength = 64
)

var maxAmount = decimal.New(1, MaxAmountIntegerDigits)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// the full precision of the input. Returns ErrInvalidAmount for invalid
// formats, negative values, zero, or values outside the amount bounds.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34, nil
//	ParseAmount("12,34")     -> 12.34, nil
//	ParseAmount("0")         -> 0, ErrInvalidAmount
//	ParseAmount("1e7000000") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountInputLength {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	// The exponent is checked before any arithmetic so huge or tiny
	// scientific notation never gets expanded.
	if exp := d.Exponent(); exp > MaxAmountIntegerDigits || exp < -maxAmountInputLength {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() || d.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.Equal(d.Truncate(MaxAmountFractionDigits)) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
