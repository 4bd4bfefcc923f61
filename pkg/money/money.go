// Package money provides precise financial arithmetic for extracted statement
// figures. Sums and ratios go through shopspring/decimal so that rounding is
// done once, on the final value; display uses go-money for ISO-4217 formatting.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the display currency used when none is configured
const USD = "USD"

var (
	// ErrDivisionByZero is returned when a ratio has a zero denominator
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNotFinite is returned for NaN or infinite inputs
	ErrNotFinite = errors.New("value is not a finite number")
)

// Money represents a monetary value with currency.
// It wraps go-money for formatting and shopspring/decimal for conversion.
type Money struct {
	m *money.Money
}

// New creates a new Money value from minor units and currency code
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountMinor, currencyCode),
	}
}

// NewFromFloat creates Money from a floating-point value.
// Unknown currency codes fall back to USD.
func NewFromFloat(amount float64, currencyCode string) *Money {
	currency := money.GetCurrency(strings.ToUpper(currencyCode))
	if currency == nil {
		currency = money.GetCurrency(USD)
	}

	// Convert to minor units using decimal for precision
	d := decimal.NewFromFloat(amount)
	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := d.Mul(multiplier).Round(0).IntPart()

	return New(minor, currency.Code)
}

// Supported reports whether code is a known ISO-4217 currency
func Supported(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// amountFormatter renders minor units with thousands separators and no symbol
var amountFormatter = money.NewFormatter(2, ".", ",", "", "1")

// FormatAmount renders a value with two decimals and thousands separators ("1,234.50")
func FormatAmount(v float64) string {
	minor := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return amountFormatter.Format(minor)
}

// Sum adds float values exactly and returns the decimal total.
// Binary float noise (0.1 + 0.2) does not leak into the result.
func Sum(values []float64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, ErrNotFinite
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total, nil
}

// PercentageOf returns part / whole x 100
func PercentageOf(part, whole float64) (decimal.Decimal, error) {
	if math.IsNaN(part) || math.IsInf(part, 0) || math.IsNaN(whole) || math.IsInf(whole, 0) {
		return decimal.Zero, ErrNotFinite
	}
	if whole == 0 {
		return decimal.Zero, ErrDivisionByZero
	}
	p := decimal.NewFromFloat(part)
	w := decimal.NewFromFloat(whole)
	return p.Div(w).Mul(decimal.NewFromInt(100)), nil
}

// FormatPercent rounds to the given number of places and renders a
// percentage string. Whole numbers keep one decimal ("40.0%"), other
// values drop trailing zeros ("12.5%", "33.33%").
func FormatPercent(d decimal.Decimal, places int32) string {
	s := d.Round(places).String()
	if s == "-0" {
		s = "0"
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}
