// Package money provides an exact fixed-point representation for USD amounts.
//
// All balances, prices, and gains in the simulation are integer cents. Integer
// arithmetic keeps affordability checks exact: a purchase whose cost equals the
// available cash always succeeds, with no floating-point rounding at the
// comparison boundary. Floats appear only at the edges - percentage
// calculations and display formatting.
package money

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Cents is a USD amount in integer cents. May be negative (e.g. unrealized
// losses); balances enforced by the engine never go below zero.
type Cents int64

// FromDollars converts a dollar amount to Cents, rounding half away from zero.
func FromDollars(d float64) Cents {
	if d < 0 {
		return -Cents(-d*100 + 0.5)
	}
	return Cents(d*100 + 0.5)
}

// Dollars returns the amount as a float64 dollar value.
// For display and percentage math only - never compare Dollars values.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// Times returns the cost of qty units priced at c each.
func (c Cents) Times(qty int64) Cents {
	return c * Cents(qty)
}

var printer = message.NewPrinter(language.AmericanEnglish)

// String formats the amount as a grouped dollar string, e.g. "$100,000.00".
// Negative amounts render as "-$1,234.56".
func (c Cents) String() string {
	abs := c
	sign := ""
	if abs < 0 {
		abs = -abs
		sign = "-"
	}
	formatted := printer.Sprint(number.Decimal(
		abs.Dollars(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	return fmt.Sprintf("%s$%s", sign, formatted)
}
