package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount of US currency in minor units (pennies).
// Example: $10.50 is stored as 1050.
type Cents int64

// ErrOutOfRange means a result does not fit in Cents.
var ErrOutOfRange = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// FromDollars converts a dollar amount to cents, rounding half away from zero.
func FromDollars(dollars decimal.Decimal) (Cents, error) {
	return fromDecimal(dollars.Mul(hundred))
}

// Dollars returns the amount as a decimal dollar figure.
func (c Cents) Dollars() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(hundred)
}

// ApplyRate multiplies c by rate and rounds to the nearest cent.
// The multiplication happens on decimals so 1.02 is exact.
func ApplyRate(c Cents, rate decimal.Decimal) (Cents, error) {
	return fromDecimal(decimal.NewFromInt(int64(c)).Mul(rate))
}

// ValueOf prices quantity units at unitPrice dollars each and returns the total in cents.
func ValueOf(quantity, unitPrice decimal.Decimal) (Cents, error) {
	return FromDollars(quantity.Mul(unitPrice))
}

// Add returns a + b, or ErrOutOfRange if the sum overflows.
func Add(a, b Cents) (Cents, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOutOfRange, a, b)
	}
	return a + b, nil
}

func fromDecimal(d decimal.Decimal) (Cents, error) {
	d = d.Round(0)
	if d.GreaterThan(maxCents) || d.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s cents", ErrOutOfRange, d)
	}
	return Cents(d.IntPart()), nil
}

// Min returns the smaller of a and b.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		// Magnitude of MinInt64 does not fit in int64.
		if v == math.MinInt64 {
			return "-$92233720368547758.08"
		}
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}
