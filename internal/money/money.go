// Package money holds the rounding and line-total arithmetic shared by
// invoices, sales and reports. Amounts are decimal to keep cents exact.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two decimal places.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// LineTotal returns quantity * unitPrice rounded to cents.
// Quantity must be positive and unitPrice must not be negative.
func LineTotal(quantity int64, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, ErrInvalidUnitPrice
	}
	return Round2(unitPrice.Mul(decimal.NewFromInt(quantity))), nil
}

// Sum adds values without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// OrZero dereferences an optional amount, treating nil as zero.
func OrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

// Percent returns part/whole*100 rounded to cents, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return Round2(part.Div(whole).Mul(hundred))
}

// Ratio returns numerator/denominator rounded to cents, or zero when the denominator is zero.
func Ratio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return Round2(numerator.Div(denominator))
}

// FromCents converts an integer cent amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders an amount with a currency symbol, e.g. "$32.16".
func Format(symbol string, v decimal.Decimal) string {
	if v.IsNegative() {
		return "-" + symbol + Round2(v.Neg()).StringFixed(2)
	}
	return symbol + Round2(v).StringFixed(2)
}
