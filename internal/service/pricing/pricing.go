// Package pricing derives cart totals. Everything here is pure.
package pricing

import (
	"github.com/shopspring/decimal"

	"sahara-storefront/internal/domain"
)

// CurrencySymbol prefixes every displayed amount.
const CurrencySymbol = "£"

// ServiceChargeRate is applied to the rounded subtotal.
var ServiceChargeRate = decimal.RequireFromString("0.0725")

// Summary is the three amounts shown under the cart.
type Summary struct {
	Subtotal      domain.Price `json:"subtotal"`
	ServiceCharge domain.Price `json:"serviceCharge"`
	Total         domain.Price `json:"total"`
}

// Calculate rounds each stage to two places, half away from zero.
func Calculate(lines []domain.CartLine) Summary {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(lineAmount(l))
	}
	subtotal := sum.Round(2)
	charge := subtotal.Mul(ServiceChargeRate).Round(2)
	return Summary{
		Subtotal:      domain.NewPrice(subtotal),
		ServiceCharge: domain.NewPrice(charge),
		Total:         domain.NewPrice(subtotal.Add(charge)),
	}
}

// LineTotal is price times quantity for one row.
func LineTotal(l domain.CartLine) domain.Price {
	return domain.NewPrice(lineAmount(l))
}

// Format renders an amount for display, e.g. "£12.34".
func Format(p domain.Price) string {
	return CurrencySymbol + p.StringFixed(2)
}

func lineAmount(l domain.CartLine) decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
