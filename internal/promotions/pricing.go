package promotions

import (
	"github.com/shopspring/decimal"
)

// Price consistency math for flash deals. All amounts are fixed-point
// decimals rounded to 2 places, half away from zero. Every component that
// needs to convert between original price, discount percentage and sale
// price must go through these three functions so rounding is identical
// everywhere.

var oneHundred = decimal.NewFromInt(100)

// SalePriceFromDiscount computes original - (discount/100 * original).
// The second return is false when either input is absent.
func SalePriceFromDiscount(original, discountPct *decimal.Decimal) (decimal.Decimal, bool) {
	if original == nil || discountPct == nil {
		return decimal.Zero, false
	}
	discount := discountPct.Div(oneHundred).Mul(*original)
	return original.Sub(discount).Round(2), true
}

// DiscountFromSale computes (original - sale) / original * 100.
// The second return is false when either input is absent or the original
// price is zero (division guard).
func DiscountFromSale(original, sale *decimal.Decimal) (decimal.Decimal, bool) {
	if original == nil || sale == nil || original.IsZero() {
		return decimal.Zero, false
	}
	pct := original.Sub(*sale).Div(*original).Mul(oneHundred)
	return pct.Round(2), true
}

// ApplyDiscount returns both the sale price and the absolute savings,
// each rounded independently.
func ApplyDiscount(original, discountPct *decimal.Decimal) (sale, savings decimal.Decimal, ok bool) {
	if original == nil || discountPct == nil {
		return decimal.Zero, decimal.Zero, false
	}
	raw := discountPct.Div(oneHundred).Mul(*original)
	return original.Sub(raw).Round(2), raw.Round(2), true
}
