package pricing

import (
	"github.com/shopspring/decimal"

	"enrollment-app/internal/domain/coupons"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotal returns the payable amount for a plan price with an optional
// coupon applied. The result is clamped at zero. This value is display-only;
// the backend recomputes the charged amount at order creation.
//
// The price must already be a parsed, non-negative decimal; rejecting
// malformed input is the caller's job.
func ComputeTotal(price decimal.Decimal, coupon *coupons.Coupon) decimal.Decimal {
	if coupon == nil {
		return price
	}

	total := price
	switch coupon.Kind {
	case coupons.DiscountPercentage:
		total = price.Sub(price.Mul(coupon.Value).Div(hundred))
	case coupons.DiscountFixed:
		total = price.Sub(coupon.Value)
	}

	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Discount returns the amount subtracted from price by the coupon, clamped so
// it never exceeds the price itself.
func Discount(price decimal.Decimal, coupon *coupons.Coupon) decimal.Decimal {
	return price.Sub(ComputeTotal(price, coupon))
}
