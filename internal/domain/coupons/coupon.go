package coupons

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind is the tag of the coupon discount union.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

func (k DiscountKind) Known() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

// Coupon is a validated discount code as returned by the platform backend.
// Validity is decided server-side at validation time and is not cached past
// the current checkout attempt.
type Coupon struct {
	Code   string          `json:"code"`
	Kind   DiscountKind    `json:"discount_type"`
	Value  decimal.Decimal `json:"discount_value"`
	PlanID string          `json:"plan_id,omitempty"` // empty = not scoped to a plan
}

// ValidationResult is the outcome of a coupon check. Invalid results carry the
// backend's rejection message; transport failures are reported separately so
// callers can tell "try again" apart from "this code is invalid".
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Coupon *Coupon `json:"coupon,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// NormalizeCode trims and upper-cases a user-entered code to the casing the
// backend stores.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
