package checkoutapi

import (
	"enrollment-app/internal/domain/orders"
)

type StartCheckoutRequest struct {
	PlanID     string                `json:"plan_id" validate:"required"`
	CouponCode string                `json:"coupon_code"`
	Billing    orders.BillingDetails `json:"billing" validate:"required"`
}

type StartCheckoutResponse struct {
	CheckoutKey  string        `json:"checkout_key"`
	State        string        `json:"state"`
	Order        *orders.Order `json:"order"`
	ApprovalURL  string        `json:"approval_url"`
	DisplayTotal string        `json:"display_total"`
}

type ValidateCouponRequest struct {
	Code   string `json:"code" validate:"required"`
	PlanID string `json:"plan_id"`
}

type QuoteRequest struct {
	PlanID     string `json:"plan_id" validate:"required"`
	CouponCode string `json:"coupon_code"`
}

type CheckoutKeyRequest struct {
	CheckoutKey string `json:"checkout_key" validate:"required"`
}

type CaptureResponse struct {
	State            string        `json:"state"`
	Order            *orders.Order `json:"order,omitempty"`
	AlreadyCompleted bool          `json:"already_completed,omitempty"`
}
