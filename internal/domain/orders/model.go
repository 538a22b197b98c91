package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the backend-owned order lifecycle. A new checkout attempt always
// creates a new order; failed orders are never reused.
type Status string

const (
	StatusPending         Status = "pending"
	StatusAwaitingGateway Status = "awaiting_gateway"
	StatusCaptured        Status = "captured"
	StatusFailed          Status = "failed"
	StatusCancelled       Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCaptured || s == StatusFailed || s == StatusCancelled
}

// BillingDetails is captured at order-creation time only. Address is the one
// optional field; everything else is required by the backend as well.
type BillingDetails struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address"`
	Country string `json:"country" validate:"required"`
}

// Order is the platform's record of an intent to pay. The backend is the
// authority for Amount; locally computed totals are display-only.
type Order struct {
	ID         string          `json:"order_id"`
	PlanID     string          `json:"plan_id"`
	PlanName   string          `json:"plan_name,omitempty"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     Status          `json:"status"`
	Billing    BillingDetails  `json:"billing"`
	CreatedAt  time.Time       `json:"created_at"`
}
