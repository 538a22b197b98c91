package checkout

import (
	"context"

	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/orders"
	"enrollment-app/internal/domain/plans"
)

// BackendAPI is the slice of the platform backend the orchestrator needs.
// Implementations report failures through apperrors so they can be
// classified without inspecting transport details.
type BackendAPI interface {
	GetPlan(ctx context.Context, planID string) (*plans.PricingPlan, error)
	ValidateCoupon(ctx context.Context, code, planID string) (*coupons.ValidationResult, error)
	CreateOrder(ctx context.Context, planID, couponCode string, billing orders.BillingDetails) (*orders.Order, error)
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
}

// GatewayOrder is the provider's record created against a local order. It has
// no life of its own beyond the correlation record.
type GatewayOrder struct {
	ID          string
	ApprovalURL string
}

// CaptureResult reports the money-moving step. Message carries the provider's
// own wording on a decline so it can be shown verbatim.
type CaptureResult struct {
	Completed      bool
	CaptureID      string
	ProviderStatus string
	Message        string
}

// Gateway wraps the payment provider's two operations. Neither is retried
// silently: duplicate remote orders and duplicate captures are the hazards
// this whole flow is built around.
type Gateway interface {
	CreateRemoteOrder(ctx context.Context, order *orders.Order) (*GatewayOrder, error)
	CaptureRemoteOrder(ctx context.Context, localOrderID, gatewayOrderID string) (*CaptureResult, error)
}

// PaymentRecorder keeps the local audit trail of gateway round trips. It is
// advisory: a recording failure never blocks the payment itself.
type PaymentRecorder interface {
	RecordRemoteOrder(ctx context.Context, order *orders.Order, provider, providerOrderID string) error
	RecordOutcome(ctx context.Context, providerOrderID string, completed bool, providerStatus, captureID string) error
}
