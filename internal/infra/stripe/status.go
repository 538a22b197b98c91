package stripe

import stripeapi "github.com/stripe/stripe-go/v75"

// Stripe-ish normalization used ONLY for the local payment audit trail
func NormalizePaymentStatus(s stripeapi.PaymentIntentStatus) string {
	switch s {
	case stripeapi.PaymentIntentStatusSucceeded:
		return "completed"
	case stripeapi.PaymentIntentStatusRequiresCapture:
		return "approved"
	case stripeapi.PaymentIntentStatusCanceled:
		return "cancelled"
	case stripeapi.PaymentIntentStatusRequiresPaymentMethod,
		stripeapi.PaymentIntentStatusRequiresConfirmation,
		stripeapi.PaymentIntentStatusRequiresAction,
		stripeapi.PaymentIntentStatusProcessing:
		return "pending"
	default:
		return string(s)
	}
}
