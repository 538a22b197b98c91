package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/paymentintent"

	"enrollment-app/internal/apperrors"
	"enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/orders"
)

// Gateway implements checkout.Gateway on Stripe hosted Checkout Sessions with
// manual-capture PaymentIntents, so the flow shape (redirect out, approve,
// capture on return) matches the PayPal adapter.
type Gateway struct {
	returnURL string
	cancelURL string
}

func NewGateway(secretKey, returnURL, cancelURL string) *Gateway {
	stripeapi.Key = secretKey
	return &Gateway{returnURL: returnURL, cancelURL: cancelURL}
}

func (g *Gateway) CreateRemoteOrder(_ context.Context, order *orders.Order) (*checkout.GatewayOrder, error) {
	name := order.PlanName
	if name == "" {
		name = "Enrollment"
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(g.returnURL),
		CancelURL:         stripeapi.String(g.cancelURL),
		ClientReferenceID: stripeapi.String(order.ID),
		PaymentIntentData: &stripeapi.CheckoutSessionPaymentIntentDataParams{
			CaptureMethod: stripeapi.String("manual"),
		},
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{{
			Quantity: stripeapi.Int64(1),
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripeapi.String(strings.ToLower(order.Currency)),
				UnitAmount: stripeapi.Int64(minorUnits(order)),
				ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeapi.String(name),
				},
			},
		}},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, mapError(err, "could not create checkout session")
	}
	return &checkout.GatewayOrder{ID: s.ID, ApprovalURL: s.URL}, nil
}

func (g *Gateway) CaptureRemoteOrder(_ context.Context, localOrderID, gatewayOrderID string) (*checkout.CaptureResult, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.AddExpand("payment_intent")

	s, err := checkoutsession.Get(gatewayOrderID, params)
	if err != nil {
		return nil, mapError(err, "could not load checkout session")
	}
	if s.PaymentIntent == nil {
		return nil, apperrors.Rejected("checkout session has no payment", nil)
	}

	pi := s.PaymentIntent
	switch pi.Status {
	case stripeapi.PaymentIntentStatusSucceeded:
		// Approved and captured already (e.g. a repeat landing on the
		// return URL); report success without a second capture call.
		return &checkout.CaptureResult{
			Completed:      true,
			CaptureID:      pi.ID,
			ProviderStatus: NormalizePaymentStatus(pi.Status),
		}, nil
	case stripeapi.PaymentIntentStatusRequiresCapture:
		captured, err := paymentintent.Capture(pi.ID, &stripeapi.PaymentIntentCaptureParams{})
		if err != nil {
			return captureFailure(err)
		}
		return &checkout.CaptureResult{
			Completed:      captured.Status == stripeapi.PaymentIntentStatusSucceeded,
			CaptureID:      captured.ID,
			ProviderStatus: NormalizePaymentStatus(captured.Status),
			Message:        statusMessage(captured.Status),
		}, nil
	default:
		return &checkout.CaptureResult{
			Completed:      false,
			ProviderStatus: NormalizePaymentStatus(pi.Status),
			Message:        fmt.Sprintf("payment was not approved (status %s)", pi.Status),
		}, nil
	}
}

func minorUnits(order *orders.Order) int64 {
	return order.Amount.Shift(2).Round(0).IntPart()
}

func statusMessage(s stripeapi.PaymentIntentStatus) string {
	if s == stripeapi.PaymentIntentStatusSucceeded {
		return ""
	}
	return fmt.Sprintf("payment was not completed (status %s)", s)
}

// captureFailure turns a declined capture into a non-completed result with
// Stripe's own message, keeping transport failures as errors.
func captureFailure(err error) (*checkout.CaptureResult, error) {
	var se *stripeapi.Error
	if errors.As(err, &se) && se.HTTPStatusCode < http.StatusInternalServerError {
		return &checkout.CaptureResult{
			Completed:      false,
			ProviderStatus: string(se.Code),
			Message:        se.Msg,
		}, nil
	}
	return nil, apperrors.Unavailable("gateway unavailable", err)
}

func mapError(err error, fallback string) error {
	var se *stripeapi.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode >= http.StatusInternalServerError {
			return apperrors.Unavailable("gateway unavailable", err)
		}
		msg := se.Msg
		if msg == "" {
			msg = fallback
		}
		return apperrors.Rejected(msg, err)
	}
	return apperrors.Unavailable("gateway unavailable", err)
}
