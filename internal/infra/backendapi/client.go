package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enrollment-app/internal/apperrors"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/orders"
	"enrollment-app/internal/domain/plans"
)

// Client talks to the platform backend's payments API. Authenticated calls
// carry the learner's bearer token; use WithToken to scope a client to one
// request's credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a copy of the client that sends the given bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// GetPlan fetches a single active pricing plan.
func (c *Client) GetPlan(ctx context.Context, planID string) (*plans.PricingPlan, error) {
	var plan plans.PricingPlan
	path := fmt.Sprintf("/payments/plans/%s/", url.PathEscape(planID))
	if err := c.do(ctx, http.MethodGet, path, nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListPlans fetches active plans, optionally filtered by program.
func (c *Client) ListPlans(ctx context.Context, programID string) ([]plans.PricingPlan, error) {
	path := "/payments/plans/"
	if programID != "" {
		path += "?program_id=" + url.QueryEscape(programID)
	}
	var out []plans.PricingPlan
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type validateCouponRequest struct {
	Code   string `json:"code"`
	PlanID string `json:"plan_id,omitempty"`
}

// ValidateCoupon checks a code against the backend. The code is normalized
// before sending. A backend rejection comes back as a non-valid result with
// the server's reason; a transport or server failure is returned as an
// unavailable error so callers can offer a retry instead of declaring the
// code invalid.
func (c *Client) ValidateCoupon(ctx context.Context, code, planID string) (*coupons.ValidationResult, error) {
	body := validateCouponRequest{Code: coupons.NormalizeCode(code), PlanID: planID}

	var result coupons.ValidationResult
	err := c.do(ctx, http.MethodPost, "/payments/coupons/validate/", body, &result)
	if err == nil {
		return &result, nil
	}

	// The backend answers business rejections with a 4xx carrying
	// {valid:false, message}; map those to a rejection result.
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalid, apperrors.KindNotFound:
		return &coupons.ValidationResult{Valid: false, Reason: apperrors.MessageOf(err)}, nil
	}
	return nil, err
}

type createOrderRequest struct {
	PlanID         string `json:"plan_id"`
	CouponCode     string `json:"coupon_code,omitempty"`
	BillingName    string `json:"billing_name"`
	BillingEmail   string `json:"billing_email"`
	BillingAddress string `json:"billing_address,omitempty"`
	BillingCountry string `json:"billing_country"`
}

// CreateOrder creates a backend order in pending status. The backend
// recomputes the amount; any locally computed total is ignored here.
func (c *Client) CreateOrder(ctx context.Context, planID, couponCode string, billing orders.BillingDetails) (*orders.Order, error) {
	body := createOrderRequest{
		PlanID:         planID,
		CouponCode:     couponCode,
		BillingName:    billing.Name,
		BillingEmail:   billing.Email,
		BillingAddress: billing.Address,
		BillingCountry: billing.Country,
	}

	var order orders.Order
	if err := c.do(ctx, http.MethodPost, "/payments/orders/create/", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches one of the learner's orders by its UUID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	var order orders.Order
	path := fmt.Sprintf("/payments/orders/%s/", url.PathEscape(orderID))
	if err := c.do(ctx, http.MethodGet, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches the learner's order history.
func (c *Client) ListOrders(ctx context.Context) ([]orders.Order, error) {
	var out []orders.Order
	if err := c.do(ctx, http.MethodGet, "/payments/orders/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// errorEnvelope is the backend's machine-readable error body.
type errorEnvelope struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e errorEnvelope) text() string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Unavailable("backend unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Unavailable("backend unavailable", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(envelopeText(raw, "not found"))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return apperrors.Invalid(envelopeText(raw, fmt.Sprintf("backend rejected request (%d)", resp.StatusCode)))
	default:
		return apperrors.Unavailable("backend unavailable", fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}
}

func envelopeText(raw []byte, fallback string) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if t := env.text(); t != "" {
			return t
		}
	}
	return fallback
}
