package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"enrollment-app/internal/apperrors"
	"enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/orders"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"
)

type Config struct {
	ClientID     string
	ClientSecret string
	Mode         string // "sandbox" | "live"
	ReturnURL    string
	CancelURL    string
	BrandName    string
	BaseURL      string // overrides Mode; used by tests
}

// Client implements checkout.Gateway against the PayPal Orders v2 API.
// Authentication uses the OAuth2 client-credentials flow; the token source
// caches and refreshes the access token across calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	returnURL  string
	cancelURL  string
	brandName  string
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		if cfg.Mode == "live" {
			base = liveBaseURL
		} else {
			base = sandboxBaseURL
		}
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/v1/oauth2/token",
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		returnURL:  cfg.ReturnURL,
		cancelURL:  cfg.CancelURL,
		brandName:  cfg.BrandName,
	}
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	Description string `json:"description,omitempty"`
	Amount      amount `json:"amount"`
}

type applicationContext struct {
	ReturnURL   string `json:"return_url"`
	CancelURL   string `json:"cancel_url"`
	BrandName   string `json:"brand_name,omitempty"`
	LandingPage string `json:"landing_page"`
	UserAction  string `json:"user_action"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

type captureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (e errorResponse) text() string {
	if len(e.Details) > 0 && e.Details[0].Description != "" {
		return e.Details[0].Description
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Name
}

func (e errorResponse) issue() string {
	if len(e.Details) > 0 {
		return e.Details[0].Issue
	}
	return e.Name
}

// CreateRemoteOrder creates a PayPal order with intent CAPTURE against the
// local order and returns the approval URL the browser must be sent to.
func (c *Client) CreateRemoteOrder(ctx context.Context, order *orders.Order) (*checkout.GatewayOrder, error) {
	payload := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: order.ID,
			Description: order.PlanName,
			Amount: amount{
				CurrencyCode: order.Currency,
				Value:        order.Amount.StringFixed(2),
			},
		}},
		ApplicationContext: applicationContext{
			ReturnURL:   c.returnURL,
			CancelURL:   c.cancelURL,
			BrandName:   c.brandName,
			LandingPage: "BILLING",
			UserAction:  "PAY_NOW",
		},
	}

	status, raw, err := c.post(ctx, "/v2/checkout/orders", payload)
	if err != nil {
		return nil, apperrors.Unavailable("gateway unavailable", err)
	}
	if status >= 400 {
		return nil, c.asError(status, raw, "gateway rejected the order")
	}

	var resp orderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode create order response: %w", err)
	}

	approvalURL := ""
	for _, l := range resp.Links {
		if l.Rel == "approve" {
			approvalURL = l.Href
			break
		}
	}
	if approvalURL == "" {
		return nil, apperrors.Rejected("gateway did not return an approval URL", nil)
	}

	return &checkout.GatewayOrder{ID: resp.ID, ApprovalURL: approvalURL}, nil
}

// CaptureRemoteOrder finalizes the payment after the learner approved it on
// the gateway's site. A provider-level decline comes back as a non-completed
// result carrying the provider's message; only transport and server failures
// are errors.
func (c *Client) CaptureRemoteOrder(ctx context.Context, localOrderID, gatewayOrderID string) (*checkout.CaptureResult, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(gatewayOrderID))
	status, raw, err := c.post(ctx, path, nil)
	if err != nil {
		return nil, apperrors.Unavailable("gateway unavailable", err)
	}

	// Only genuine declines become a non-completed result. Auth failures are
	// our misconfiguration, and a vanished order means the remote side of the
	// correlation is stale; neither should read like a card decline.
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, apperrors.Unavailable("gateway unavailable",
			fmt.Errorf("capture order %s: status %d", gatewayOrderID, status))
	case status == http.StatusNotFound:
		return nil, apperrors.Rejected("payment session expired", nil)
	case status >= 400 && status < 500:
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		return &checkout.CaptureResult{
			Completed:      false,
			ProviderStatus: e.issue(),
			Message:        e.text(),
		}, nil
	}
	if status >= 500 {
		return nil, apperrors.Unavailable("gateway unavailable",
			fmt.Errorf("capture order %s: status %d", gatewayOrderID, status))
	}

	var resp captureResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	result := &checkout.CaptureResult{
		Completed:      resp.Status == "COMPLETED",
		ProviderStatus: resp.Status,
	}
	if len(resp.PurchaseUnits) > 0 && len(resp.PurchaseUnits[0].Payments.Captures) > 0 {
		result.CaptureID = resp.PurchaseUnits[0].Payments.Captures[0].ID
	}
	if !result.Completed {
		result.Message = fmt.Sprintf("payment was not completed (status %s)", resp.Status)
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) asError(status int, raw []byte, fallback string) error {
	if status >= 500 {
		return apperrors.Unavailable("gateway unavailable", fmt.Errorf("status %d", status))
	}
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.text() != "" {
		return apperrors.Rejected(e.text(), nil)
	}
	return apperrors.Rejected(fallback, fmt.Errorf("status %d", status))
}
