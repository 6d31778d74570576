// Package payment is the Paddle Billing adapter: checkout session creation,
// webhook signature verification and event parsing.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"context"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/leaselens/leaselens/pkg/config"
)

// Event types the webhook handler reacts to.
var (
	SuccessEvents = []string{
		"transaction.completed",
		"transaction.billed",
		"subscription.activated",
	}
	FailureEvents = []string{
		"transaction.payment_failed",
		"transaction.failed",
	}
)

func IsSuccessEvent(eventType string) bool {
	for _, e := range SuccessEvents {
		if e == eventType {
			return true
		}
	}
	return false
}

func IsFailureEvent(eventType string) bool {
	for _, e := range FailureEvents {
		if e == eventType {
			return true
		}
	}
	return false
}

// CheckoutSession is the provider-side session a client gets redirected to.
type CheckoutSession struct {
	CheckoutURL   string
	TransactionID string
}

// Event is a parsed webhook notification.
type Event struct {
	Type          string
	TransactionID string
	UserID        string
}

type Client struct {
	cfg  cfgpkg.PaymentConfig
	http *resty.Client
	log  *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Client, error) {
	base, err := cfg.Payment.APIBaseURL()
	if err != nil {
		return nil, err
	}
	httpc := resty.New().
		SetBaseURL(base).
		SetAuthToken(cfg.Payment.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	return &Client{cfg: cfg.Payment, http: httpc, log: log}, nil
}

// IsConfigured reports whether checkout creation is possible.
func (c *Client) IsConfigured() bool {
	return c.cfg.IsConfigured()
}

type checkoutPayload struct {
	Items []struct {
		PriceID  string `json:"price_id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	CustomData    map[string]string `json:"custom_data"`
	Settings      struct {
		DisplayName string `json:"display_name"`
		SuccessURL  string `json:"success_url"`
		CancelURL   string `json:"cancel_url"`
	} `json:"settings"`
}

type checkoutResponse struct {
	Data struct {
		ID          string `json:"id"`
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// CreateCheckout opens a provider checkout session for the 30-day pass.
func (c *Client) CreateCheckout(ctx context.Context, userID, email string) (*CheckoutSession, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("payment provider is not configured")
	}

	payload := checkoutPayload{CustomerEmail: email}
	payload.Items = append(payload.Items, struct {
		PriceID  string `json:"price_id"`
		Quantity int    `json:"quantity"`
	}{PriceID: c.cfg.PriceID, Quantity: 1})
	payload.CustomData = map[string]string{
		"user_id":   userID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	payload.Settings.DisplayName = "LeaseLens - 30-Day Lease Review Pass"
	payload.Settings.SuccessURL = fmt.Sprintf("%s/#/billing/success?user_id=%s", c.cfg.FrontendURL, userID)
	payload.Settings.CancelURL = fmt.Sprintf("%s/#/pricing", c.cfg.FrontendURL)

	var out checkoutResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post("/transactions")
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment API returned %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Data.CheckoutURL == "" || out.Data.ID == "" {
		return nil, fmt.Errorf("invalid payment API response: missing checkout_url or transaction id")
	}

	c.log.Infow("checkout session created", "user_id", userID, "transaction_id", out.Data.ID)
	return &CheckoutSession{CheckoutURL: out.Data.CheckoutURL, TransactionID: out.Data.ID}, nil
}

// VerifySignature checks the HMAC-SHA256 of the raw webhook body against the
// header-supplied signature. With no API key configured it fails open with a
// warning: degraded environments keep working, which is an explicit choice
// rather than a security feature.
func (c *Client) VerifySignature(rawBody []byte, signature string) bool {
	if c.cfg.APIKey == "" {
		c.log.Warnw("payment api key not configured, skipping webhook signature verification")
		return true
	}
	mac := hmac.New(sha256.New, []byte(c.cfg.APIKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type webhookPayload struct {
	EventType string `json:"event_type"`
	Data      struct {
		ID         string            `json:"id"`
		CustomData map[string]string `json:"custom_data"`
	} `json:"data"`
}

// ParseWebhook extracts the event type, provider transaction id and the user
// id carried in custom_data.
func (c *Client) ParseWebhook(rawBody []byte) (*Event, error) {
	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	ev := &Event{
		Type:          payload.EventType,
		TransactionID: payload.Data.ID,
		UserID:        payload.Data.CustomData["user_id"],
	}
	c.log.Infow("parsed webhook event",
		"event_type", ev.Type, "transaction_id", ev.TransactionID, "user_id", ev.UserID)
	return ev, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
