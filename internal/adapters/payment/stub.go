package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"compreg/internal/domain/registration"
)

// StubProvider is a mock gateway for development and testing.
// CreatePayment returns a local pay URL; webhooks are authenticated with an
// HMAC-SHA256 signature over the raw body.
type StubProvider struct {
	secret  string
	baseURL string
}

// NewStubProvider creates a stub gateway.
// PRE: secret is non-empty
// POST: Returns a ready-to-use provider
func NewStubProvider(secret, baseURL string) *StubProvider {
	return &StubProvider{secret: secret, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name identifies the provider.
func (p *StubProvider) Name() string { return "stub" }

// CreatePayment issues an invoice referencing the registration.
// PRE: reg has an ID and a computed TotalFee
// POST: Returns a checkout session; no external call is made
func (p *StubProvider) CreatePayment(ctx context.Context, reg registration.Registration) (CheckoutSession, error) {
	invoice := fmt.Sprintf("%s:%s", reg.ID, uuid.New().String())
	payURL := fmt.Sprintf("%s/pay/stub?invoice=%s&amount=%.2f", p.baseURL, invoice, reg.TotalFee)

	slog.Info("stub_checkout_created", "registration_id", reg.ID, "invoice", invoice, "amount", reg.TotalFee)
	return CheckoutSession{PayURL: payURL, InvoiceID: invoice}, nil
}

// stubWebhookPayload is the JSON body the stub gateway posts back.
type stubWebhookPayload struct {
	Invoice string `json:"invoice"`
	Status  string `json:"status"` // paid, failed, or cancelled
}

// HandleWebhook verifies the HMAC signature and decodes the event.
// PRE: body is the raw request body; signature is the X-Signature header value
// POST: Returns the event, or ErrBadSignature / a decode error
func (p *StubProvider) HandleWebhook(ctx context.Context, body []byte, signature string) (WebhookEvent, error) {
	expected := p.sign(body)
	if signature == "" || !hmac.Equal([]byte(signature), []byte(expected)) {
		return WebhookEvent{}, ErrBadSignature
	}

	var payload stubWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode webhook payload: %w", err)
	}

	regID, _, ok := strings.Cut(payload.Invoice, ":")
	if !ok || regID == "" {
		return WebhookEvent{}, fmt.Errorf("malformed invoice %q", payload.Invoice)
	}

	status := strings.TrimSpace(payload.Status)
	switch status {
	case WebhookPaid, WebhookFailed, WebhookCancelled:
	default:
		return WebhookEvent{}, fmt.Errorf("unknown webhook status %q", payload.Status)
	}

	return WebhookEvent{
		RegistrationID: regID,
		InvoiceID:      payload.Invoice,
		Status:         status,
	}, nil
}

// sign computes the hex HMAC-SHA256 of the body with the provider secret.
func (p *StubProvider) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignBody exposes the signature computation so tests and the local pay page
// can produce valid webhooks.
func (p *StubProvider) SignBody(body []byte) string {
	return p.sign(body)
}
