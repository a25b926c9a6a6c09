package payment

import (
	"context"
	"errors"

	"compreg/internal/domain/registration"
)

// Webhook status constants reported by providers.
const (
	WebhookPaid      = "paid"
	WebhookFailed    = "failed"
	WebhookCancelled = "cancelled"
)

// ErrBadSignature is returned when a webhook signature does not verify.
var ErrBadSignature = errors.New("webhook signature is invalid")

// CheckoutSession is the provider's handle for a payment attempt.
type CheckoutSession struct {
	PayURL    string // Where the user completes payment
	InvoiceID string // Provider's reference, echoed back in the webhook
}

// WebhookEvent is a verified payment notification.
type WebhookEvent struct {
	RegistrationID string
	InvoiceID      string
	Status         string // paid, failed, or cancelled
}

// Provider is the interface for payment gateways.
type Provider interface {
	Name() string

	// CreatePayment starts a checkout session for a registration's total fee.
	CreatePayment(ctx context.Context, reg registration.Registration) (CheckoutSession, error)

	// HandleWebhook verifies a webhook request and returns the payment event.
	// The signature covers the raw request body.
	HandleWebhook(ctx context.Context, body []byte, signature string) (WebhookEvent, error)
}
