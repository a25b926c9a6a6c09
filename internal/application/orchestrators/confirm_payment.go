package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"compreg/internal/adapters/payment"
	"compreg/internal/domain/registration"
)

// ErrUnknownWebhookStatus is returned for webhook statuses the orchestrator
// does not handle.
var ErrUnknownWebhookStatus = errors.New("unknown webhook status")

// ConfirmPaymentInput carries a verified webhook event.
type ConfirmPaymentInput struct {
	Event payment.WebhookEvent
}

// ConfirmPaymentDeps holds dependencies for ConfirmPayment.
type ConfirmPaymentDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
	Now               func() time.Time
}

// ConfirmPaymentResult reports what the webhook did.
type ConfirmPaymentResult struct {
	RegistrationID string
	PaymentStatus  string
	AlreadyApplied bool // duplicate webhook, no state change
}

// ExecuteConfirmPayment applies a verified payment webhook to a registration.
// Duplicate webhooks are idempotent: a paid event for an already-completed
// registration is a no-op success. Before marking paid the stored fee is
// recomputed against the competition; a mismatch blocks confirmation.
// PRE: Event comes from a signature-verified webhook
// POST: Payment state machine applied and persisted, or a domain error
func ExecuteConfirmPayment(ctx context.Context, input ConfirmPaymentInput, deps ConfirmPaymentDeps) (ConfirmPaymentResult, error) {
	event := input.Event

	reg, err := deps.RegistrationStore.GetByID(ctx, event.RegistrationID)
	if err != nil {
		return ConfirmPaymentResult{}, fmt.Errorf("get registration: %w", err)
	}

	switch event.Status {
	case payment.WebhookPaid:
		if reg.IsPaid() {
			slog.Info("payment_webhook_duplicate", "registration_id", reg.ID, "invoice", event.InvoiceID)
			return ConfirmPaymentResult{RegistrationID: reg.ID, PaymentStatus: reg.PaymentStatus, AlreadyApplied: true}, nil
		}

		comp, err := deps.CompetitionStore.GetByID(ctx, reg.CompetitionID)
		if err != nil {
			return ConfirmPaymentResult{}, fmt.Errorf("get competition: %w", err)
		}
		if err := registration.ValidateStoredFee(reg, comp); err != nil {
			slog.Error("fee_integrity_check_failed", "registration_id", reg.ID, "error", err.Error())
			return ConfirmPaymentResult{}, err
		}
		if err := reg.MarkPaid(deps.Now()); err != nil {
			return ConfirmPaymentResult{}, err
		}

	case payment.WebhookFailed:
		if err := reg.MarkPaymentFailed(); err != nil {
			if errors.Is(err, registration.ErrNotPending) && reg.PaymentStatus == registration.PaymentFailed {
				return ConfirmPaymentResult{RegistrationID: reg.ID, PaymentStatus: reg.PaymentStatus, AlreadyApplied: true}, nil
			}
			return ConfirmPaymentResult{}, err
		}

	case payment.WebhookCancelled:
		if err := reg.MarkPaymentCancelled(); err != nil {
			if errors.Is(err, registration.ErrNotPending) && reg.PaymentStatus == registration.PaymentCancelled {
				return ConfirmPaymentResult{RegistrationID: reg.ID, PaymentStatus: reg.PaymentStatus, AlreadyApplied: true}, nil
			}
			return ConfirmPaymentResult{}, err
		}

	default:
		return ConfirmPaymentResult{}, fmt.Errorf("%w: %s", ErrUnknownWebhookStatus, event.Status)
	}

	if err := deps.RegistrationStore.Save(ctx, reg); err != nil {
		return ConfirmPaymentResult{}, fmt.Errorf("save registration: %w", err)
	}

	slog.Info("payment_webhook_applied",
		"registration_id", reg.ID,
		"invoice", event.InvoiceID,
		"payment_status", reg.PaymentStatus)

	return ConfirmPaymentResult{RegistrationID: reg.ID, PaymentStatus: reg.PaymentStatus}, nil
}
