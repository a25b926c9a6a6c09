package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"compreg/internal/domain/outbox"
	"compreg/internal/domain/registration"
)

// OutboxStore defines the interface for outbox persistence.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
}

// EmailPayload is the JSON structure stored in outbox entries of type email.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NotifyDeps holds dependencies for notification enqueueing.
type NotifyDeps struct {
	AccountStore AccountStore
	OutboxStore  OutboxStore
	GenerateID   func() string
	Now          func() time.Time
}

// EnqueueRegistrationConfirmation queues a confirmation email for a new
// registration. Delivery happens asynchronously via the outbox worker, so a
// mail outage never fails a registration.
// PRE: reg was just created; compName is the competition's display name
// POST: An email outbox entry is persisted
func EnqueueRegistrationConfirmation(ctx context.Context, reg registration.Registration, compName string, deps NotifyDeps) error {
	acct, err := deps.AccountStore.GetByID(ctx, reg.UserID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	statusLine := "Your spot is confirmed."
	if reg.IsWaitlisted() {
		statusLine = "The competition is full, so you are on the waitlist. We will email you if a spot opens up."
	}

	html := fmt.Sprintf(
		"<h2>Registration received</h2><p>Hi %s,</p><p>You are registered for <strong>%s</strong>.</p><p>%s</p><p>Total fee: %.2f. Payment is pending — complete it from your registrations page.</p>",
		acct.Name, compName, statusLine, reg.TotalFee)

	return enqueueEmail(ctx, EmailPayload{
		To:      acct.Email,
		Subject: fmt.Sprintf("Registration received: %s", compName),
		HTML:    html,
	}, deps)
}

// EnqueuePaymentReceipt queues a receipt email after a payment completes.
// PRE: reg is paid
// POST: An email outbox entry is persisted
func EnqueuePaymentReceipt(ctx context.Context, reg registration.Registration, compName string, deps NotifyDeps) error {
	acct, err := deps.AccountStore.GetByID(ctx, reg.UserID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	html := fmt.Sprintf(
		"<h2>Payment received</h2><p>Hi %s,</p><p>We received your payment of <strong>%.2f</strong> for <strong>%s</strong>.</p><p>See you at the competition!</p>",
		acct.Name, reg.TotalFee, compName)

	return enqueueEmail(ctx, EmailPayload{
		To:      acct.Email,
		Subject: fmt.Sprintf("Payment received: %s", compName),
		HTML:    html,
	}, deps)
}

func enqueueEmail(ctx context.Context, payload EmailPayload, deps NotifyDeps) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	entry := outbox.Entry{
		ID:         deps.GenerateID(),
		ActionType: outbox.ActionTypeEmail,
		Payload:    string(raw),
		Status:     outbox.StatusPending,
		CreatedAt:  deps.Now(),
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return fmt.Errorf("save outbox entry: %w", err)
	}

	slog.Info("email_enqueued", "entry_id", entry.ID, "to", payload.To, "subject", payload.Subject)
	return nil
}
