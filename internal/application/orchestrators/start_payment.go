package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"compreg/internal/adapters/payment"
	"compreg/internal/domain/registration"
)

// StartPaymentInput carries input for the checkout orchestrator.
type StartPaymentInput struct {
	RegistrationID string
	UserID         string
}

// StartPaymentDeps holds dependencies for StartPayment.
type StartPaymentDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
	Provider          payment.Provider
}

// ExecuteStartPayment creates a checkout session for a pending registration.
// The stored fee is re-validated against the competition before any money is
// asked for, so a stale or tampered amount never reaches the provider.
// PRE: Registration exists, belongs to UserID, payment is pending
// POST: Returns a pay URL and invoice ID; registration is not mutated
func ExecuteStartPayment(ctx context.Context, input StartPaymentInput, deps StartPaymentDeps) (payment.CheckoutSession, error) {
	reg, err := deps.RegistrationStore.GetByID(ctx, input.RegistrationID)
	if err != nil {
		return payment.CheckoutSession{}, fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != input.UserID {
		return payment.CheckoutSession{}, ErrNotOwner
	}
	if reg.IsCancelled() {
		return payment.CheckoutSession{}, registration.ErrAlreadyCancelled
	}
	if reg.IsPaid() {
		return payment.CheckoutSession{}, registration.ErrAlreadyPaid
	}
	if reg.PaymentStatus != registration.PaymentPending {
		return payment.CheckoutSession{}, registration.ErrNotPending
	}

	comp, err := deps.CompetitionStore.GetByID(ctx, reg.CompetitionID)
	if err != nil {
		return payment.CheckoutSession{}, fmt.Errorf("get competition: %w", err)
	}
	if err := registration.ValidateStoredFee(reg, comp); err != nil {
		slog.Error("fee_integrity_check_failed", "registration_id", reg.ID, "error", err.Error())
		return payment.CheckoutSession{}, err
	}

	session, err := deps.Provider.CreatePayment(ctx, reg)
	if err != nil {
		return payment.CheckoutSession{}, fmt.Errorf("create payment: %w", err)
	}

	slog.Info("checkout_started",
		"registration_id", reg.ID,
		"provider", deps.Provider.Name(),
		"invoice", session.InvoiceID,
		"amount", reg.TotalFee)
	return session, nil
}
