package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
)

// CancelRegistrationInput carries input for the orchestrator.
type CancelRegistrationInput struct {
	RegistrationID string
	UserID         string
}

// CancelRegistrationDeps holds dependencies for CancelRegistration.
type CancelRegistrationDeps struct {
	RegistrationStore RegistrationStore
}

// ExecuteCancelRegistration cancels a registration. The domain layer blocks
// cancelling paid registrations; refunds are an offline process.
// PRE: Registration exists and belongs to UserID
// POST: Status and PaymentStatus set to cancelled, or a domain error
func ExecuteCancelRegistration(ctx context.Context, input CancelRegistrationInput, deps CancelRegistrationDeps) error {
	reg, err := deps.RegistrationStore.GetByID(ctx, input.RegistrationID)
	if err != nil {
		return fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != input.UserID {
		return ErrNotOwner
	}

	if err := reg.Cancel(); err != nil {
		return err
	}

	if err := deps.RegistrationStore.Save(ctx, reg); err != nil {
		return fmt.Errorf("save registration: %w", err)
	}

	slog.Info("registration_cancelled", "registration_id", reg.ID, "user_id", reg.UserID)
	return nil
}

// PromoteRegistrationInput carries input for the promote orchestrator.
type PromoteRegistrationInput struct {
	RegistrationID string
}

// ExecutePromoteRegistration moves a waitlisted registration to confirmed.
// Organizers trigger this manually when a slot frees up.
// PRE: Registration exists and is waitlisted
// POST: Status is confirmed, or a domain error
func ExecutePromoteRegistration(ctx context.Context, input PromoteRegistrationInput, deps CancelRegistrationDeps) error {
	reg, err := deps.RegistrationStore.GetByID(ctx, input.RegistrationID)
	if err != nil {
		return fmt.Errorf("get registration: %w", err)
	}

	if err := reg.Promote(); err != nil {
		return err
	}

	if err := deps.RegistrationStore.Save(ctx, reg); err != nil {
		return fmt.Errorf("save registration: %w", err)
	}

	slog.Info("registration_promoted", "registration_id", reg.ID)
	return nil
}
