package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"compreg/internal/domain/registration"
)

// ErrNotOwner is returned when a user acts on a registration they do not own.
var ErrNotOwner = errors.New("registration belongs to another user")

// UpdateSelectionInput carries input for the orchestrator.
type UpdateSelectionInput struct {
	RegistrationID string
	UserID         string
	SelectedEvents []string
}

// UpdateSelectionDeps holds dependencies for UpdateSelection.
type UpdateSelectionDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
	Now               func() time.Time
}

// ExecuteUpdateSelection replaces a registration's event selection and
// recomputes its total fee. Paid registrations are locked — the fee has been
// collected for the old selection.
// PRE: Registration exists, belongs to UserID, is not cancelled or paid
// POST: SelectedEvents and TotalFee updated, or a domain error
// INVARIANT: Selection is validated and window re-checked before persisting
func ExecuteUpdateSelection(ctx context.Context, input UpdateSelectionInput, deps UpdateSelectionDeps) (RegisterParticipantResult, error) {
	reg, err := deps.RegistrationStore.GetByID(ctx, input.RegistrationID)
	if err != nil {
		return RegisterParticipantResult{}, fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != input.UserID {
		return RegisterParticipantResult{}, ErrNotOwner
	}
	if reg.IsCancelled() {
		return RegisterParticipantResult{}, registration.ErrAlreadyCancelled
	}
	if reg.IsPaid() {
		return RegisterParticipantResult{}, registration.ErrAlreadyPaid
	}

	comp, err := deps.CompetitionStore.GetByID(ctx, reg.CompetitionID)
	if err != nil {
		return RegisterParticipantResult{}, fmt.Errorf("get competition: %w", err)
	}

	if err := registration.ValidateEventSelection(comp, input.SelectedEvents); err != nil {
		return RegisterParticipantResult{}, err
	}
	if err := registration.ValidateRegistrationWindow(comp, deps.Now()); err != nil {
		return RegisterParticipantResult{}, err
	}

	reg.SelectedEvents = input.SelectedEvents
	reg.TotalFee = registration.ComputeTotalFee(comp, input.SelectedEvents)

	if err := deps.RegistrationStore.Save(ctx, reg); err != nil {
		return RegisterParticipantResult{}, fmt.Errorf("save registration: %w", err)
	}

	slog.Info("registration_selection_updated",
		"registration_id", reg.ID,
		"events", len(reg.SelectedEvents),
		"total_fee", reg.TotalFee)

	return RegisterParticipantResult{
		RegistrationID: reg.ID,
		TotalFee:       reg.TotalFee,
		Status:         reg.Status,
		PaymentStatus:  reg.PaymentStatus,
	}, nil
}
