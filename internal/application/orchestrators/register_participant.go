package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"compreg/internal/domain/competition"
	"compreg/internal/domain/registration"
)

// CompetitionStore defines the competition lookup interface used by
// registration orchestrators.
type CompetitionStore interface {
	GetByID(ctx context.Context, id string) (competition.Competition, error)
}

// RegistrationStore defines the interface for registration persistence.
type RegistrationStore interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
	GetByUserAndCompetition(ctx context.Context, userID, competitionID string) (registration.Registration, error)
	Create(ctx context.Context, r registration.Registration) error
	Save(ctx context.Context, r registration.Registration) error
	CountActive(ctx context.Context, competitionID string) (int, error)
}

// RegisterParticipantInput carries input for the orchestrator.
type RegisterParticipantInput struct {
	UserID         string
	CompetitionID  string
	SelectedEvents []string
}

// RegisterParticipantDeps holds dependencies for RegisterParticipant.
type RegisterParticipantDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
	GenerateID        func() string
	Now               func() time.Time
}

// RegisterParticipantResult carries the created registration back to the caller.
type RegisterParticipantResult struct {
	RegistrationID string
	TotalFee       float64
	Status         string
	PaymentStatus  string
}

// ExecuteRegisterParticipant coordinates the full registration flow: duplicate
// check, event selection, registration window, fee computation, admission.
// Checks short-circuit in that order, so an empty selection is reported before
// a closed window.
// PRE: UserID and CompetitionID are non-empty
// POST: Registration persisted with PaymentStatus=pending, or a domain error
// INVARIANT: Admission count excludes cancelled registrations
func ExecuteRegisterParticipant(ctx context.Context, input RegisterParticipantInput, deps RegisterParticipantDeps) (RegisterParticipantResult, error) {
	if input.UserID == "" {
		return RegisterParticipantResult{}, errors.New("user id cannot be empty")
	}
	if input.CompetitionID == "" {
		return RegisterParticipantResult{}, errors.New("competition id cannot be empty")
	}

	comp, err := deps.CompetitionStore.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return RegisterParticipantResult{}, fmt.Errorf("get competition: %w", err)
	}

	// Duplicate check first: a user holds at most one live registration per
	// competition. Cancelled registrations don't block re-registration.
	existing, err := deps.RegistrationStore.GetByUserAndCompetition(ctx, input.UserID, input.CompetitionID)
	if err == nil && !existing.IsCancelled() {
		return RegisterParticipantResult{}, &registration.DuplicateRegistrationError{ExistingID: existing.ID}
	}

	if err := registration.ValidateEventSelection(comp, input.SelectedEvents); err != nil {
		return RegisterParticipantResult{}, err
	}

	now := deps.Now()
	if err := registration.ValidateRegistrationWindow(comp, now); err != nil {
		return RegisterParticipantResult{}, err
	}

	totalFee := registration.ComputeTotalFee(comp, input.SelectedEvents)

	active, err := deps.RegistrationStore.CountActive(ctx, input.CompetitionID)
	if err != nil {
		return RegisterParticipantResult{}, fmt.Errorf("count active registrations: %w", err)
	}
	status := registration.DetermineAdmissionStatus(comp, active)

	reg := registration.Registration{
		ID:             deps.GenerateID(),
		UserID:         input.UserID,
		CompetitionID:  input.CompetitionID,
		SelectedEvents: input.SelectedEvents,
		TotalFee:       totalFee,
		PaymentStatus:  registration.PaymentPending,
		Status:         status,
		CreatedAt:      now,
	}

	// Re-registration after a cancel reuses the existing row; the storage-level
	// UNIQUE(competition_id, user_id) constraint allows only one.
	if err == nil && existing.IsCancelled() {
		reg.ID = existing.ID
		err = deps.RegistrationStore.Save(ctx, reg)
	} else {
		err = deps.RegistrationStore.Create(ctx, reg)
	}
	if err != nil {
		// Create surfaces a concurrent duplicate as DuplicateRegistrationError.
		var dup *registration.DuplicateRegistrationError
		if errors.As(err, &dup) {
			return RegisterParticipantResult{}, dup
		}
		return RegisterParticipantResult{}, fmt.Errorf("persist registration: %w", err)
	}

	slog.Info("registration_created",
		"registration_id", reg.ID,
		"user_id", reg.UserID,
		"competition_id", reg.CompetitionID,
		"events", len(reg.SelectedEvents),
		"total_fee", reg.TotalFee,
		"status", reg.Status)

	return RegisterParticipantResult{
		RegistrationID: reg.ID,
		TotalFee:       reg.TotalFee,
		Status:         reg.Status,
		PaymentStatus:  reg.PaymentStatus,
	}, nil
}
