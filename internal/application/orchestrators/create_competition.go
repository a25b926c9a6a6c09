package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"compreg/internal/domain/competition"
)

// CompetitionStoreForManage defines the store interface for competition
// management.
type CompetitionStoreForManage interface {
	GetByID(ctx context.Context, id string) (competition.Competition, error)
	Save(ctx context.Context, c competition.Competition) error
}

// CreateCompetitionInput carries input for the orchestrator.
type CreateCompetitionInput struct {
	Name              string
	Description       string
	Date              time.Time
	BaseFee           float64
	EventFees         map[string]float64
	Events            []string
	RegistrationOpen  time.Time
	RegistrationClose time.Time
	Capacity          int
	CreatedBy         string
}

// CreateCompetitionDeps holds dependencies for CreateCompetition.
type CreateCompetitionDeps struct {
	CompetitionStore CompetitionStoreForManage
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCreateCompetition creates a competition.
// PRE: Caller is an organizer or admin (enforced at the HTTP layer)
// POST: Competition persisted with a generated ID, or a validation error
func ExecuteCreateCompetition(ctx context.Context, input CreateCompetitionInput, deps CreateCompetitionDeps) (string, error) {
	comp := competition.Competition{
		ID:                deps.GenerateID(),
		Name:              input.Name,
		Description:       input.Description,
		Date:              input.Date,
		BaseFee:           input.BaseFee,
		EventFees:         input.EventFees,
		Events:            input.Events,
		RegistrationOpen:  input.RegistrationOpen,
		RegistrationClose: input.RegistrationClose,
		Capacity:          input.Capacity,
		CreatedBy:         input.CreatedBy,
		CreatedAt:         deps.Now(),
	}
	if err := comp.Validate(); err != nil {
		return "", err
	}

	if err := deps.CompetitionStore.Save(ctx, comp); err != nil {
		return "", fmt.Errorf("save competition: %w", err)
	}

	slog.Info("competition_created",
		"competition_id", comp.ID,
		"name", comp.Name,
		"events", len(comp.Events),
		"capacity", comp.Capacity,
		"created_by", comp.CreatedBy)
	return comp.ID, nil
}

// UpdateCompetitionInput carries input for the update orchestrator. The ID
// names an existing competition; the remaining fields replace its data.
type UpdateCompetitionInput struct {
	ID    string
	Patch CreateCompetitionInput
}

// ExecuteUpdateCompetition replaces a competition's editable fields.
// PRE: Competition exists; caller is an organizer or admin
// POST: Competition persisted, or a validation error
// INVARIANT: ID, CreatedBy, and CreatedAt are preserved
func ExecuteUpdateCompetition(ctx context.Context, input UpdateCompetitionInput, deps CreateCompetitionDeps) error {
	comp, err := deps.CompetitionStore.GetByID(ctx, input.ID)
	if err != nil {
		return fmt.Errorf("get competition: %w", err)
	}

	comp.Name = input.Patch.Name
	comp.Description = input.Patch.Description
	comp.Date = input.Patch.Date
	comp.BaseFee = input.Patch.BaseFee
	comp.EventFees = input.Patch.EventFees
	comp.Events = input.Patch.Events
	comp.RegistrationOpen = input.Patch.RegistrationOpen
	comp.RegistrationClose = input.Patch.RegistrationClose
	comp.Capacity = input.Patch.Capacity

	if err := comp.Validate(); err != nil {
		return err
	}
	if err := deps.CompetitionStore.Save(ctx, comp); err != nil {
		return fmt.Errorf("save competition: %w", err)
	}

	slog.Info("competition_updated", "competition_id", comp.ID, "name", comp.Name)
	return nil
}
