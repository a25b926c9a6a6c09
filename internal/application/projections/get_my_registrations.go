package projections

import (
	"context"
	"time"
)

// GetMyRegistrationsQuery carries query parameters.
type GetMyRegistrationsQuery struct {
	UserID string
}

// RegistrationView is one registration with its competition context.
type RegistrationView struct {
	ID              string    `json:"id"`
	CompetitionID   string    `json:"competition_id"`
	CompetitionName string    `json:"competition_name"`
	CompetitionDate time.Time `json:"competition_date"`
	SelectedEvents  []string  `json:"selected_events"`
	TotalFee        float64   `json:"total_fee"`
	PaymentStatus   string    `json:"payment_status"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	PaidAt          time.Time `json:"paid_at,omitzero"`
}

// GetMyRegistrationsResult carries the query result.
type GetMyRegistrationsResult struct {
	Registrations []RegistrationView
}

// GetMyRegistrationsDeps holds dependencies for GetMyRegistrations.
type GetMyRegistrationsDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
}

// QueryGetMyRegistrations retrieves a user's registrations joined with
// competition names.
// PRE: UserID is non-empty
// POST: Returns all registrations for the user, newest first per store order
func QueryGetMyRegistrations(ctx context.Context, query GetMyRegistrationsQuery, deps GetMyRegistrationsDeps) (GetMyRegistrationsResult, error) {
	regs, err := deps.RegistrationStore.ListByUser(ctx, query.UserID)
	if err != nil {
		return GetMyRegistrationsResult{}, err
	}

	// Competitions repeat across registrations rarely, but cache lookups anyway.
	compNames := make(map[string]string)
	compDates := make(map[string]time.Time)

	var result []RegistrationView
	for _, reg := range regs {
		name, ok := compNames[reg.CompetitionID]
		if !ok {
			comp, err := deps.CompetitionStore.GetByID(ctx, reg.CompetitionID)
			if err != nil {
				return GetMyRegistrationsResult{}, err
			}
			name = comp.Name
			compNames[reg.CompetitionID] = comp.Name
			compDates[reg.CompetitionID] = comp.Date
		}

		result = append(result, RegistrationView{
			ID:              reg.ID,
			CompetitionID:   reg.CompetitionID,
			CompetitionName: name,
			CompetitionDate: compDates[reg.CompetitionID],
			SelectedEvents:  reg.SelectedEvents,
			TotalFee:        reg.TotalFee,
			PaymentStatus:   reg.PaymentStatus,
			Status:          reg.Status,
			CreatedAt:       reg.CreatedAt,
			PaidAt:          reg.PaidAt,
		})
	}

	return GetMyRegistrationsResult{Registrations: result}, nil
}
