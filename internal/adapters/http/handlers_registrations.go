package web

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"compreg/internal/adapters/http/middleware"
	"compreg/internal/application/orchestrators"
	"compreg/internal/application/projections"
)

// createRegistrationRequest is the JSON body for POST /api/registrations.
type createRegistrationRequest struct {
	CompetitionID  string   `json:"competition_id"`
	SelectedEvents []string `json:"selected_events"`
}

// handleCreateRegistration handles POST /api/registrations.
func handleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req createRegistrationRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, _ := middleware.GetSessionFromContext(r.Context())
	result, err := orchestrators.ExecuteRegisterParticipant(r.Context(),
		orchestrators.RegisterParticipantInput{
			UserID:         session.AccountID,
			CompetitionID:  req.CompetitionID,
			SelectedEvents: req.SelectedEvents,
		},
		orchestrators.RegisterParticipantDeps{
			CompetitionStore:  stores.CompetitionStore,
			RegistrationStore: stores.RegistrationStore,
			GenerateID:        generateID,
			Now:               timeNow,
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "competition not found")
			return
		}
		writeDomainError(w, err)
		return
	}

	// The confirmation email rides the outbox; a failure to enqueue is logged
	// but never fails the registration itself.
	if reg, err := stores.RegistrationStore.GetByID(r.Context(), result.RegistrationID); err == nil {
		compName := req.CompetitionID
		if comp, err := stores.CompetitionStore.GetByID(r.Context(), req.CompetitionID); err == nil {
			compName = comp.Name
		}
		if err := orchestrators.EnqueueRegistrationConfirmation(r.Context(), reg, compName, notifyDeps()); err != nil {
			slog.Error("confirmation_enqueue_failed", "registration_id", result.RegistrationID, "error", err.Error())
		}
	}

	writeData(w, http.StatusCreated, map[string]any{
		"registration_id": result.RegistrationID,
		"total_fee":       result.TotalFee,
		"status":          result.Status,
		"payment_status":  result.PaymentStatus,
	})
}

// handleMyRegistrations handles GET /api/registrations.
func handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())
	result, err := projections.QueryGetMyRegistrations(r.Context(),
		projections.GetMyRegistrationsQuery{UserID: session.AccountID},
		projections.GetMyRegistrationsDeps{
			CompetitionStore:  stores.CompetitionStore,
			RegistrationStore: stores.RegistrationStore,
		})
	if err != nil {
		internalError(w, err)
		return
	}

	writeData(w, http.StatusOK, result.Registrations)
}

// handleCancelRegistration handles DELETE /api/registrations/{id}.
func handleCancelRegistration(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())
	err := orchestrators.ExecuteCancelRegistration(r.Context(),
		orchestrators.CancelRegistrationInput{
			RegistrationID: r.PathValue("id"),
			UserID:         session.AccountID,
		},
		orchestrators.CancelRegistrationDeps{RegistrationStore: stores.RegistrationStore})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeMessage(w, "registration cancelled")
}

// updateEventsRequest is the JSON body for PUT /api/registrations/{id}/events.
type updateEventsRequest struct {
	SelectedEvents []string `json:"selected_events"`
}

// handleUpdateEvents handles PUT /api/registrations/{id}/events.
func handleUpdateEvents(w http.ResponseWriter, r *http.Request) {
	var req updateEventsRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, _ := middleware.GetSessionFromContext(r.Context())
	result, err := orchestrators.ExecuteUpdateSelection(r.Context(),
		orchestrators.UpdateSelectionInput{
			RegistrationID: r.PathValue("id"),
			UserID:         session.AccountID,
			SelectedEvents: req.SelectedEvents,
		},
		orchestrators.UpdateSelectionDeps{
			CompetitionStore:  stores.CompetitionStore,
			RegistrationStore: stores.RegistrationStore,
			Now:               timeNow,
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"registration_id": result.RegistrationID,
		"total_fee":       result.TotalFee,
		"status":          result.Status,
		"payment_status":  result.PaymentStatus,
	})
}

// handlePromoteRegistration handles POST /api/registrations/{id}/promote
// (organizer or admin).
func handlePromoteRegistration(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecutePromoteRegistration(r.Context(),
		orchestrators.PromoteRegistrationInput{RegistrationID: r.PathValue("id")},
		orchestrators.CancelRegistrationDeps{RegistrationStore: stores.RegistrationStore})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeMessage(w, "registration promoted")
}

// notifyDeps builds the dependency set for email enqueueing.
func notifyDeps() orchestrators.NotifyDeps {
	return orchestrators.NotifyDeps{
		AccountStore: stores.AccountStore,
		OutboxStore:  stores.OutboxStore,
		GenerateID:   generateID,
		Now:          timeNow,
	}
}
