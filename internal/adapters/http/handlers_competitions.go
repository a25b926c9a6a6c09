package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"compreg/internal/adapters/http/middleware"
	"compreg/internal/application/orchestrators"
	"compreg/internal/application/projections"
	"compreg/internal/domain/competition"
)

// handleCompetitionList handles GET /api/competitions.
// Query params: open=true, upcoming=true, limit, offset.
func handleCompetitionList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := projections.GetCompetitionListQuery{
		OpenOnly: q.Get("open") == "true",
		Upcoming: q.Get("upcoming") == "true",
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		query.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		query.Offset = offset
	}

	result, err := projections.QueryGetCompetitionList(r.Context(), query, projections.GetCompetitionListDeps{
		CompetitionStore:  stores.CompetitionStore,
		RegistrationStore: stores.RegistrationStore,
		Now:               timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	writeData(w, http.StatusOK, result.Competitions)
}

// handleCompetitionDetail handles GET /api/competitions/{id}.
func handleCompetitionDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := projections.QueryGetCompetitionDetail(r.Context(),
		projections.GetCompetitionDetailQuery{CompetitionID: r.PathValue("id")},
		projections.GetCompetitionDetailDeps{
			CompetitionStore:  stores.CompetitionStore,
			RegistrationStore: stores.RegistrationStore,
			Now:               timeNow,
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "competition not found")
			return
		}
		internalError(w, err)
		return
	}

	writeData(w, http.StatusOK, detail)
}

// competitionRequest is the JSON body for creating or updating a competition.
type competitionRequest struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Date              time.Time          `json:"date"`
	BaseFee           float64            `json:"base_fee"`
	EventFees         map[string]float64 `json:"event_fees"`
	Events            []string           `json:"events"`
	RegistrationOpen  time.Time          `json:"registration_open"`
	RegistrationClose time.Time          `json:"registration_close"`
	Capacity          int                `json:"capacity"`
}

func (req competitionRequest) toInput(createdBy string) orchestrators.CreateCompetitionInput {
	return orchestrators.CreateCompetitionInput{
		Name:              req.Name,
		Description:       req.Description,
		Date:              req.Date,
		BaseFee:           req.BaseFee,
		EventFees:         req.EventFees,
		Events:            req.Events,
		RegistrationOpen:  req.RegistrationOpen,
		RegistrationClose: req.RegistrationClose,
		Capacity:          req.Capacity,
		CreatedBy:         createdBy,
	}
}

// isCompetitionValidationError reports whether err is one of the competition
// field validation errors, which map to 400 rather than 500.
func isCompetitionValidationError(err error) bool {
	return errors.Is(err, competition.ErrEmptyName) ||
		errors.Is(err, competition.ErrNoEvents) ||
		errors.Is(err, competition.ErrNegativeBaseFee) ||
		errors.Is(err, competition.ErrNegativeFee) ||
		errors.Is(err, competition.ErrMissingFee) ||
		errors.Is(err, competition.ErrInvalidWindow) ||
		errors.Is(err, competition.ErrNegativeCap)
}

// handleCreateCompetition handles POST /api/competitions (organizer or admin).
func handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, _ := middleware.GetSessionFromContext(r.Context())
	id, err := orchestrators.ExecuteCreateCompetition(r.Context(), req.toInput(session.AccountID),
		orchestrators.CreateCompetitionDeps{
			CompetitionStore: stores.CompetitionStore,
			GenerateID:       generateID,
			Now:              timeNow,
		})
	if err != nil {
		if isCompetitionValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, err)
		return
	}

	writeData(w, http.StatusCreated, map[string]string{"competition_id": id})
}

// handleUpdateCompetition handles PUT /api/competitions/{id} (organizer or
// admin).
func handleUpdateCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := orchestrators.ExecuteUpdateCompetition(r.Context(),
		orchestrators.UpdateCompetitionInput{ID: r.PathValue("id"), Patch: req.toInput("")},
		orchestrators.CreateCompetitionDeps{
			CompetitionStore: stores.CompetitionStore,
			GenerateID:       generateID,
			Now:              timeNow,
		})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "competition not found")
		case isCompetitionValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			internalError(w, err)
		}
		return
	}

	writeMessage(w, "competition updated")
}

// registrationRow is one registration in the organizer listing.
type registrationRow struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
	SelectedEvents []string  `json:"selected_events"`
	TotalFee       float64   `json:"total_fee"`
	PaymentStatus  string    `json:"payment_status"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// handleCompetitionRegistrations handles
// GET /api/competitions/{id}/registrations (organizer or admin).
func handleCompetitionRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := stores.RegistrationStore.ListByCompetition(r.Context(), r.PathValue("id"))
	if err != nil {
		internalError(w, err)
		return
	}

	rows := make([]registrationRow, 0, len(regs))
	for _, reg := range regs {
		row := registrationRow{
			ID:             reg.ID,
			UserID:         reg.UserID,
			SelectedEvents: reg.SelectedEvents,
			TotalFee:       reg.TotalFee,
			PaymentStatus:  reg.PaymentStatus,
			Status:         reg.Status,
			CreatedAt:      reg.CreatedAt,
		}
		// A deleted account leaves the row without a name rather than
		// failing the whole listing.
		if acct, err := stores.AccountStore.GetByID(r.Context(), reg.UserID); err == nil {
			row.UserName = acct.Name
			row.UserEmail = acct.Email
		}
		rows = append(rows, row)
	}

	writeData(w, http.StatusOK, rows)
}
