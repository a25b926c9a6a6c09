package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"compreg/internal/adapters/http/middleware"
	"compreg/internal/application/orchestrators"
	"compreg/internal/domain/account"
	"compreg/internal/domain/registration"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// envelope is the JSON response wrapper for every API endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON writes the envelope with the given status code.
func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// writeData writes a successful response with a payload.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeMessage writes a successful response with only a message.
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

// writeError writes a failed response with a client-safe message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeDomainError maps domain errors to status codes: validation failures are
// 400, duplicates 409, auth failures 401. Anything unrecognized is treated as
// internal.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		invalidEvents *registration.InvalidEventsError
		windowClosed  *registration.WindowClosedError
		duplicate     *registration.DuplicateRegistrationError
		feeMismatch   *registration.FeeMismatchError
	)
	switch {
	case errors.Is(err, registration.ErrEmptySelection),
		errors.As(err, &invalidEvents),
		errors.As(err, &windowClosed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &duplicate):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, registration.ErrAlreadyPaid),
		errors.Is(err, registration.ErrAlreadyCancelled),
		errors.Is(err, registration.ErrPaidCancellation),
		errors.Is(err, registration.ErrNotPending),
		errors.Is(err, registration.ErrNotWaitlisted),
		errors.As(err, &feeMismatch):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orchestrators.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orchestrators.ErrInvalidCredentials),
		errors.Is(err, orchestrators.ErrAccountLocked):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, orchestrators.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, account.ErrPasswordTooShort),
		errors.Is(err, account.ErrEmptyPassword),
		errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrEmptyEmail),
		errors.Is(err, account.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// registerRoutes wires all endpoints onto the mux.
func registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("POST /api/signup", handleSignup)
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.Handle("GET /api/me", middleware.RequireAuth(http.HandlerFunc(handleMe)))

	// Competitions
	mux.HandleFunc("GET /api/competitions", handleCompetitionList)
	mux.HandleFunc("GET /api/competitions/{id}", handleCompetitionDetail)
	mux.Handle("POST /api/competitions", requireOrganizer(handleCreateCompetition))
	mux.Handle("PUT /api/competitions/{id}", requireOrganizer(handleUpdateCompetition))
	mux.Handle("GET /api/competitions/{id}/registrations", requireOrganizer(handleCompetitionRegistrations))

	// Registrations
	mux.Handle("POST /api/registrations", middleware.RequireAuth(http.HandlerFunc(handleCreateRegistration)))
	mux.Handle("GET /api/registrations", middleware.RequireAuth(http.HandlerFunc(handleMyRegistrations)))
	mux.Handle("DELETE /api/registrations/{id}", middleware.RequireAuth(http.HandlerFunc(handleCancelRegistration)))
	mux.Handle("PUT /api/registrations/{id}/events", middleware.RequireAuth(http.HandlerFunc(handleUpdateEvents)))
	mux.Handle("POST /api/registrations/{id}/promote", requireOrganizer(handlePromoteRegistration))

	// Payments
	mux.Handle("POST /api/payments/checkout", middleware.RequireAuth(http.HandlerFunc(handleCheckout)))
	mux.HandleFunc("POST /webhooks/payment", handlePaymentWebhook)

	// Admin
	mux.Handle("GET /api/admin/outbox", requireAdmin(handleOutboxList))
	mux.Handle("POST /api/admin/outbox/{id}/retry", requireAdmin(handleOutboxRetry))
	mux.Handle("POST /api/admin/outbox/{id}/abandon", requireAdmin(handleOutboxAbandon))
	mux.Handle("GET /api/admin/perf", requireAdmin(handlePerfSnapshot))
}

func requireOrganizer(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(account.RoleAdmin, account.RoleOrganizer)(h)
}

func requireAdmin(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(account.RoleAdmin)(h)
}
