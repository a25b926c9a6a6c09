package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// outboxRow is one entry in the admin outbox listing.
type outboxRow struct {
	ID              string    `json:"id"`
	ActionType      string    `json:"action_type"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	MaxAttempts     int       `json:"max_attempts"`
	LastAttemptedAt time.Time `json:"last_attempted_at,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
	ExternalID      string    `json:"external_id,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// handleOutboxList handles GET /api/admin/outbox.
func handleOutboxList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}

	entries, err := stores.OutboxStore.List(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}

	rows := make([]outboxRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, outboxRow{
			ID:              e.ID,
			ActionType:      e.ActionType,
			Status:          e.Status,
			Attempts:        e.Attempts,
			MaxAttempts:     e.MaxAttempts,
			LastAttemptedAt: e.LastAttemptedAt,
			CreatedAt:       e.CreatedAt,
			ExternalID:      e.ExternalID,
			ErrorMessage:    e.ErrorMessage,
		})
	}

	writeData(w, http.StatusOK, rows)
}

// handleOutboxRetry handles POST /api/admin/outbox/{id}/retry.
func handleOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if err := outboxProcessor.ProcessSingle(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "outbox entry not found")
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeMessage(w, "entry processed")
}

// handleOutboxAbandon handles POST /api/admin/outbox/{id}/abandon.
func handleOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if err := outboxProcessor.AbandonEntry(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "outbox entry not found")
			return
		}
		internalError(w, err)
		return
	}
	writeMessage(w, "entry abandoned")
}

// handlePerfSnapshot handles GET /api/admin/perf.
// Query params: minutes (lookback window, default 60), top (default 10).
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	minutes := 60
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 {
		minutes = n
	}
	topN := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 {
		topN = n
	}

	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeData(w, http.StatusOK, perfCollector.Snapshot(since, topN))
}
