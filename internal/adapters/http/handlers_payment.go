package web

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"compreg/internal/adapters/http/middleware"
	"compreg/internal/adapters/payment"
	"compreg/internal/application/orchestrators"
)

// checkoutRequest is the JSON body for POST /api/payments/checkout.
type checkoutRequest struct {
	RegistrationID string `json:"registration_id"`
}

// handleCheckout handles POST /api/payments/checkout.
func handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, _ := middleware.GetSessionFromContext(r.Context())
	checkout, err := orchestrators.ExecuteStartPayment(r.Context(),
		orchestrators.StartPaymentInput{
			RegistrationID: req.RegistrationID,
			UserID:         session.AccountID,
		},
		orchestrators.StartPaymentDeps{
			CompetitionStore:  stores.CompetitionStore,
			RegistrationStore: stores.RegistrationStore,
			Provider:          paymentProvider,
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{
		"pay_url":    checkout.PayURL,
		"invoice_id": checkout.InvoiceID,
	})
}

// handlePaymentWebhook handles POST /webhooks/payment. The provider
// authenticates via an HMAC signature over the raw body, not a session, so
// this route sits outside CSRF and auth.
func handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	event, err := paymentProvider.HandleWebhook(r.Context(), body, r.Header.Get("X-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrBadSignature) {
			slog.Warn("webhook_bad_signature", "provider", paymentProvider.Name())
			writeError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	result, err := orchestrators.ExecuteConfirmPayment(r.Context(),
		orchestrators.ConfirmPaymentInput{Event: event},
		orchestrators.ConfirmPaymentDeps{
			CompetitionStore:  stores.CompetitionStore,
			RegistrationStore: stores.RegistrationStore,
			Now:               timeNow,
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		if errors.Is(err, orchestrators.ErrUnknownWebhookStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	if event.Status == payment.WebhookPaid && !result.AlreadyApplied {
		if reg, err := stores.RegistrationStore.GetByID(r.Context(), result.RegistrationID); err == nil {
			compName := reg.CompetitionID
			if comp, err := stores.CompetitionStore.GetByID(r.Context(), reg.CompetitionID); err == nil {
				compName = comp.Name
			}
			if err := orchestrators.EnqueuePaymentReceipt(r.Context(), reg, compName, notifyDeps()); err != nil {
				slog.Error("receipt_enqueue_failed", "registration_id", reg.ID, "error", err.Error())
			}
		}
	}

	writeData(w, http.StatusOK, map[string]any{
		"registration_id": result.RegistrationID,
		"payment_status":  result.PaymentStatus,
		"already_applied": result.AlreadyApplied,
	})
}
