package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender logs emails instead of sending them. Used in development and
// when no API key is configured.
type NoopSender struct{}

// NewNoopSender creates a sender that only logs.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email and returns a fake message ID.
// POST: No email is sent
func (s *NoopSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_email", "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: "noop-" + uuid.New().String(), SentAt: time.Now()}, nil
}
