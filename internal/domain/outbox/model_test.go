package outbox_test

import (
	"errors"
	"testing"
	"time"

	"compreg/internal/domain/outbox"
)

func validEntry() outbox.Entry {
	return outbox.Entry{
		ID:          "entry-001",
		ActionType:  outbox.ActionTypeEmail,
		Payload:     `{"to":"jamie@example.com"}`,
		Status:      outbox.StatusPending,
		MaxAttempts: 3,
		CreatedAt:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TestEntryValidate tests outbox entry validation.
func TestEntryValidate(t *testing.T) {
	t.Run("valid entry", func(t *testing.T) {
		e := validEntry()
		if err := e.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing action type", func(t *testing.T) {
		e := validEntry()
		e.ActionType = ""
		if err := e.Validate(); !errors.Is(err, outbox.ErrEmptyActionType) {
			t.Errorf("expected ErrEmptyActionType, got %v", err)
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		e := validEntry()
		e.Payload = ""
		if err := e.Validate(); !errors.Is(err, outbox.ErrEmptyPayload) {
			t.Errorf("expected ErrEmptyPayload, got %v", err)
		}
	})

	t.Run("defaults max attempts", func(t *testing.T) {
		e := validEntry()
		e.MaxAttempts = 0
		if err := e.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.MaxAttempts != 5 {
			t.Errorf("MaxAttempts = %d, want 5", e.MaxAttempts)
		}
	})
}

// TestEntryLifecycle tests attempt/success/failure transitions.
func TestEntryLifecycle(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	e := validEntry()
	if !e.CanRetry() {
		t.Fatal("fresh entry should be retryable")
	}

	e.MarkAttempt(now)
	if e.Attempts != 1 || e.Status != outbox.StatusRetrying {
		t.Errorf("after attempt: attempts=%d status=%s", e.Attempts, e.Status)
	}

	e.MarkFailed(errors.New("provider timeout"))
	if e.ErrorMessage == "" {
		t.Error("error message not recorded")
	}
	if e.IsTerminal() {
		t.Error("entry with remaining attempts should not be terminal")
	}

	e.MarkAttempt(now)
	e.MarkAttempt(now)
	e.MarkFailed(errors.New("provider timeout"))
	if e.Status != outbox.StatusFailed || !e.IsTerminal() {
		t.Errorf("exhausted entry: status=%s terminal=%v", e.Status, e.IsTerminal())
	}
	if e.CanRetry() {
		t.Error("exhausted entry should not be retryable")
	}
}

// TestEntryMarkSuccess tests the done transition.
func TestEntryMarkSuccess(t *testing.T) {
	e := validEntry()
	e.MarkAttempt(time.Now())
	e.MarkSuccess("msg-123")
	if e.Status != outbox.StatusDone || e.ExternalID != "msg-123" {
		t.Errorf("after success: status=%s external=%s", e.Status, e.ExternalID)
	}
	if !e.IsTerminal() {
		t.Error("done entry should be terminal")
	}
}

// TestEntryMarkAbandoned tests the abandoned transition.
func TestEntryMarkAbandoned(t *testing.T) {
	e := validEntry()
	e.MarkAbandoned()
	if e.Status != outbox.StatusAbandoned || !e.IsTerminal() {
		t.Errorf("after abandon: status=%s terminal=%v", e.Status, e.IsTerminal())
	}
}

// TestNextRetryDelay tests exponential backoff with cap.
func TestNextRetryDelay(t *testing.T) {
	e := validEntry()
	base := 30 * time.Second
	max := time.Hour

	e.Attempts = 0
	if d := e.NextRetryDelay(base, max); d != 30*time.Second {
		t.Errorf("delay at 0 attempts = %v, want 30s", d)
	}
	e.Attempts = 2
	if d := e.NextRetryDelay(base, max); d != 2*time.Minute {
		t.Errorf("delay at 2 attempts = %v, want 2m", d)
	}
	e.Attempts = 20
	if d := e.NextRetryDelay(base, max); d != max {
		t.Errorf("delay at 20 attempts = %v, want cap %v", d, max)
	}
}
