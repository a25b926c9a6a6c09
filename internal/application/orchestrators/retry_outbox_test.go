package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"compreg/internal/domain/account"
	"compreg/internal/domain/outbox"
	"compreg/internal/domain/registration"
)

// recordingExecutor captures payloads and can be told to fail.
type recordingExecutor struct {
	payloads []string
	err      error
}

func (e *recordingExecutor) Execute(_ context.Context, payload string) (string, error) {
	e.payloads = append(e.payloads, payload)
	if e.err != nil {
		return "", e.err
	}
	return "ext-123", nil
}

func pendingEntry(id string) outbox.Entry {
	return outbox.Entry{
		ID:          id,
		ActionType:  outbox.ActionTypeEmail,
		Payload:     `{"to":"mele@example.com","subject":"hi","html":"<p>hi</p>"}`,
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   fixedTime,
	}
}

func newTestProcessor(store OutboxStore, exec ActionExecutor) *OutboxProcessor {
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeEmail: exec})
	p.now = fixedNow
	return p
}

// TestProcessPending_Success tests that a pending entry is delivered and
// marked done with the external ID.
func TestProcessPending_Success(t *testing.T) {
	store := newMockOutboxStore(pendingEntry("entry-1"))
	exec := &recordingExecutor{}

	if err := newTestProcessor(store, exec).ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.payloads) != 1 {
		t.Fatalf("executor called %d times, want 1", len(exec.payloads))
	}
	entry := store.entries["entry-1"]
	if entry.Status != outbox.StatusDone || entry.ExternalID != "ext-123" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", entry.Attempts)
	}
}

// TestProcessPending_Failure tests that a failed delivery stays retryable
// with the error recorded.
func TestProcessPending_Failure(t *testing.T) {
	store := newMockOutboxStore(pendingEntry("entry-1"))
	exec := &recordingExecutor{err: errors.New("smtp down")}

	if err := newTestProcessor(store, exec).ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry := store.entries["entry-1"]
	if entry.ErrorMessage != "smtp down" {
		t.Errorf("ErrorMessage = %q", entry.ErrorMessage)
	}
	if entry.IsTerminal() {
		t.Error("entry should remain retryable after first failure")
	}
}

// TestProcessPending_Backoff tests that a recently attempted entry is skipped.
func TestProcessPending_Backoff(t *testing.T) {
	entry := pendingEntry("entry-1")
	entry.Status = outbox.StatusRetrying
	entry.Attempts = 1
	entry.LastAttemptedAt = fixedTime.Add(-10 * time.Second) // backoff is 60s at attempt 1
	store := newMockOutboxStore(entry)
	exec := &recordingExecutor{}

	if err := newTestProcessor(store, exec).ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.payloads) != 0 {
		t.Error("entry within backoff window should not be attempted")
	}
}

// TestProcessPending_ExhaustsAttempts tests that repeated failures reach the
// terminal failed state.
func TestProcessPending_ExhaustsAttempts(t *testing.T) {
	entry := pendingEntry("entry-1")
	entry.Attempts = 4
	store := newMockOutboxStore(entry)
	exec := &recordingExecutor{err: errors.New("still down")}

	if err := newTestProcessor(store, exec).ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := store.entries["entry-1"]
	if got.Status != outbox.StatusFailed || !got.IsTerminal() {
		t.Errorf("entry = %+v, want terminal failed", got)
	}
}

// TestProcessSingle tests the admin retry path and its terminal-state guard.
func TestProcessSingle(t *testing.T) {
	store := newMockOutboxStore(pendingEntry("entry-1"))
	exec := &recordingExecutor{}
	p := newTestProcessor(store, exec)

	if err := p.ProcessSingle(context.Background(), "entry-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.entries["entry-1"].Status != outbox.StatusDone {
		t.Errorf("Status = %s, want done", store.entries["entry-1"].Status)
	}

	// Done entries cannot be retried again.
	if err := p.ProcessSingle(context.Background(), "entry-1"); err == nil {
		t.Error("expected error retrying a terminal entry")
	}
}

// TestAbandonEntry tests the admin abandon path.
func TestAbandonEntry(t *testing.T) {
	store := newMockOutboxStore(pendingEntry("entry-1"))
	p := newTestProcessor(store, &recordingExecutor{})

	if err := p.AbandonEntry(context.Background(), "entry-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.entries["entry-1"].Status != outbox.StatusAbandoned {
		t.Errorf("Status = %s, want abandoned", store.entries["entry-1"].Status)
	}
}

// TestEnqueueRegistrationConfirmation tests that a confirmation email lands in
// the outbox with the recipient resolved from the account.
func TestEnqueueRegistrationConfirmation(t *testing.T) {
	accts := newMockAccountStore(account.Account{ID: "user-1", Name: "Mele", Email: "mele@example.com", Role: account.RoleCompetitor})
	box := newMockOutboxStore()
	deps := NotifyDeps{AccountStore: accts, OutboxStore: box, GenerateID: fixedID, Now: fixedNow}

	reg := registration.Registration{
		ID:            "reg-1",
		UserID:        "user-1",
		TotalFee:      27000,
		Status:        registration.StatusWaitlist,
		PaymentStatus: registration.PaymentPending,
	}
	if err := EnqueueRegistrationConfirmation(context.Background(), reg, "Spring Open 2025", deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok := box.entries["test-id-001"]
	if !ok {
		t.Fatal("outbox entry not saved")
	}
	if entry.ActionType != outbox.ActionTypeEmail || entry.Status != outbox.StatusPending {
		t.Errorf("entry = %+v", entry)
	}

	var payload EmailPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload.To != "mele@example.com" {
		t.Errorf("To = %s", payload.To)
	}
	if !strings.Contains(payload.HTML, "waitlist") {
		t.Error("waitlisted registration should mention the waitlist")
	}
}

// TestEmailExecutor tests payload decoding into the sender.
func TestEmailExecutor(t *testing.T) {
	sender := &captureSender{}
	exec := &EmailExecutor{Sender: sender}

	id, err := exec.Execute(context.Background(), `{"to":"mele@example.com","subject":"hi","html":"<p>hi</p>"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "msg-1" {
		t.Errorf("external id = %s, want msg-1", id)
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "mele@example.com" {
		t.Errorf("sent = %+v", sender.sent)
	}

	if _, err := exec.Execute(context.Background(), "not-json"); err == nil {
		t.Error("expected error for malformed payload")
	}
}
