package orchestrators

import (
	"context"
	"errors"
	"testing"

	"compreg/internal/domain/registration"
)

func pendingRegistration() registration.Registration {
	return registration.Registration{
		ID:             "reg-1",
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3"},
		TotalFee:       20000,
		PaymentStatus:  registration.PaymentPending,
		Status:         registration.StatusConfirmed,
	}
}

// TestExecuteUpdateSelection_Valid tests that the selection changes and the
// fee is recomputed: 15000 + 7000 + 6000 = 28000.
func TestExecuteUpdateSelection_Valid(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore(pendingRegistration())

	result, err := ExecuteUpdateSelection(context.Background(), UpdateSelectionInput{
		RegistrationID: "reg-1",
		UserID:         "user-1",
		SelectedEvents: []string{"4x4", "OH"},
	}, UpdateSelectionDeps{CompetitionStore: comps, RegistrationStore: regs, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalFee != 28000 {
		t.Errorf("TotalFee = %.2f, want 28000", result.TotalFee)
	}
	if got := regs.registrations["reg-1"]; len(got.SelectedEvents) != 2 || got.TotalFee != 28000 {
		t.Errorf("persisted registration = %+v", got)
	}
}

// TestExecuteUpdateSelection_WrongUser tests the ownership check.
func TestExecuteUpdateSelection_WrongUser(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore(pendingRegistration())

	_, err := ExecuteUpdateSelection(context.Background(), UpdateSelectionInput{
		RegistrationID: "reg-1",
		UserID:         "user-2",
		SelectedEvents: []string{"4x4"},
	}, UpdateSelectionDeps{CompetitionStore: comps, RegistrationStore: regs, Now: fixedNow})
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

// TestExecuteUpdateSelection_Paid tests that paid registrations are locked.
func TestExecuteUpdateSelection_Paid(t *testing.T) {
	reg := pendingRegistration()
	reg.PaymentStatus = registration.PaymentCompleted
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore(reg)

	_, err := ExecuteUpdateSelection(context.Background(), UpdateSelectionInput{
		RegistrationID: "reg-1",
		UserID:         "user-1",
		SelectedEvents: []string{"4x4"},
	}, UpdateSelectionDeps{CompetitionStore: comps, RegistrationStore: regs, Now: fixedNow})
	if !errors.Is(err, registration.ErrAlreadyPaid) {
		t.Errorf("expected ErrAlreadyPaid, got %v", err)
	}
}

// TestExecuteUpdateSelection_InvalidEvents tests selection validation.
func TestExecuteUpdateSelection_InvalidEvents(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore(pendingRegistration())

	_, err := ExecuteUpdateSelection(context.Background(), UpdateSelectionInput{
		RegistrationID: "reg-1",
		UserID:         "user-1",
		SelectedEvents: []string{"pyraminx"},
	}, UpdateSelectionDeps{CompetitionStore: comps, RegistrationStore: regs, Now: fixedNow})

	var invalid *registration.InvalidEventsError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidEventsError, got %v", err)
	}
}

// TestExecuteCancelRegistration_Valid tests a pending registration cancels.
func TestExecuteCancelRegistration_Valid(t *testing.T) {
	regs := newMockRegistrationStore(pendingRegistration())

	err := ExecuteCancelRegistration(context.Background(), CancelRegistrationInput{
		RegistrationID: "reg-1",
		UserID:         "user-1",
	}, CancelRegistrationDeps{RegistrationStore: regs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := regs.registrations["reg-1"]
	if got.Status != registration.StatusCancelled || got.PaymentStatus != registration.PaymentCancelled {
		t.Errorf("registration = %+v, want cancelled", got)
	}
}

// TestExecuteCancelRegistration_Paid tests that paid registrations cannot
// cancel through this path.
func TestExecuteCancelRegistration_Paid(t *testing.T) {
	reg := pendingRegistration()
	reg.PaymentStatus = registration.PaymentCompleted
	regs := newMockRegistrationStore(reg)

	err := ExecuteCancelRegistration(context.Background(), CancelRegistrationInput{
		RegistrationID: "reg-1",
		UserID:         "user-1",
	}, CancelRegistrationDeps{RegistrationStore: regs})
	if !errors.Is(err, registration.ErrPaidCancellation) {
		t.Errorf("expected ErrPaidCancellation, got %v", err)
	}
}

// TestExecuteCancelRegistration_WrongUser tests the ownership check.
func TestExecuteCancelRegistration_WrongUser(t *testing.T) {
	regs := newMockRegistrationStore(pendingRegistration())

	err := ExecuteCancelRegistration(context.Background(), CancelRegistrationInput{
		RegistrationID: "reg-1",
		UserID:         "user-9",
	}, CancelRegistrationDeps{RegistrationStore: regs})
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

// TestExecutePromoteRegistration tests waitlist promotion and its guard.
func TestExecutePromoteRegistration(t *testing.T) {
	reg := pendingRegistration()
	reg.Status = registration.StatusWaitlist
	regs := newMockRegistrationStore(reg)

	if err := ExecutePromoteRegistration(context.Background(), PromoteRegistrationInput{RegistrationID: "reg-1"},
		CancelRegistrationDeps{RegistrationStore: regs}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := regs.registrations["reg-1"]; got.Status != registration.StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}

	// Promoting an already-confirmed registration fails.
	err := ExecutePromoteRegistration(context.Background(), PromoteRegistrationInput{RegistrationID: "reg-1"},
		CancelRegistrationDeps{RegistrationStore: regs})
	if !errors.Is(err, registration.ErrNotWaitlisted) {
		t.Errorf("expected ErrNotWaitlisted, got %v", err)
	}
}
