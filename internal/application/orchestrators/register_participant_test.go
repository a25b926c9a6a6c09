package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"compreg/internal/domain/registration"
)

func registerDeps(comps *mockCompetitionStore, regs *mockRegistrationStore) RegisterParticipantDeps {
	return RegisterParticipantDeps{
		CompetitionStore:  comps,
		RegistrationStore: regs,
		GenerateID:        fixedID,
		Now:               fixedNow,
	}
}

// TestExecuteRegisterParticipant_Valid tests the full happy path: all three
// events selected, fee 15000 + 5000 + 7000 + 6000 = 33000.
func TestExecuteRegisterParticipant_Valid(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore()

	result, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3", "4x4", "OH"},
	}, registerDeps(comps, regs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RegistrationID != "test-id-001" {
		t.Errorf("RegistrationID = %s, want test-id-001", result.RegistrationID)
	}
	if result.TotalFee != 33000 {
		t.Errorf("TotalFee = %.2f, want 33000", result.TotalFee)
	}
	if result.Status != registration.StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", result.Status)
	}
	if result.PaymentStatus != registration.PaymentPending {
		t.Errorf("PaymentStatus = %s, want pending", result.PaymentStatus)
	}

	stored, ok := regs.registrations["test-id-001"]
	if !ok {
		t.Fatal("registration not persisted")
	}
	if stored.CreatedAt != fixedTime {
		t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, fixedTime)
	}
}

// TestExecuteRegisterParticipant_TwoEvents tests the seed scenario fee:
// 15000 + 5000 + 7000 = 27000.
func TestExecuteRegisterParticipant_TwoEvents(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore()

	result, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3", "4x4"},
	}, registerDeps(comps, regs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalFee != 27000 {
		t.Errorf("TotalFee = %.2f, want 27000", result.TotalFee)
	}
}

// TestExecuteRegisterParticipant_EmptySelection tests rejection of an empty
// event list.
func TestExecuteRegisterParticipant_EmptySelection(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore()

	_, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:        "user-1",
		CompetitionID: "comp-1",
	}, registerDeps(comps, regs))
	if !errors.Is(err, registration.ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
	if len(regs.registrations) != 0 {
		t.Error("nothing should be persisted on validation failure")
	}
}

// TestExecuteRegisterParticipant_InvalidEvents tests rejection of unknown
// event names with the offending names reported.
func TestExecuteRegisterParticipant_InvalidEvents(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore()

	_, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3", "5x5"},
	}, registerDeps(comps, regs))

	var invalid *registration.InvalidEventsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidEventsError, got %v", err)
	}
	if len(invalid.Invalid) != 1 || invalid.Invalid[0] != "5x5" {
		t.Errorf("Invalid = %v, want [5x5]", invalid.Invalid)
	}
}

// TestExecuteRegisterParticipant_WindowClosed tests rejection outside the
// registration window.
func TestExecuteRegisterParticipant_WindowClosed(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore()

	deps := registerDeps(comps, regs)
	deps.Now = func() time.Time { return time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC) }

	_, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3"},
	}, deps)

	var closed *registration.WindowClosedError
	if !errors.As(err, &closed) {
		t.Fatalf("expected WindowClosedError, got %v", err)
	}
}

// TestExecuteRegisterParticipant_SelectionBeforeWindow tests the short-circuit
// order: with both an invalid selection and a closed window, the selection
// error wins.
func TestExecuteRegisterParticipant_SelectionBeforeWindow(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore()

	deps := registerDeps(comps, regs)
	deps.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"5x5"},
	}, deps)

	var invalid *registration.InvalidEventsError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidEventsError to win over window check, got %v", err)
	}
}

// TestExecuteRegisterParticipant_Duplicate tests rejection when a live
// registration already exists for the same user and competition.
func TestExecuteRegisterParticipant_Duplicate(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore(registration.Registration{
		ID:            "reg-existing",
		UserID:        "user-1",
		CompetitionID: "comp-1",
		Status:        registration.StatusConfirmed,
		PaymentStatus: registration.PaymentPending,
	})

	_, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3"},
	}, registerDeps(comps, regs))

	var dup *registration.DuplicateRegistrationError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateRegistrationError, got %v", err)
	}
	if dup.ExistingID != "reg-existing" {
		t.Errorf("ExistingID = %s, want reg-existing", dup.ExistingID)
	}
}

// TestExecuteRegisterParticipant_ReregisterAfterCancel tests that a cancelled
// registration does not block and its row is reused.
func TestExecuteRegisterParticipant_ReregisterAfterCancel(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore(registration.Registration{
		ID:            "reg-old",
		UserID:        "user-1",
		CompetitionID: "comp-1",
		Status:        registration.StatusCancelled,
		PaymentStatus: registration.PaymentCancelled,
	})

	result, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"OH"},
	}, registerDeps(comps, regs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RegistrationID != "reg-old" {
		t.Errorf("RegistrationID = %s, want reused reg-old", result.RegistrationID)
	}
	revived := regs.registrations["reg-old"]
	if revived.Status != registration.StatusConfirmed || revived.PaymentStatus != registration.PaymentPending {
		t.Errorf("revived registration = %+v", revived)
	}
	if revived.TotalFee != 21000 {
		t.Errorf("TotalFee = %.2f, want 21000", revived.TotalFee)
	}
}

// TestExecuteRegisterParticipant_CapacityWaitlist tests that the registration
// lands on the waitlist once active registrations reach capacity.
func TestExecuteRegisterParticipant_CapacityWaitlist(t *testing.T) {
	comp := testCompetition()
	comp.Capacity = 2
	comps := newMockCompetitionStore(comp)
	regs := newMockRegistrationStore(
		registration.Registration{ID: "r1", UserID: "u1", CompetitionID: "comp-1", Status: registration.StatusConfirmed},
		registration.Registration{ID: "r2", UserID: "u2", CompetitionID: "comp-1", Status: registration.StatusConfirmed},
	)

	result, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-3",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3"},
	}, registerDeps(comps, regs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != registration.StatusWaitlist {
		t.Errorf("Status = %s, want waitlist", result.Status)
	}
}

// TestExecuteRegisterParticipant_CancelledFreesCapacity tests that cancelled
// registrations do not count against capacity.
func TestExecuteRegisterParticipant_CancelledFreesCapacity(t *testing.T) {
	comp := testCompetition()
	comp.Capacity = 2
	comps := newMockCompetitionStore(comp)
	regs := newMockRegistrationStore(
		registration.Registration{ID: "r1", UserID: "u1", CompetitionID: "comp-1", Status: registration.StatusConfirmed},
		registration.Registration{ID: "r2", UserID: "u2", CompetitionID: "comp-1", Status: registration.StatusCancelled},
	)

	result, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-3",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3"},
	}, registerDeps(comps, regs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != registration.StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", result.Status)
	}
}

// TestExecuteRegisterParticipant_CompetitionMissing tests the not-found path.
func TestExecuteRegisterParticipant_CompetitionMissing(t *testing.T) {
	comps := newMockCompetitionStore()
	regs := newMockRegistrationStore()

	_, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-missing",
		SelectedEvents: []string{"3x3"},
	}, registerDeps(comps, regs))
	if err == nil {
		t.Fatal("expected error for missing competition")
	}
}

// TestExecuteRegisterParticipant_RaceDuplicate tests that a constraint
// violation surfaced by Create maps to DuplicateRegistrationError.
func TestExecuteRegisterParticipant_RaceDuplicate(t *testing.T) {
	comps := newMockCompetitionStore(testCompetition())
	regs := newMockRegistrationStore()
	regs.createErr = &registration.DuplicateRegistrationError{ExistingID: "reg-race"}

	_, err := ExecuteRegisterParticipant(context.Background(), RegisterParticipantInput{
		UserID:         "user-1",
		CompetitionID:  "comp-1",
		SelectedEvents: []string{"3x3"},
	}, registerDeps(comps, regs))

	var dup *registration.DuplicateRegistrationError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateRegistrationError, got %v", err)
	}
	if dup.ExistingID != "reg-race" {
		t.Errorf("ExistingID = %s, want reg-race", dup.ExistingID)
	}
}
