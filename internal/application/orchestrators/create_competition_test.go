package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"compreg/internal/domain/competition"
)

func validCompetitionInput() CreateCompetitionInput {
	return CreateCompetitionInput{
		Name:    "Winter Open 2025",
		Date:    time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC),
		BaseFee: 15000,
		EventFees: map[string]float64{
			"3x3": 5000,
			"4x4": 7000,
		},
		Events:            []string{"3x3", "4x4"},
		RegistrationOpen:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		RegistrationClose: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
		Capacity:          100,
		CreatedBy:         "admin-1",
	}
}

// TestExecuteCreateCompetition_Valid tests the happy path.
func TestExecuteCreateCompetition_Valid(t *testing.T) {
	store := newMockCompetitionStore()

	id, err := ExecuteCreateCompetition(context.Background(), validCompetitionInput(),
		CreateCompetitionDeps{CompetitionStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "test-id-001" {
		t.Errorf("id = %s, want test-id-001", id)
	}
	comp := store.competitions["test-id-001"]
	if comp.Name != "Winter Open 2025" || comp.CreatedAt != fixedTime {
		t.Errorf("persisted competition = %+v", comp)
	}
}

// TestExecuteCreateCompetition_MissingFee tests that an event without a fee
// entry is rejected.
func TestExecuteCreateCompetition_MissingFee(t *testing.T) {
	store := newMockCompetitionStore()
	input := validCompetitionInput()
	input.Events = append(input.Events, "OH")

	_, err := ExecuteCreateCompetition(context.Background(), input,
		CreateCompetitionDeps{CompetitionStore: store, GenerateID: fixedID, Now: fixedNow})
	if !errors.Is(err, competition.ErrMissingFee) {
		t.Errorf("expected ErrMissingFee, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Error("nothing should be persisted on validation failure")
	}
}

// TestExecuteUpdateCompetition tests that edits persist and identity fields
// survive.
func TestExecuteUpdateCompetition(t *testing.T) {
	store := newMockCompetitionStore(testCompetition())

	patch := validCompetitionInput()
	patch.Name = "Spring Open 2025 (rescheduled)"
	patch.Capacity = 50

	err := ExecuteUpdateCompetition(context.Background(), UpdateCompetitionInput{ID: "comp-1", Patch: patch},
		CreateCompetitionDeps{CompetitionStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	comp := store.competitions["comp-1"]
	if comp.Name != "Spring Open 2025 (rescheduled)" || comp.Capacity != 50 {
		t.Errorf("updated competition = %+v", comp)
	}
	if comp.CreatedBy != "admin-1" {
		t.Errorf("CreatedBy = %s, want preserved admin-1", comp.CreatedBy)
	}
}

// TestExecuteUpdateCompetition_Missing tests the not-found path.
func TestExecuteUpdateCompetition_Missing(t *testing.T) {
	store := newMockCompetitionStore()
	err := ExecuteUpdateCompetition(context.Background(), UpdateCompetitionInput{ID: "nope", Patch: validCompetitionInput()},
		CreateCompetitionDeps{CompetitionStore: store, GenerateID: fixedID, Now: fixedNow})
	if err == nil {
		t.Fatal("expected error for missing competition")
	}
}
