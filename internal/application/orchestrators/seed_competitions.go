package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"compreg/internal/domain/competition"
)

// CompetitionLister exposes existing competitions for idempotent seeding.
type CompetitionLister interface {
	ListAll(ctx context.Context) ([]competition.Competition, error)
}

// demoCompetition describes a competition seeded in development mode.
type demoCompetition struct {
	Name      string
	Date      string // YYYY-MM-DD
	BaseFee   float64
	EventFees map[string]float64
	Events    []string
	OpenDays  int // window opens this many days before Date
	CloseDays int // window closes this many days before Date
	Capacity  int
}

// demoCompetitions is the development seed data.
var demoCompetitions = []demoCompetition{
	{
		Name:    "City Summer Open",
		Date:    "2026-01-17",
		BaseFee: 15000,
		EventFees: map[string]float64{
			"3x3": 5000,
			"4x4": 7000,
			"OH":  6000,
		},
		Events:    []string{"3x3", "4x4", "OH"},
		OpenDays:  90,
		CloseDays: 4,
		Capacity:  120,
	},
	{
		Name:    "Regional Cube Day",
		Date:    "2026-02-21",
		BaseFee: 10000,
		EventFees: map[string]float64{
			"3x3":     5000,
			"2x2":     3000,
			"pyramid": 4000,
		},
		Events:    []string{"3x3", "2x2", "pyramid"},
		OpenDays:  60,
		CloseDays: 7,
		Capacity:  0, // unlimited
	},
}

// ExecuteSeedCompetitions seeds demo competitions in development mode. It is
// idempotent: competitions are matched by name and skipped when present.
func ExecuteSeedCompetitions(ctx context.Context, lister CompetitionLister, deps CreateCompetitionDeps) error {
	existing, err := lister.ListAll(ctx)
	if err != nil {
		return err
	}
	existingNames := make(map[string]bool, len(existing))
	for _, comp := range existing {
		existingNames[comp.Name] = true
	}

	var seeded int
	for _, demo := range demoCompetitions {
		if existingNames[demo.Name] {
			continue
		}

		date, err := time.Parse("2006-01-02", demo.Date)
		if err != nil {
			continue // Skip invalid dates
		}

		_, err = ExecuteCreateCompetition(ctx, CreateCompetitionInput{
			Name:              demo.Name,
			Description:       "Seeded demo competition.",
			Date:              date,
			BaseFee:           demo.BaseFee,
			EventFees:         demo.EventFees,
			Events:            demo.Events,
			RegistrationOpen:  date.AddDate(0, 0, -demo.OpenDays),
			RegistrationClose: date.AddDate(0, 0, -demo.CloseDays),
			Capacity:          demo.Capacity,
			CreatedBy:         "system",
		}, deps)
		if err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		slog.Info("seed_event", "event", "competitions_seeded", "count", seeded)
	}
	return nil
}
