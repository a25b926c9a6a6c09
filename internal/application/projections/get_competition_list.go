package projections

import (
	"context"
	"time"

	competitionStore "compreg/internal/adapters/storage/competition"
)

// GetCompetitionListQuery carries query parameters.
type GetCompetitionListQuery struct {
	OpenOnly bool // only competitions whose registration window contains now
	Upcoming bool // only competitions dated today or later
	Limit    int
	Offset   int
}

// CompetitionSummary is one row in the competition list.
type CompetitionSummary struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Date             time.Time          `json:"date"`
	BaseFee          float64            `json:"base_fee"`
	Events           []string           `json:"events"`
	EventFees        map[string]float64 `json:"event_fees"`
	RegistrationOpen time.Time          `json:"registration_open"`
	RegistrationEnd  time.Time          `json:"registration_close"`
	Capacity         int                `json:"capacity"`
	SpotsTaken       int                `json:"spots_taken"`
	WindowOpen       bool               `json:"window_open"`
}

// GetCompetitionListResult carries the query result.
type GetCompetitionListResult struct {
	Competitions []CompetitionSummary
}

// GetCompetitionListDeps holds dependencies for GetCompetitionList.
type GetCompetitionListDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
	Now               func() time.Time
}

// QueryGetCompetitionList retrieves competitions with occupancy counts.
// PRE: Valid query parameters
// POST: Returns summaries ordered by date; SpotsTaken excludes cancelled
func QueryGetCompetitionList(ctx context.Context, query GetCompetitionListQuery, deps GetCompetitionListDeps) (GetCompetitionListResult, error) {
	now := deps.Now()

	filter := competitionStore.ListFilter{
		Limit:    query.Limit,
		Offset:   query.Offset,
		Upcoming: query.Upcoming,
	}
	if query.OpenOnly {
		filter.OpenAt = now.Format(time.RFC3339)
	}

	comps, err := deps.CompetitionStore.List(ctx, filter)
	if err != nil {
		return GetCompetitionListResult{}, err
	}

	var result []CompetitionSummary
	for _, comp := range comps {
		taken, err := deps.RegistrationStore.CountActive(ctx, comp.ID)
		if err != nil {
			return GetCompetitionListResult{}, err
		}
		result = append(result, CompetitionSummary{
			ID:               comp.ID,
			Name:             comp.Name,
			Date:             comp.Date,
			BaseFee:          comp.BaseFee,
			Events:           comp.Events,
			EventFees:        comp.EventFees,
			RegistrationOpen: comp.RegistrationOpen,
			RegistrationEnd:  comp.RegistrationClose,
			Capacity:         comp.Capacity,
			SpotsTaken:       taken,
			WindowOpen:       comp.WindowOpen(now),
		})
	}

	return GetCompetitionListResult{Competitions: result}, nil
}
