package projections

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// GetCompetitionDetailQuery carries query parameters.
type GetCompetitionDetailQuery struct {
	CompetitionID string
}

// CompetitionDetail is the full competition view.
type CompetitionDetail struct {
	CompetitionSummary
	DescriptionHTML string `json:"description_html"`
	WaitlistSize    int    `json:"waitlist_size"`
}

// GetCompetitionDetailDeps holds dependencies for GetCompetitionDetail.
type GetCompetitionDetailDeps struct {
	CompetitionStore  CompetitionStore
	RegistrationStore RegistrationStore
	Now               func() time.Time
}

// QueryGetCompetitionDetail retrieves one competition with its markdown
// description rendered to HTML.
// PRE: CompetitionID is non-empty
// POST: Returns the detail view or an error if not found
func QueryGetCompetitionDetail(ctx context.Context, query GetCompetitionDetailQuery, deps GetCompetitionDetailDeps) (CompetitionDetail, error) {
	comp, err := deps.CompetitionStore.GetByID(ctx, query.CompetitionID)
	if err != nil {
		return CompetitionDetail{}, err
	}

	taken, err := deps.RegistrationStore.CountActive(ctx, comp.ID)
	if err != nil {
		return CompetitionDetail{}, err
	}

	regs, err := deps.RegistrationStore.ListByCompetition(ctx, comp.ID)
	if err != nil {
		return CompetitionDetail{}, err
	}
	waitlisted := 0
	for _, reg := range regs {
		if reg.IsWaitlisted() {
			waitlisted++
		}
	}

	var description bytes.Buffer
	if comp.Description != "" {
		if err := mdRenderer.Convert([]byte(comp.Description), &description); err != nil {
			return CompetitionDetail{}, fmt.Errorf("render description: %w", err)
		}
	}

	now := deps.Now()
	return CompetitionDetail{
		CompetitionSummary: CompetitionSummary{
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
		},
		DescriptionHTML: description.String(),
		WaitlistSize:    waitlisted,
	}, nil
}
