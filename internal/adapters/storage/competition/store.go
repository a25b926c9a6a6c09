package competition

import (
	"context"

	domain "compreg/internal/domain/competition"
)

// Store persists Competition state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Competition, error)
	Save(ctx context.Context, value domain.Competition) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Competition, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit    int
	Offset   int
	OpenAt   string // RFC3339 instant; keep competitions whose window contains it
	Upcoming bool   // keep competitions dated today or later
}
