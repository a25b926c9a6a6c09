package registration

import (
	"context"

	domain "compreg/internal/domain/registration"
)

// Store persists Registration state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Registration, error)
	GetByUserAndCompetition(ctx context.Context, userID, competitionID string) (domain.Registration, error)
	Create(ctx context.Context, value domain.Registration) error
	Save(ctx context.Context, value domain.Registration) error
	CountActive(ctx context.Context, competitionID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Registration, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]domain.Registration, error)
}
