package projections

import (
	"context"

	competitionStore "compreg/internal/adapters/storage/competition"
	domainAccount "compreg/internal/domain/account"
	domainCompetition "compreg/internal/domain/competition"
	domainRegistration "compreg/internal/domain/registration"
)

// CompetitionStore interface for competition queries.
type CompetitionStore interface {
	GetByID(ctx context.Context, id string) (domainCompetition.Competition, error)
	List(ctx context.Context, filter competitionStore.ListFilter) ([]domainCompetition.Competition, error)
}

// RegistrationStore interface for registration queries.
type RegistrationStore interface {
	GetByID(ctx context.Context, id string) (domainRegistration.Registration, error)
	CountActive(ctx context.Context, competitionID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]domainRegistration.Registration, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]domainRegistration.Registration, error)
}

// AccountStore interface for account queries.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (domainAccount.Account, error)
}
