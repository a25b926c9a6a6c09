package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"compreg/internal/domain/account"
)

// AccountStore defines the interface for account persistence.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// ErrEmailTaken is returned when signing up with an email that already has an
// account.
var ErrEmailTaken = errors.New("an account with this email already exists")

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	AccountStore AccountStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSignup creates a competitor account.
// PRE: Name, email, and password provided; password >= 8 characters
// POST: Account persisted with a bcrypt hash and role competitor
// INVARIANT: Email is unique (checked here, enforced by the store)
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Role:      account.RoleCompetitor,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "signup", "account_id", acct.ID, "email", acct.Email)
	return acct.ID, nil
}
