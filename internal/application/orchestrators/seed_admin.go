package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"compreg/internal/domain/account"
)

// SeedAdminInput carries the initial admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the initial admin account on first boot. It is
// idempotent: if any account exists, nothing happens. With no password
// configured it logs a warning and skips, rather than seeding a guessable
// default.
// POST: Admin account exists, or the seed is skipped
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	if input.Password == "" {
		slog.Warn("seed_event", "event", "admin_seed_skipped", "reason", "no_password_configured")
		return nil
	}

	admin := account.Account{
		ID:        deps.GenerateID(),
		Name:      "Administrator",
		Email:     input.Email,
		Role:      account.RoleAdmin,
		CreatedAt: deps.Now(),
	}
	if err := admin.Validate(); err != nil {
		return err
	}
	if err := admin.SetPassword(input.Password); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, admin); err != nil {
		return fmt.Errorf("save admin account: %w", err)
	}

	slog.Info("seed_event", "event", "admin_seeded", "email", admin.Email)
	return nil
}
