package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"compreg/internal/adapters/storage"
	domain "compreg/internal/domain/registration"
)

// ErrNotFound is returned when no registration matches the lookup.
var ErrNotFound = sql.ErrNoRows

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const registrationColumns = "id, user_id, competition_id, selected_events, total_fee, payment_status, status, created_at, paid_at"

// scanRegistration reads one registration row, decoding the JSON selection.
func scanRegistration(row interface{ Scan(...any) error }) (domain.Registration, error) {
	var entity domain.Registration
	var selected, createdAt string
	var paidAt sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.UserID,
		&entity.CompetitionID,
		&selected,
		&entity.TotalFee,
		&entity.PaymentStatus,
		&entity.Status,
		&createdAt,
		&paidAt,
	)
	if err != nil {
		return domain.Registration{}, err
	}
	if err := json.Unmarshal([]byte(selected), &entity.SelectedEvents); err != nil {
		return domain.Registration{}, fmt.Errorf("decode selected_events: %w", err)
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if paidAt.Valid && paidAt.String != "" {
		entity.PaidAt, _ = time.Parse(time.RFC3339, paidAt.String)
	}
	return entity, nil
}

// GetByID retrieves a Registration by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+registrationColumns+" FROM registration WHERE id = ?", id)
	return scanRegistration(row)
}

// GetByUserAndCompetition retrieves the registration for a (user, competition) pair.
// PRE: userID and competitionID are non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByUserAndCompetition(ctx context.Context, userID, competitionID string) (domain.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registration WHERE user_id = ? AND competition_id = ?",
		userID, competitionID)
	return scanRegistration(row)
}

// Create inserts a new Registration. The UNIQUE(competition_id, user_id)
// constraint backstops concurrent duplicate attempts: a violation is mapped
// to DuplicateRegistrationError carrying the existing registration's ID.
// PRE: entity has been validated
// POST: Entity is inserted, or DuplicateRegistrationError is returned
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Registration) error {
	selected, err := json.Marshal(entity.SelectedEvents)
	if err != nil {
		return fmt.Errorf("encode selected_events: %w", err)
	}
	var paidAt any
	if !entity.PaidAt.IsZero() {
		paidAt = entity.PaidAt.Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO registration ("+registrationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		entity.ID,
		entity.UserID,
		entity.CompetitionID,
		string(selected),
		entity.TotalFee,
		entity.PaymentStatus,
		entity.Status,
		entity.CreatedAt.Format(time.RFC3339),
		paidAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		existing, lookupErr := s.GetByUserAndCompetition(ctx, entity.UserID, entity.CompetitionID)
		if lookupErr == nil {
			return &domain.DuplicateRegistrationError{ExistingID: existing.ID}
		}
		return &domain.DuplicateRegistrationError{}
	}
	return err
}

// Save updates an existing Registration.
// PRE: entity exists
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Registration) error {
	selected, err := json.Marshal(entity.SelectedEvents)
	if err != nil {
		return fmt.Errorf("encode selected_events: %w", err)
	}
	var paidAt any
	if !entity.PaidAt.IsZero() {
		paidAt = entity.PaidAt.Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE registration SET selected_events = ?, total_fee = ?, payment_status = ?, status = ?, paid_at = ?
		WHERE id = ?`,
		string(selected),
		entity.TotalFee,
		entity.PaymentStatus,
		entity.Status,
		paidAt,
		entity.ID,
	)
	return err
}

// CountActive returns the number of non-cancelled registrations for a
// competition. Used for capacity admission decisions.
// PRE: competitionID is non-empty
// POST: Returns count >= 0
func (s *SQLiteStore) CountActive(ctx context.Context, competitionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM registration WHERE competition_id = ? AND status != ?",
		competitionID, domain.StatusCancelled).Scan(&count)
	return count, err
}

// ListByUser retrieves a user's registrations, newest first.
// PRE: userID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Registration, error) {
	return s.list(ctx, "SELECT "+registrationColumns+" FROM registration WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// ListByCompetition retrieves a competition's registrations, oldest first so
// organizers see waitlist order.
// PRE: competitionID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByCompetition(ctx context.Context, competitionID string) ([]domain.Registration, error) {
	return s.list(ctx, "SELECT "+registrationColumns+" FROM registration WHERE competition_id = ? ORDER BY created_at ASC", competitionID)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Registration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Registration
	for rows.Next() {
		entity, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
