package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"compreg/internal/adapters/storage"
	domain "compreg/internal/domain/outbox"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const outboxColumns = "id, action_type, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message"

// scanEntry reads one outbox row.
func scanEntry(row interface{ Scan(...any) error }) (domain.Entry, error) {
	var entity domain.Entry
	var lastAttempted sql.NullString
	var createdAt string
	err := row.Scan(
		&entity.ID,
		&entity.ActionType,
		&entity.Payload,
		&entity.Status,
		&entity.Attempts,
		&entity.MaxAttempts,
		&lastAttempted,
		&createdAt,
		&entity.ExternalID,
		&entity.ErrorMessage,
	)
	if err != nil {
		return domain.Entry{}, err
	}
	if lastAttempted.Valid && lastAttempted.String != "" {
		entity.LastAttemptedAt, _ = time.Parse(time.RFC3339, lastAttempted.String)
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return entity, nil
}

// GetByID retrieves an Entry by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+outboxColumns+" FROM outbox WHERE id = ?", id)
	entity, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return domain.Entry{}, fmt.Errorf("outbox entry not found: %w", err)
	}
	return entity, err
}

// Save persists an Entry (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Entry) error {
	var lastAttempted any
	if !entity.LastAttemptedAt.IsZero() {
		lastAttempted = entity.LastAttemptedAt.Format(time.RFC3339)
	}

	query := `INSERT INTO outbox (` + outboxColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		status=excluded.status, attempts=excluded.attempts,
		last_attempted_at=excluded.last_attempted_at,
		external_id=excluded.external_id, error_message=excluded.error_message`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ActionType,
		entity.Payload,
		entity.Status,
		entity.Attempts,
		entity.MaxAttempts,
		lastAttempted,
		entity.CreatedAt.Format(time.RFC3339),
		entity.ExternalID,
		entity.ErrorMessage,
	)
	return err
}

// ListPending retrieves retryable entries, oldest first.
// PRE: limit > 0
// POST: Returns pending/retrying/failed entries with attempts remaining
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.list(ctx,
		"SELECT "+outboxColumns+" FROM outbox WHERE status IN (?, ?, ?) AND attempts < max_attempts ORDER BY created_at ASC LIMIT ?",
		domain.StatusPending, domain.StatusRetrying, domain.StatusFailed, limit)
}

// List retrieves recent entries regardless of status, newest first.
// PRE: limit > 0
// POST: Returns up to limit entries
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.list(ctx, "SELECT "+outboxColumns+" FROM outbox ORDER BY created_at DESC LIMIT ?", limit)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Entry
	for rows.Next() {
		entity, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
