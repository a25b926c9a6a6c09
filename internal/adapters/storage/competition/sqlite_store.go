package competition

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"compreg/internal/adapters/storage"
	domain "compreg/internal/domain/competition"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new competition store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const competitionColumns = "id, name, description, date, base_fee, event_fees, events, registration_open, registration_close, capacity, created_by, created_at"

// scanCompetition reads one competition row, decoding the JSON columns.
func scanCompetition(row interface{ Scan(...any) error }) (domain.Competition, error) {
	var entity domain.Competition
	var date, open, closeAt, createdAt string
	var eventFees, events string
	var createdBy sql.NullString
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Description,
		&date,
		&entity.BaseFee,
		&eventFees,
		&events,
		&open,
		&closeAt,
		&entity.Capacity,
		&createdBy,
		&createdAt,
	)
	if err != nil {
		return domain.Competition{}, err
	}
	if err := json.Unmarshal([]byte(eventFees), &entity.EventFees); err != nil {
		return domain.Competition{}, fmt.Errorf("decode event_fees: %w", err)
	}
	if err := json.Unmarshal([]byte(events), &entity.Events); err != nil {
		return domain.Competition{}, fmt.Errorf("decode events: %w", err)
	}
	entity.Date, _ = time.Parse(time.RFC3339, date)
	entity.RegistrationOpen, _ = time.Parse(time.RFC3339, open)
	entity.RegistrationClose, _ = time.Parse(time.RFC3339, closeAt)
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if createdBy.Valid {
		entity.CreatedBy = createdBy.String
	}
	return entity, nil
}

// GetByID retrieves a Competition by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Competition, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+competitionColumns+" FROM competition WHERE id = ?", id)
	entity, err := scanCompetition(row)
	if err == sql.ErrNoRows {
		return domain.Competition{}, fmt.Errorf("competition not found: %w", err)
	}
	return entity, err
}

// Save persists a Competition (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Competition) error {
	eventFees, err := json.Marshal(entity.EventFees)
	if err != nil {
		return fmt.Errorf("encode event_fees: %w", err)
	}
	events, err := json.Marshal(entity.Events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	var createdBy any
	if entity.CreatedBy != "" {
		createdBy = entity.CreatedBy
	}

	query := `INSERT INTO competition (` + competitionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		name=excluded.name, description=excluded.description, date=excluded.date,
		base_fee=excluded.base_fee, event_fees=excluded.event_fees, events=excluded.events,
		registration_open=excluded.registration_open, registration_close=excluded.registration_close,
		capacity=excluded.capacity`

	_, err = s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Description,
		entity.Date.Format(time.RFC3339),
		entity.BaseFee,
		string(eventFees),
		string(events),
		entity.RegistrationOpen.Format(time.RFC3339),
		entity.RegistrationClose.Format(time.RFC3339),
		entity.Capacity,
		createdBy,
		entity.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// Delete removes a Competition.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM competition WHERE id = ?", id)
	return err
}

// ListAll retrieves every competition, for seeding and admin views.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Competition, error) {
	return s.List(ctx, ListFilter{})
}

// List retrieves Competitions ordered by date.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Competition, error) {
	query := "SELECT " + competitionColumns + " FROM competition WHERE 1=1"
	var args []any

	if filter.OpenAt != "" {
		query += " AND registration_open <= ? AND registration_close >= ?"
		args = append(args, filter.OpenAt, filter.OpenAt)
	}
	if filter.Upcoming {
		query += " AND date >= date('now')"
	}
	query += " ORDER BY date ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Competition
	for rows.Next() {
		entity, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
