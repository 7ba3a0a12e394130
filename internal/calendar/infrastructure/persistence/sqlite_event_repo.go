package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteEventRepository implements domain.EventRepository for local mode.
// Timestamps are stored in a fixed width UTC layout so text comparison
// orders them chronologically.
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewSQLiteEventRepository creates a new SQLite event repository.
func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Save(ctx context.Context, e *domain.Event) error {
	const query = `
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			text_color = excluded.text_color,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			version = excluded.version,
			updated_at = excluded.updated_at
		WHERE events.version < excluded.version
	`
	res, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx, query,
		e.ID().String(), e.Owner().ID.String(), string(e.Owner().Type), e.Title(), e.Description(), e.TextColor(),
		sharedPersistence.SQLiteTime(e.Start()), sharedPersistence.SQLiteTime(e.End()), e.Version(),
		sharedPersistence.SQLiteTime(e.CreatedAt()), sharedPersistence.SQLiteTime(e.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save event %s: %w", e.ID(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sharedPersistence.ErrConcurrentModification
	}
	return nil
}

func (r *SQLiteEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, err := scanSQLiteEvent(sharedPersistence.SQLiteExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns the events of the filtered owners that overlap window.
func (r *SQLiteEventRepository) List(ctx context.Context, filter domain.OwnerFilter, window domain.Window) ([]*domain.Event, error) {
	if filter.IsEmpty() {
		return []*domain.Event{}, nil
	}

	placeholders, args := inClause(filter)
	args = append(args, sharedPersistence.SQLiteTime(window.To), sharedPersistence.SQLiteTime(window.From))
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id IN (` + placeholders + `)
		  AND starts_at < ?
		  AND ends_at > ?
		ORDER BY starts_at, created_at, id`

	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	result := []*domain.Event{}
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func scanSQLiteEvent(scanner rowScanner) (*domain.Event, error) {
	var (
		row                                                 eventRow
		id, ownerID, startsAt, endsAt, createdAt, updatedAt string
	)
	if err := scanner.Scan(
		&id, &ownerID, &row.ownerType, &row.title, &row.description, &row.textColor,
		&startsAt, &endsAt, &row.version, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if row.id, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if row.ownerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&row.startsAt, startsAt},
		{&row.endsAt, endsAt},
		{&row.createdAt, createdAt},
		{&row.updatedAt, updatedAt},
	} {
		if *f.dst, err = sharedPersistence.ParseSQLiteTime(f.src); err != nil {
			return nil, fmt.Errorf("parse timestamp of event %s: %w", id, err)
		}
	}
	return row.toDomain()
}
