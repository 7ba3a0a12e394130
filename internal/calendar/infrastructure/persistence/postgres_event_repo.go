package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const eventColumns = `
	id, owner_id, owner_type, title, description, text_color,
	starts_at, ends_at, version, created_at, updated_at
`

// PostgresEventRepository implements domain.EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

func (r *PostgresEventRepository) Save(ctx context.Context, e *domain.Event) error {
	const query = `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			text_color = EXCLUDED.text_color,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE events.version < EXCLUDED.version
	`
	tag, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query,
		e.ID(), e.Owner().ID, string(e.Owner().Type), e.Title(), e.Description(), e.TextColor(),
		e.Start().UTC(), e.End().UTC(), e.Version(), e.CreatedAt(), e.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save event %s: %w", e.ID(), err)
	}
	if tag.RowsAffected() == 0 {
		return sharedPersistence.ErrConcurrentModification
	}
	return nil
}

func (r *PostgresEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, err := scanPostgresEvent(sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns the events of the filtered owners that overlap window.
func (r *PostgresEventRepository) List(ctx context.Context, filter domain.OwnerFilter, window domain.Window) ([]*domain.Event, error) {
	if filter.IsEmpty() {
		return []*domain.Event{}, nil
	}

	const query = `SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = ANY($1::uuid[])
		  AND starts_at < $3
		  AND ends_at > $2
		ORDER BY starts_at, created_at, id`

	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, query,
		pq.Array(ownerIDStrings(filter)), window.From.UTC(), window.To.UTC())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	result := []*domain.Event{}
	for rows.Next() {
		e, err := scanPostgresEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func scanPostgresEvent(scanner pgx.Row) (*domain.Event, error) {
	var row eventRow
	if err := scanner.Scan(
		&row.id, &row.ownerID, &row.ownerType, &row.title, &row.description, &row.textColor,
		&row.startsAt, &row.endsAt, &row.version, &row.createdAt, &row.updatedAt,
	); err != nil {
		return nil, err
	}
	row.startsAt = row.startsAt.UTC()
	row.endsAt = row.endsAt.UTC()
	return row.toDomain()
}
