package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const seriesColumns = `
	id, owner_id, owner_type, order_id, start_date, recurrency, schedule,
	end_kind, end_date, end_count, title, description, text_color,
	version, created_at, updated_at
`

// PostgresSeriesRepository implements domain.SeriesRepository using PostgreSQL.
type PostgresSeriesRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSeriesRepository creates a new PostgreSQL series repository.
func NewPostgresSeriesRepository(pool *pgxpool.Pool) *PostgresSeriesRepository {
	return &PostgresSeriesRepository{pool: pool}
}

// Save inserts the series or advances the stored row to its version. The
// unique order_id column turns a second series for one order into
// domain.ErrSeriesAlreadyExists.
func (r *PostgresSeriesRepository) Save(ctx context.Context, s *domain.EventSeries) error {
	const query = `
		INSERT INTO event_series (` + seriesColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			recurrency = EXCLUDED.recurrency,
			schedule = EXCLUDED.schedule,
			end_kind = EXCLUDED.end_kind,
			end_date = EXCLUDED.end_date,
			end_count = EXCLUDED.end_count,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			text_color = EXCLUDED.text_color,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE event_series.version < EXCLUDED.version
	`
	row, err := newSeriesRow(s)
	if err != nil {
		return err
	}

	tag, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query,
		row.id, row.ownerID, row.ownerType, row.orderID, row.startDate, row.recurrency, row.schedule,
		row.endKind, row.endDate, row.endCount, row.title, row.description, row.textColor,
		row.version, row.createdAt, row.updatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrSeriesAlreadyExists
		}
		return fmt.Errorf("save series %s: %w", row.id, err)
	}
	if tag.RowsAffected() == 0 {
		return sharedPersistence.ErrConcurrentModification
	}
	return nil
}

func (r *PostgresSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventSeries, error) {
	return r.findOne(ctx, `SELECT `+seriesColumns+` FROM event_series WHERE id = $1`, id)
}

func (r *PostgresSeriesRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.EventSeries, error) {
	return r.findOne(ctx, `SELECT `+seriesColumns+` FROM event_series WHERE order_id = $1`, orderID)
}

// List returns the series of the filtered owners ordered by start date.
func (r *PostgresSeriesRepository) List(ctx context.Context, filter domain.OwnerFilter) ([]*domain.EventSeries, error) {
	if filter.IsEmpty() {
		return []*domain.EventSeries{}, nil
	}

	const query = `SELECT ` + seriesColumns + `
		FROM event_series
		WHERE owner_id = ANY($1::uuid[])
		ORDER BY start_date, created_at, id`

	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, query, pq.Array(ownerIDStrings(filter)))
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	result := []*domain.EventSeries{}
	for rows.Next() {
		s, err := scanPostgresSeries(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *PostgresSeriesRepository) findOne(ctx context.Context, query string, arg any) (*domain.EventSeries, error) {
	s, err := scanPostgresSeries(sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrSeriesNotFound
		}
		return nil, err
	}
	return s, nil
}

func scanPostgresSeries(scanner pgx.Row) (*domain.EventSeries, error) {
	var row seriesRow
	if err := scanner.Scan(
		&row.id, &row.ownerID, &row.ownerType, &row.orderID, &row.startDate, &row.recurrency, &row.schedule,
		&row.endKind, &row.endDate, &row.endCount, &row.title, &row.description, &row.textColor,
		&row.version, &row.createdAt, &row.updatedAt,
	); err != nil {
		return nil, err
	}
	row.startDate = utcDate(row.startDate)
	if row.endDate != nil {
		d := utcDate(*row.endDate)
		row.endDate = &d
	}
	return row.toDomain()
}

// utcDate drops whatever location the driver attached to a DATE column.
func utcDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
