package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteSeriesRepository implements domain.SeriesRepository for local mode.
type SQLiteSeriesRepository struct {
	db *sql.DB
}

// NewSQLiteSeriesRepository creates a new SQLite series repository.
func NewSQLiteSeriesRepository(db *sql.DB) *SQLiteSeriesRepository {
	return &SQLiteSeriesRepository{db: db}
}

func (r *SQLiteSeriesRepository) Save(ctx context.Context, s *domain.EventSeries) error {
	const query = `
		INSERT INTO event_series (` + seriesColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			start_date = excluded.start_date,
			recurrency = excluded.recurrency,
			schedule = excluded.schedule,
			end_kind = excluded.end_kind,
			end_date = excluded.end_date,
			end_count = excluded.end_count,
			title = excluded.title,
			description = excluded.description,
			text_color = excluded.text_color,
			version = excluded.version,
			updated_at = excluded.updated_at
		WHERE event_series.version < excluded.version
	`
	row, err := newSeriesRow(s)
	if err != nil {
		return err
	}

	var orderID, endDate sql.NullString
	if row.orderID != nil {
		orderID = sql.NullString{String: row.orderID.String(), Valid: true}
	}
	if row.endDate != nil {
		endDate = sql.NullString{String: row.endDate.Format(dateLayout), Valid: true}
	}
	var endCount sql.NullInt64
	if row.endCount != nil {
		endCount = sql.NullInt64{Int64: int64(*row.endCount), Valid: true}
	}

	res, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx, query,
		row.id.String(), row.ownerID.String(), row.ownerType, orderID,
		row.startDate.Format(dateLayout), row.recurrency, string(row.schedule),
		row.endKind, endDate, endCount, row.title, row.description, row.textColor,
		row.version, sharedPersistence.SQLiteTime(row.createdAt), sharedPersistence.SQLiteTime(row.updatedAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrSeriesAlreadyExists
		}
		return fmt.Errorf("save series %s: %w", row.id, err)
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

func (r *SQLiteSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventSeries, error) {
	return r.findOne(ctx, `SELECT `+seriesColumns+` FROM event_series WHERE id = ?`, id.String())
}

func (r *SQLiteSeriesRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.EventSeries, error) {
	return r.findOne(ctx, `SELECT `+seriesColumns+` FROM event_series WHERE order_id = ?`, orderID.String())
}

// List returns the series of the filtered owners ordered by start date.
func (r *SQLiteSeriesRepository) List(ctx context.Context, filter domain.OwnerFilter) ([]*domain.EventSeries, error) {
	if filter.IsEmpty() {
		return []*domain.EventSeries{}, nil
	}

	placeholders, args := inClause(filter)
	query := `SELECT ` + seriesColumns + `
		FROM event_series
		WHERE owner_id IN (` + placeholders + `)
		ORDER BY start_date, created_at, id`

	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	result := []*domain.EventSeries{}
	for rows.Next() {
		s, err := scanSQLiteSeries(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *SQLiteSeriesRepository) findOne(ctx context.Context, query string, arg any) (*domain.EventSeries, error) {
	s, err := scanSQLiteSeries(sharedPersistence.SQLiteExecutor(ctx, r.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrSeriesNotFound
		}
		return nil, err
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSeries(scanner rowScanner) (*domain.EventSeries, error) {
	var (
		row                              seriesRow
		id, ownerID, startDate, schedule string
		createdAt, updatedAt             string
		orderID, endDate                 sql.NullString
		endCount                         sql.NullInt64
	)
	if err := scanner.Scan(
		&id, &ownerID, &row.ownerType, &orderID, &startDate, &row.recurrency, &schedule,
		&row.endKind, &endDate, &endCount, &row.title, &row.description, &row.textColor,
		&row.version, &createdAt, &updatedAt,
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
	if orderID.Valid {
		oid, err := uuid.Parse(orderID.String)
		if err != nil {
			return nil, err
		}
		row.orderID = &oid
	}
	if row.startDate, err = time.Parse(dateLayout, startDate); err != nil {
		return nil, fmt.Errorf("parse start_date of series %s: %w", id, err)
	}
	if endDate.Valid {
		d, err := time.Parse(dateLayout, endDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse end_date of series %s: %w", id, err)
		}
		row.endDate = &d
	}
	if endCount.Valid {
		n := int(endCount.Int64)
		row.endCount = &n
	}
	if row.createdAt, err = sharedPersistence.ParseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if row.updatedAt, err = sharedPersistence.ParseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	row.schedule = []byte(schedule)
	return row.toDomain()
}

func inClause(filter domain.OwnerFilter) (string, []any) {
	ids := ownerIDStrings(filter)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}
