package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// SQLiteOrderRepository implements domain.Repository for local mode.
type SQLiteOrderRepository struct {
	db *sql.DB
}

// NewSQLiteOrderRepository creates a new SQLite order repository.
func NewSQLiteOrderRepository(db *sql.DB) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{db: db}
}

// Save inserts the order or advances the stored row to the order's version.
func (r *SQLiteOrderRepository) Save(ctx context.Context, o *domain.HomeCareOrder) error {
	const query = `
		INSERT INTO home_care_orders (
			id, health_unit_id, patient_id, patient_name, status,
			start_date, recurrency, schedule, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			version = excluded.version,
			updated_at = excluded.updated_at
		WHERE home_care_orders.version < excluded.version
	`
	info := o.ScheduleInformation()
	schedule, err := json.Marshal(scheduleOrEmpty(info.Schedule))
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	res, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx, query,
		o.ID().String(),
		o.HealthUnitID().String(),
		o.Patient().ID.String(),
		o.Patient().Name,
		string(o.Status()),
		info.StartDate.Format(dateLayout),
		info.Recurrency.Code(),
		string(schedule),
		o.Version(),
		sharedPersistence.SQLiteTime(o.CreatedAt()),
		sharedPersistence.SQLiteTime(o.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save order %s: %w", o.ID(), err)
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

// FindByID loads one order.
func (r *SQLiteOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.HomeCareOrder, error) {
	const query = `
		SELECT id, health_unit_id, patient_id, patient_name, status,
		       start_date, recurrency, schedule, version, created_at, updated_at
		FROM home_care_orders
		WHERE id = ?
	`
	var (
		idStr, unitStr, patientStr, startDate, schedule, createdAt, updatedAt string
		row                                                                   orderRow
	)
	err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryRowContext(ctx, query, id.String()).Scan(
		&idStr, &unitStr, &patientStr, &row.patientName, &row.status,
		&startDate, &row.recurrency, &schedule, &row.version, &createdAt, &updatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	if row.id, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if row.healthUnitID, err = uuid.Parse(unitStr); err != nil {
		return nil, err
	}
	if row.patientID, err = uuid.Parse(patientStr); err != nil {
		return nil, err
	}
	if row.startDate, err = time.Parse(dateLayout, startDate); err != nil {
		return nil, fmt.Errorf("parse start_date of order %s: %w", idStr, err)
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
