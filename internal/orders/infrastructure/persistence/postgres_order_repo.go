package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upsertOrderPostgres = `
	INSERT INTO home_care_orders (
		id, health_unit_id, patient_id, patient_name, status,
		start_date, recurrency, schedule, version, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		version = EXCLUDED.version,
		updated_at = EXCLUDED.updated_at
	WHERE home_care_orders.version < EXCLUDED.version
`

// PostgresOrderRepository implements domain.Repository using PostgreSQL.
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

// Save inserts the order or advances the stored row to the order's version.
func (r *PostgresOrderRepository) Save(ctx context.Context, o *domain.HomeCareOrder) error {
	info := o.ScheduleInformation()
	schedule, err := json.Marshal(scheduleOrEmpty(info.Schedule))
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	tag, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, upsertOrderPostgres,
		o.ID(),
		o.HealthUnitID(),
		o.Patient().ID,
		o.Patient().Name,
		string(o.Status()),
		info.StartDate,
		info.Recurrency.Code(),
		schedule,
		o.Version(),
		o.CreatedAt(),
		o.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save order %s: %w", o.ID(), err)
	}
	if tag.RowsAffected() == 0 {
		return sharedPersistence.ErrConcurrentModification
	}
	return nil
}

// FindByID loads one order.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.HomeCareOrder, error) {
	const query = `
		SELECT id, health_unit_id, patient_id, patient_name, status,
		       start_date, recurrency, schedule, version, created_at, updated_at
		FROM home_care_orders
		WHERE id = $1
	`
	var (
		row          orderRow
		startDate    time.Time
		scheduleJSON []byte
	)
	err := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&row.id, &row.healthUnitID, &row.patientID, &row.patientName, &row.status,
		&startDate, &row.recurrency, &scheduleJSON, &row.version, &row.createdAt, &row.updatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	row.startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	row.schedule = scheduleJSON
	return row.toDomain()
}

// orderRow is the storage shape shared by both backends.
type orderRow struct {
	id           uuid.UUID
	healthUnitID uuid.UUID
	patientID    uuid.UUID
	patientName  string
	status       string
	startDate    time.Time
	recurrency   int
	schedule     []byte
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

func (row orderRow) toDomain() (*domain.HomeCareOrder, error) {
	status, err := domain.ParseStatus(row.status)
	if err != nil {
		return nil, err
	}
	recurrency, err := calendarDomain.ParseIntervalKind(row.recurrency)
	if err != nil {
		return nil, err
	}
	var schedule calendarDomain.Schedule
	if err := json.Unmarshal(row.schedule, &schedule); err != nil {
		return nil, fmt.Errorf("decode schedule of order %s: %w", row.id, err)
	}

	return domain.RehydrateHomeCareOrder(
		sharedDomain.RehydrateBaseEntity(row.id, row.createdAt, row.updatedAt),
		row.version,
		domain.OrderParams{
			HealthUnitID: row.healthUnitID,
			Patient:      domain.Patient{ID: row.patientID, Name: row.patientName},
			Schedule: domain.ScheduleInformation{
				StartDate:  row.startDate,
				Recurrency: recurrency,
				Schedule:   schedule,
			},
		},
		status,
	), nil
}

func scheduleOrEmpty(s calendarDomain.Schedule) calendarDomain.Schedule {
	if s == nil {
		return calendarDomain.Schedule{}
	}
	return s
}
