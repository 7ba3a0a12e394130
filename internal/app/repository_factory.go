package app

import (
	"database/sql"
	"fmt"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	calendarPersistence "github.com/felixgeelhaar/carecal/internal/calendar/infrastructure/persistence"
	ordersDomain "github.com/felixgeelhaar/carecal/internal/orders/domain"
	ordersPersistence "github.com/felixgeelhaar/carecal/internal/orders/infrastructure/persistence"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// SeriesRepository creates an event series repository for the configured driver.
func (f *RepositoryFactory) SeriesRepository() (calendarDomain.SeriesRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return calendarPersistence.NewPostgresSeriesRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return calendarPersistence.NewSQLiteSeriesRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// EventRepository creates a one-off event repository for the configured driver.
func (f *RepositoryFactory) EventRepository() (calendarDomain.EventRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return calendarPersistence.NewPostgresEventRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return calendarPersistence.NewSQLiteEventRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OrderRepository creates a home-care order repository for the configured driver.
func (f *RepositoryFactory) OrderRepository() (ordersDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return ordersPersistence.NewPostgresOrderRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return ordersPersistence.NewSQLiteOrderRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return outbox.NewPostgresRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return outbox.NewSQLiteRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

func (f *RepositoryFactory) getPostgresPool() (*pgxpool.Pool, error) {
	pgConn, ok := f.conn.(interface{ Pool() *pgxpool.Pool })
	if !ok {
		return nil, fmt.Errorf("postgres connection does not expose Pool()")
	}
	return pgConn.Pool(), nil
}

func (f *RepositoryFactory) getSQLiteDB() (*sql.DB, error) {
	sqliteConn, ok := f.conn.(interface{ DB() *sql.DB })
	if !ok {
		return nil, fmt.Errorf("sqlite connection does not expose DB()")
	}
	return sqliteConn.DB(), nil
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
