package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/carecal/internal/shared/application"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
)

func init() {
	database.Register(database.DriverPostgres, Open)
}

// Connection wraps a pgx pool.
type Connection struct {
	pool *pgxpool.Pool
}

// Open creates a pgx pool from cfg.URL.
func Open(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &Connection{pool: pool}, nil
}

// Pool exposes the pool to postgres repositories.
func (c *Connection) Pool() *pgxpool.Pool { return c.pool }

func (c *Connection) Driver() database.Driver { return database.DriverPostgres }

func (c *Connection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

func (c *Connection) UnitOfWork() application.UnitOfWork {
	return persistence.NewPostgresUnitOfWork(c.pool)
}

func (c *Connection) Migrate(ctx context.Context) error {
	return migrations.RunPostgresMigrations(ctx, c.pool)
}
