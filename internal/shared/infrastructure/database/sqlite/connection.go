package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/carecal/internal/shared/application"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
)

const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

func init() {
	database.Register(database.DriverSQLite, Open)
}

// Connection wraps a single-writer *sql.DB.
type Connection struct {
	db *sql.DB
}

// Open opens (and creates) the SQLite file at cfg.SQLitePath.
func Open(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = strings.TrimPrefix(cfg.URL, "sqlite://")
	}
	if path == "" {
		path = database.DefaultSQLitePath()
	}

	if path != ":memory:" {
		if err := database.EnsureDirectory(path); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&" + pragmas
	} else {
		dsn += "?" + pragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return &Connection{db: db}, nil
}

// DB exposes the handle to SQLite repositories.
func (c *Connection) DB() *sql.DB { return c.db }

func (c *Connection) Driver() database.Driver { return database.DriverSQLite }

func (c *Connection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *Connection) Close() error { return c.db.Close() }

func (c *Connection) UnitOfWork() application.UnitOfWork {
	return persistence.NewSQLiteUnitOfWork(c.db)
}

func (c *Connection) Migrate(ctx context.Context) error {
	return migrations.RunSQLiteMigrations(ctx, c.db)
}
