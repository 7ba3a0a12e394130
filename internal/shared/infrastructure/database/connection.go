package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/carecal/internal/shared/application"
)

// Config holds database configuration.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver
	// URL is the PostgreSQL connection string.
	URL string
	// SQLitePath defaults to ~/.carecal/data.db.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// Connection is an open database handle. Repositories reach the concrete
// pool or *sql.DB through the driver packages.
type Connection interface {
	Driver() Driver
	Ping(ctx context.Context) error
	Close() error
	// UnitOfWork returns a unit of work bound to this connection.
	UnitOfWork() application.UnitOfWork
	// Migrate applies the embedded schema.
	Migrate(ctx context.Context) error
}

// Opener opens a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register makes a driver available to Open. Driver packages call it from
// init.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// Open connects using the configured or detected driver.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".carecal", "data.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
