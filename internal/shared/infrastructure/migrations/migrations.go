package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

// upFiles lists the .up.sql files of dir in apply order.
func upFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, dir+"/"+entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// RunSQLiteMigrations executes all SQLite migrations in order. Every
// statement is idempotent so running twice is harmless.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	files, err := upFiles("sqlite")
	if err != nil {
		return err
	}
	for _, file := range files {
		migration, err := migrationsFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}

// RunPostgresMigrations executes all PostgreSQL migrations in order.
func RunPostgresMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := upFiles("postgres")
	if err != nil {
		return err
	}
	for _, file := range files {
		migration, err := migrationsFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := pool.Exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}
