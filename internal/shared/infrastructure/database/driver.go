package database

import "strings"

// Driver represents a database backend type.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string { return string(d) }

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// DetectDriver infers the backend from a connection string. An empty URL
// selects SQLite so the CLI works without any setup.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"), strings.HasSuffix(url, ".sqlite"), strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite
	default:
		return DriverPostgres
	}
}
