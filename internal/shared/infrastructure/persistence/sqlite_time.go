package persistence

import (
	"database/sql"
	"fmt"
	"time"
)

// sqliteTimeLayout is fixed width so stored instants compare correctly as
// text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteTime formats t for a TEXT column.
func SQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// SQLiteNullTime formats an optional instant; nil stays NULL.
func SQLiteNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: SQLiteTime(*t), Valid: true}
}

// ParseSQLiteTime parses a TEXT column written by SQLiteTime. Plain RFC3339
// is accepted for rows written by hand.
func ParseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseSQLiteNullTime parses a nullable TEXT column.
func ParseSQLiteNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := ParseSQLiteTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
