package core

import (
	"strings"
)

// Dialect identifies a supported SQL dialect.
type Dialect string

const (
	// DialectMySQL targets MySQL via INFORMATION_SCHEMA introspection.
	DialectMySQL Dialect = "mysql"

	// DialectSQLite targets SQLite via sqlite_master and PRAGMA table_info.
	DialectSQLite Dialect = "sqlite"
)

// ParseDialect parses a dialect identifier, case-insensitively.
// There is no default dialect; anything other than mysql or sqlite
// is a configuration error.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return DialectMySQL, nil
	case "sqlite":
		return DialectSQLite, nil
	default:
		return "", &ConfigurationError{Reason: "unsupported dialect: " + s}
	}
}

// CurrentTimestamp returns the dialect's current-timestamp SQL expression.
// The expression is emitted as literal SQL, never as a bound parameter.
func (d Dialect) CurrentTimestamp() string {
	if d == DialectSQLite {
		return "DATETIME()"
	}
	return "NOW()"
}

// DialectConfig carries the dialect and the optional timestamp columns
// injected by the mapper. An empty column name disables that timestamp.
// Process-wide, created once at construction, read-only afterwards.
type DialectConfig struct {
	Kind          Dialect
	CreatedColumn string
	UpdatedColumn string
}
