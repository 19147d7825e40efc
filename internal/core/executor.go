package core

import (
	"context"
)

// Executor defines the interface for executing parameterized SQL statements.
// Statements use named placeholders (":name"); implementations are responsible
// for translating them into whatever form the underlying driver expects.
// Driver-level failures (connectivity, constraint violations, syntax errors)
// propagate unmodified to the caller.
type Executor interface {
	// Query executes a statement that returns a result set.
	Query(ctx context.Context, sqlText string, params map[string]interface{}) (Rows, error)

	// Execute executes a statement without a result set and returns its result.
	Execute(ctx context.Context, sqlText string, params map[string]interface{}) (Result, error)

	// Ping verifies the underlying connection is alive.
	Ping(ctx context.Context) error

	// Close closes the underlying connection and releases resources.
	Close() error
}

// Rows is an ordered result set cursor.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Result reports the outcome of a statement without a result set.
type Result interface {
	// LastInsertId is valid immediately after a successful insert-style Execute.
	LastInsertId() (int64, error)

	// RowsAffected returns the number of rows changed by the statement.
	RowsAffected() (int64, error)
}
