package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/rzpsarthak13/relmap/internal/core"
)

const driverSqlite = "sqlite"

// SQLiteExecutor implements the core.Executor interface using SQLite
// (cgo-free modernc driver).
type SQLiteExecutor struct {
	db     *sql.DB
	closed bool
}

// NewSQLiteExecutor creates a new SQLite executor for the database file
// at the given path. Use ":memory:" for an in-memory database.
func NewSQLiteExecutor(ctx context.Context, path string) (*SQLiteExecutor, error) {
	db, err := sql.Open(driverSqlite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteExecutor{
		db:     db,
		closed: false,
	}, nil
}

// Query executes a SELECT-style statement and returns rows.
func (s *SQLiteExecutor) Query(ctx context.Context, sqlText string, params map[string]interface{}) (core.Rows, error) {
	if s.closed {
		return nil, fmt.Errorf("executor is closed")
	}

	expanded, args, err := ExpandNamed(sqlText, params)
	if err != nil {
		return nil, err
	}

	log.Printf("[SQLITE] Executing query: %s with args: %v", expanded, args)
	rows, err := s.db.QueryContext(ctx, expanded, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &sqlRows{rows: rows}, nil
}

// Execute executes a non-query statement and returns its result.
func (s *SQLiteExecutor) Execute(ctx context.Context, sqlText string, params map[string]interface{}) (core.Result, error) {
	if s.closed {
		return nil, fmt.Errorf("executor is closed")
	}

	expanded, args, err := ExpandNamed(sqlText, params)
	if err != nil {
		return nil, err
	}

	log.Printf("[SQLITE] Executing statement: %s with args: %v", expanded, args)
	result, err := s.db.ExecContext(ctx, expanded, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return result, nil
}

// Ping verifies the connection to the database.
func (s *SQLiteExecutor) Ping(ctx context.Context) error {
	if s.closed {
		return fmt.Errorf("executor is closed")
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteExecutor) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
