package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rzpsarthak13/relmap/internal/core"
)

// MySQLExecutor implements the core.Executor interface using MySQL.
type MySQLExecutor struct {
	db     *sql.DB
	closed bool
}

// NewMySQLExecutor creates a new MySQL executor implementation.
func NewMySQLExecutor(host string, port int, database, username, password string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime, connectionTimeout time.Duration) (*MySQLExecutor, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%s",
		username, password, host, port, database, connectionTimeout)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLExecutor{
		db:     db,
		closed: false,
	}, nil
}

// Query executes a SELECT-style statement and returns rows.
func (m *MySQLExecutor) Query(ctx context.Context, sqlText string, params map[string]interface{}) (core.Rows, error) {
	if m.closed {
		return nil, fmt.Errorf("executor is closed")
	}

	expanded, args, err := ExpandNamed(sqlText, params)
	if err != nil {
		return nil, err
	}

	log.Printf("[MYSQL] Executing query: %s with args: %v", expanded, args)
	rows, err := m.db.QueryContext(ctx, expanded, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &sqlRows{rows: rows}, nil
}

// Execute executes a non-query statement and returns its result.
func (m *MySQLExecutor) Execute(ctx context.Context, sqlText string, params map[string]interface{}) (core.Result, error) {
	if m.closed {
		return nil, fmt.Errorf("executor is closed")
	}

	expanded, args, err := ExpandNamed(sqlText, params)
	if err != nil {
		return nil, err
	}

	log.Printf("[MYSQL] Executing statement: %s with args: %v", expanded, args)
	result, err := m.db.ExecContext(ctx, expanded, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return result, nil
}

// Ping verifies the connection to the database.
func (m *MySQLExecutor) Ping(ctx context.Context) error {
	if m.closed {
		return fmt.Errorf("executor is closed")
	}
	return m.db.PingContext(ctx)
}

// Close closes the database connection.
func (m *MySQLExecutor) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}
