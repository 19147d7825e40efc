package core

import (
	"fmt"
)

// ConfigurationError indicates invalid construction-time configuration,
// such as an unsupported dialect or a partial timestamp configuration.
// Fatal; surfaced at construction, never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// QueryError indicates a per-operation validation failure the caller can
// recover from: an unknown table, a record with no matching columns, or
// a result row with an unexpected shape.
type QueryError struct {
	Reason string
}

func (e *QueryError) Error() string {
	return "query error: " + e.Reason
}

// MissingPrimaryKeyError indicates an id-based operation targeted a table
// with no discovered primary key.
type MissingPrimaryKeyError struct {
	Table string
}

func (e *MissingPrimaryKeyError) Error() string {
	return fmt.Sprintf("table %q has no primary key", e.Table)
}

// ResultError indicates a result set did not match the shape the operation
// expects, e.g. more than one row for a single-row read.
type ResultError struct {
	Reason string
}

func (e *ResultError) Error() string {
	return "result error: " + e.Reason
}
