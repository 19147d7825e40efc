package mapper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rzpsarthak13/relmap/internal/catalog"
	"github.com/rzpsarthak13/relmap/internal/core"
)

// Field is one (column, value) pair retained after validating a record
// against a discovered table schema.
type Field struct {
	Column string
	Value  interface{}
}

// FilterKnownFields returns the record fields that name real non-key
// columns of the table, in the schema's column order. Unknown fields are
// silently dropped: callers may pass a full domain object and only the
// matching columns are written. This filtering is the injection-safety
// backbone — no caller-controlled string ever reaches SQL text unless the
// catalog already validated it as a real column.
func FilterKnownFields(schema *core.TableSchema, record core.Record) []Field {
	fields := make([]Field, 0, len(record))
	for _, col := range schema.Columns {
		if value, exists := record[col]; exists {
			fields = append(fields, Field{Column: col, Value: value})
		}
	}
	return fields
}

// Mapper synthesizes parameterized INSERT and UPDATE statements from
// arbitrary records and the discovered schema, and dispatches them to
// the executor. It never executes SQL it did not build itself.
type Mapper struct {
	catalog *catalog.Catalog
	config  core.DialectConfig
	exec    core.Executor
}

// New creates a new record mapper.
func New(cat *catalog.Catalog, config core.DialectConfig, exec core.Executor) *Mapper {
	return &Mapper{
		catalog: cat,
		config:  config,
		exec:    exec,
	}
}

// Save inserts or updates a single row. With a nil id it builds an INSERT
// and returns the executor-assigned last-insert id. With a non-nil id it
// builds an UPDATE against the table's primary key and returns the supplied
// id when at least one row was affected; a zero-row update returns
// (nil, nil) — an explicit non-success, not an error.
func (m *Mapper) Save(ctx context.Context, tableName string, record core.Record, id interface{}) (interface{}, error) {
	schema, err := m.catalog.Lookup(tableName)
	if err != nil {
		return nil, err
	}

	fields := FilterKnownFields(schema, record)
	// Configured timestamp columns are never caller-writable; the mapper
	// owns them and binds them to the dialect's timestamp function instead.
	fields = m.stripTimestampFields(schema, fields)
	if len(fields) == 0 {
		return nil, &core.QueryError{Reason: fmt.Sprintf("no matching columns for table %q", tableName)}
	}

	if id != nil {
		return m.update(ctx, schema, fields, id)
	}
	return m.insert(ctx, schema, fields)
}

// Statement builds the statement Save would execute, without executing it.
func (m *Mapper) Statement(tableName string, record core.Record, id interface{}) (core.PreparedStatement, error) {
	schema, err := m.catalog.Lookup(tableName)
	if err != nil {
		return core.PreparedStatement{}, err
	}

	fields := m.stripTimestampFields(schema, FilterKnownFields(schema, record))
	if len(fields) == 0 {
		return core.PreparedStatement{}, &core.QueryError{Reason: fmt.Sprintf("no matching columns for table %q", tableName)}
	}

	if id != nil {
		if schema.PrimaryKey == "" {
			return core.PreparedStatement{}, &core.MissingPrimaryKeyError{Table: schema.Name}
		}
		return m.buildUpdate(schema, fields, id), nil
	}
	return m.buildInsert(schema, fields), nil
}

func (m *Mapper) insert(ctx context.Context, schema *core.TableSchema, fields []Field) (interface{}, error) {
	stmt := m.buildInsert(schema, fields)

	log.Printf("[MAPPER] INSERT %s: %s", schema.Name, stmt.SQL)
	result, err := m.exec.Execute(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return nil, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read last insert id: %w", err)
	}
	return lastID, nil
}

func (m *Mapper) update(ctx context.Context, schema *core.TableSchema, fields []Field, id interface{}) (interface{}, error) {
	if schema.PrimaryKey == "" {
		return nil, &core.MissingPrimaryKeyError{Table: schema.Name}
	}

	stmt := m.buildUpdate(schema, fields, id)

	log.Printf("[MAPPER] UPDATE %s: %s", schema.Name, stmt.SQL)
	result, err := m.exec.Execute(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return id, nil
}

// buildInsert constructs INSERT INTO <table> (<columns>) VALUES (<tokens>).
// Configured created/updated columns that exist on the table are appended
// with the dialect's current-timestamp expression as literal SQL.
func (m *Mapper) buildInsert(schema *core.TableSchema, fields []Field) core.PreparedStatement {
	columns := make([]string, 0, len(fields)+2)
	tokens := make([]string, 0, len(fields)+2)
	params := make(map[string]interface{}, len(fields))

	for _, f := range fields {
		columns = append(columns, f.Column)
		tokens = append(tokens, ":"+f.Column)
		params[f.Column] = f.Value
	}

	now := m.config.Kind.CurrentTimestamp()
	if col := m.config.CreatedColumn; col != "" && schema.HasColumn(col) {
		columns = append(columns, col)
		tokens = append(tokens, now)
	}
	if col := m.config.UpdatedColumn; col != "" && schema.HasColumn(col) {
		columns = append(columns, col)
		tokens = append(tokens, now)
	}

	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.Name,
		strings.Join(columns, ", "),
		strings.Join(tokens, ", "),
	)

	return core.PreparedStatement{SQL: sqlText, Params: params}
}

// buildUpdate constructs UPDATE <table> SET <assignments> WHERE <pk> = :<pk>.
// A configured updated column becomes a literal timestamp assignment.
func (m *Mapper) buildUpdate(schema *core.TableSchema, fields []Field, id interface{}) core.PreparedStatement {
	assignments := make([]string, 0, len(fields)+1)
	params := make(map[string]interface{}, len(fields)+1)

	for _, f := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = :%s", f.Column, f.Column))
		params[f.Column] = f.Value
	}

	if col := m.config.UpdatedColumn; col != "" && schema.HasColumn(col) {
		assignments = append(assignments, fmt.Sprintf("%s = %s", col, m.config.Kind.CurrentTimestamp()))
	}

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE %s = :%s",
		schema.Name,
		strings.Join(assignments, ", "),
		schema.PrimaryKey,
		schema.PrimaryKey,
	)
	params[schema.PrimaryKey] = id

	return core.PreparedStatement{SQL: sqlText, Params: params}
}

// stripTimestampFields drops configured timestamp columns from the
// candidate set so callers cannot forge created/updated values through
// the record.
func (m *Mapper) stripTimestampFields(schema *core.TableSchema, fields []Field) []Field {
	created, updated := m.config.CreatedColumn, m.config.UpdatedColumn
	if created == "" && updated == "" {
		return fields
	}

	kept := fields[:0]
	for _, f := range fields {
		if (created != "" && f.Column == created && schema.HasColumn(created)) ||
			(updated != "" && f.Column == updated && schema.HasColumn(updated)) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
