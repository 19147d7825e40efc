package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/rzpsarthak13/relmap/internal/catalog"
	"github.com/rzpsarthak13/relmap/internal/core"
)

// Facade provides the generic read and id-based operations on top of the
// executor and the schema catalog. Each call is its own implicit,
// auto-committed unit of work; nothing is cached, every read re-queries.
type Facade struct {
	catalog *catalog.Catalog
	exec    core.Executor
}

// New creates a new query facade.
func New(cat *catalog.Catalog, exec core.Executor) *Facade {
	return &Facade{
		catalog: cat,
		exec:    exec,
	}
}

// Select executes a query and returns all rows as records.
func (f *Facade) Select(ctx context.Context, sqlText string, params map[string]interface{}) ([]core.Record, error) {
	rows, err := f.exec.Query(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

// SelectOne executes a query expected to return at most one row.
// Zero rows is an absent result (nil, nil), not a failure; more than one
// row is a result error.
func (f *Facade) SelectOne(ctx context.Context, sqlText string, params map[string]interface{}) (core.Record, error) {
	records, err := f.Select(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return records[0], nil
	default:
		return nil, &core.ResultError{Reason: fmt.Sprintf("expected at most one row, got %d", len(records))}
	}
}

// SelectOneField executes a query whose rows carry exactly one column and
// collapses them into a flat ordered slice of scalar values.
func (f *Facade) SelectOneField(ctx context.Context, sqlText string, params map[string]interface{}) ([]interface{}, error) {
	records, err := f.Select(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, 0, len(records))
	for _, record := range records {
		if len(record) != 1 {
			return nil, &core.QueryError{Reason: fmt.Sprintf("expected single-column rows, got %d columns", len(record))}
		}
		for _, value := range record {
			values = append(values, value)
		}
	}
	return values, nil
}

// SelectOneValue executes a query expected to return a single scalar:
// at most one row with exactly one field. Zero rows yields (nil, nil).
func (f *Facade) SelectOneValue(ctx context.Context, sqlText string, params map[string]interface{}) (interface{}, error) {
	record, err := f.SelectOne(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if len(record) != 1 {
		return nil, &core.ResultError{Reason: fmt.Sprintf("expected a single field, got %d", len(record))}
	}
	for _, value := range record {
		return value, nil
	}
	return nil, nil
}

// GetOneByID reads a single row by primary key. Returns (nil, nil) when
// no row matches.
func (f *Facade) GetOneByID(ctx context.Context, tableName string, id interface{}) (core.Record, error) {
	schema, err := f.keyedSchema(tableName)
	if err != nil {
		return nil, err
	}

	columns := append([]string{schema.PrimaryKey}, schema.Columns...)
	sqlText := fmt.Sprintf("SELECT %s FROM %s WHERE %s = :%s",
		strings.Join(columns, ", "),
		schema.Name,
		schema.PrimaryKey,
		schema.PrimaryKey,
	)

	return f.SelectOne(ctx, sqlText, map[string]interface{}{schema.PrimaryKey: id})
}

// DeleteOneByID deletes a single row by primary key and reports whether
// a row was actually removed.
func (f *Facade) DeleteOneByID(ctx context.Context, tableName string, id interface{}) (bool, error) {
	schema, err := f.keyedSchema(tableName)
	if err != nil {
		return false, err
	}

	sqlText := fmt.Sprintf("DELETE FROM %s WHERE %s = :%s",
		schema.Name, schema.PrimaryKey, schema.PrimaryKey)

	result, err := f.exec.Execute(ctx, sqlText, map[string]interface{}{schema.PrimaryKey: id})
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ExistsByID reports whether a row with the given primary key exists.
// Absence is an ordinary result, never an error.
func (f *Facade) ExistsByID(ctx context.Context, tableName string, id interface{}) (bool, error) {
	schema, err := f.keyedSchema(tableName)
	if err != nil {
		return false, err
	}

	sqlText := fmt.Sprintf("SELECT %s FROM %s WHERE %s = :%s LIMIT 1",
		schema.PrimaryKey, schema.Name, schema.PrimaryKey, schema.PrimaryKey)

	records, err := f.Select(ctx, sqlText, map[string]interface{}{schema.PrimaryKey: id})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// keyedSchema resolves a table that must have a discovered primary key.
func (f *Facade) keyedSchema(tableName string) (*core.TableSchema, error) {
	schema, err := f.catalog.Lookup(tableName)
	if err != nil {
		return nil, err
	}
	if schema.PrimaryKey == "" {
		return nil, &core.MissingPrimaryKeyError{Table: schema.Name}
	}
	return schema, nil
}
