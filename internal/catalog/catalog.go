package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/rzpsarthak13/relmap/internal/core"
)

// Catalog maps table names to their discovered schemas.
// It is built exactly once at startup from a dialect-specific metadata
// query and is immutable afterwards, so it is safe for concurrent reads.
// Schema changes in the database require a process restart to pick up.
type Catalog struct {
	dialect core.Dialect
	tables  map[string]*core.TableSchema
	names   []string
}

// Build discovers every user table's non-key columns and single-column
// primary key through the given executor. MySQL uses one
// INFORMATION_SCHEMA query; SQLite uses one table-listing query plus one
// PRAGMA query per discovered table.
func Build(ctx context.Context, dialect core.Dialect, exec core.Executor) (*Catalog, error) {
	c := &Catalog{
		dialect: dialect,
		tables:  make(map[string]*core.TableSchema),
	}

	var err error
	switch dialect {
	case core.DialectMySQL:
		err = c.buildMySQL(ctx, exec)
	case core.DialectSQLite:
		err = c.buildSQLite(ctx, exec)
	default:
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("unsupported dialect: %s", dialect)}
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[CATALOG] Discovered %d tables (%s)", len(c.names), dialect)
	return c, nil
}

// Lookup returns the schema for a table. Unknown tables surface as a
// query error the caller of the specific operation can act on.
func (c *Catalog) Lookup(tableName string) (*core.TableSchema, error) {
	schema, exists := c.tables[tableName]
	if !exists {
		return nil, &core.QueryError{Reason: fmt.Sprintf("table %q does not exist", tableName)}
	}
	return schema, nil
}

// Tables returns the discovered table names in discovery order.
func (c *Catalog) Tables() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Dialect returns the dialect the catalog was built for.
func (c *Catalog) Dialect() core.Dialect {
	return c.dialect
}

// buildMySQL loads all columns of the current schema in a single query.
// COLUMN_KEY = 'PRI' marks the primary key; the explicit ORDER BY pins
// the column order so generated INSERT column lists are deterministic.
func (c *Catalog) buildMySQL(ctx context.Context, exec core.Executor) error {
	query := `
		SELECT TABLE_NAME, COLUMN_NAME, COLUMN_KEY
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		ORDER BY TABLE_NAME, ORDINAL_POSITION
	`

	rows, err := exec.Query(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, columnKey string
		if err := rows.Scan(&tableName, &columnName, &columnKey); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}

		schema := c.ensure(tableName)
		// Single-column key semantics: the first PRI column wins,
		// any further PRI columns are kept as ordinary columns.
		if columnKey == "PRI" && schema.PrimaryKey == "" {
			schema.PrimaryKey = columnName
		} else {
			schema.Columns = append(schema.Columns, columnName)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating columns: %w", err)
	}

	return nil
}

// buildSQLite enumerates tables from sqlite_master, then introspects each
// one with PRAGMA table_info. The pragma's pk flag marks the primary key.
func (c *Catalog) buildSQLite(ctx context.Context, exec core.Executor) error {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := exec.Query(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("failed to query tables: %w", err)
	}

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tableNames = append(tableNames, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating tables: %w", err)
	}
	rows.Close()

	for _, tableName := range tableNames {
		if err := c.introspectSQLiteTable(ctx, exec, tableName); err != nil {
			return fmt.Errorf("failed to introspect table %q: %w", tableName, err)
		}
	}

	return nil
}

func (c *Catalog) introspectSQLiteTable(ctx context.Context, exec core.Executor, tableName string) error {
	// Table name comes straight from sqlite_master, never from a caller.
	query := fmt.Sprintf("PRAGMA table_info(%s)", tableName)

	rows, err := exec.Query(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("failed to get table info: %w", err)
	}
	defer rows.Close()

	// A table whose pragma returns no rows still gets a catalog entry;
	// it just cannot be used for save/get/delete-by-id.
	schema := c.ensure(tableName)

	for rows.Next() {
		var (
			cid       int
			name      string
			dataType  string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}

		if pk == 1 && schema.PrimaryKey == "" {
			schema.PrimaryKey = name
		} else {
			schema.Columns = append(schema.Columns, name)
		}
	}

	return rows.Err()
}

// ensure returns the schema entry for a table, creating it on first use.
func (c *Catalog) ensure(tableName string) *core.TableSchema {
	if schema, exists := c.tables[tableName]; exists {
		return schema
	}
	schema := &core.TableSchema{Name: tableName}
	c.tables[tableName] = schema
	c.names = append(c.names, tableName)
	return schema
}
