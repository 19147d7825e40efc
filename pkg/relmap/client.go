package relmap

import (
	"context"
	"fmt"
	"log"

	"github.com/rzpsarthak13/relmap/internal/catalog"
	"github.com/rzpsarthak13/relmap/internal/core"
	"github.com/rzpsarthak13/relmap/internal/database"
	"github.com/rzpsarthak13/relmap/internal/mapper"
	"github.com/rzpsarthak13/relmap/internal/metrics"
	"github.com/rzpsarthak13/relmap/internal/query"
)

// Record is an arbitrary row representation: column name to value.
// Fields that do not name a column of the target table are ignored by Save.
type Record = map[string]interface{}

// TableSchema describes a discovered table: its non-key columns in
// definition order and its single-column primary key ("" when the table
// has none).
type TableSchema struct {
	Name       string
	Columns    []string
	PrimaryKey string
}

// Client is the main interface for interacting with the mapped database.
// The schema is discovered once when the client is created; tables added
// afterwards are invisible until a new client is built.
//
// Typical usage:
//
//	client, _ := relmap.NewClient(ctx, config)
//	defer client.Close()
//
//	id, _ := client.Save(ctx, "users", relmap.Record{"name": "ada"})
//	user, _ := client.GetOneByID(ctx, "users", id)
type Client interface {
	// Save inserts or updates a single row. With no id it inserts and
	// returns the database-assigned id; with an id it updates the row with
	// that primary key and returns the id back, or (nil, nil) when no row
	// matched. Record fields that are not columns of the table are ignored.
	Save(ctx context.Context, tableName string, record Record, id ...interface{}) (interface{}, error)

	// GetOneByID reads one row by primary key. Returns (nil, nil) when
	// the row does not exist.
	GetOneByID(ctx context.Context, tableName string, id interface{}) (Record, error)

	// DeleteOneByID deletes one row by primary key and reports whether a
	// row was removed.
	DeleteOneByID(ctx context.Context, tableName string, id interface{}) (bool, error)

	// ExistsByID reports whether a row with the given primary key exists.
	ExistsByID(ctx context.Context, tableName string, id interface{}) (bool, error)

	// Select runs an arbitrary query with named (":name") parameters and
	// returns all rows.
	Select(ctx context.Context, sqlText string, params map[string]interface{}) ([]Record, error)

	// SelectOne runs a query expected to return at most one row.
	// Zero rows yields (nil, nil); more than one row is an error.
	SelectOne(ctx context.Context, sqlText string, params map[string]interface{}) (Record, error)

	// SelectOneField runs a single-column query and returns the column's
	// values across all rows, in row order.
	SelectOneField(ctx context.Context, sqlText string, params map[string]interface{}) ([]interface{}, error)

	// SelectOneValue runs a query expected to return a single scalar.
	// Zero rows yields (nil, nil).
	SelectOneValue(ctx context.Context, sqlText string, params map[string]interface{}) (interface{}, error)

	// Table returns a handle bound to a single table.
	Table(tableName string) (Table, error)

	// Tables returns the names of the discovered tables.
	Tables() []string

	// Schema returns the discovered schema for a table.
	Schema(tableName string) (TableSchema, error)

	// StatementCount returns the number of statements executed since the
	// client was created, schema discovery included.
	StatementCount() int64

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error

	// Close closes all connections and releases resources.
	Close() error
}

// clientImpl wires the executor, catalog, mapper and query facade together.
type clientImpl struct {
	exec    core.Executor
	catalog *catalog.Catalog
	mapper  *mapper.Mapper
	query   *query.Facade
	counter *metrics.Counter
	audit   *metrics.RedisAuditSink
}

// NewClient creates a new client from the given configuration: it validates
// the config, connects to the database, and discovers the schema. Returns
// an error if any of these fail.
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		return nil, &core.ConfigurationError{Reason: "config cannot be nil"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dialectConfig := config.DialectConfig()

	exec, err := newExecutor(ctx, config, dialectConfig.Kind)
	if err != nil {
		return nil, err
	}

	counter := metrics.NewCounter()
	recorders := []metrics.Recorder{counter}

	var audit *metrics.RedisAuditSink
	if config.Audit.Enabled {
		audit, err = metrics.NewRedisAuditSink(
			config.Audit.Endpoint,
			config.Audit.Password,
			config.Audit.DB,
			config.Audit.Key,
			config.Audit.MaxEntries,
		)
		if err != nil {
			exec.Close()
			return nil, err
		}
		recorders = append(recorders, audit)
	}

	instrumented := metrics.Instrument(exec, recorders...)

	cat, err := catalog.Build(ctx, dialectConfig.Kind, instrumented)
	if err != nil {
		if audit != nil {
			audit.Close()
		}
		exec.Close()
		return nil, err
	}

	log.Printf("[CLIENT] Connected (%s), %d tables", dialectConfig.Kind, len(cat.Tables()))

	return &clientImpl{
		exec:    instrumented,
		catalog: cat,
		mapper:  mapper.New(cat, dialectConfig, instrumented),
		query:   query.New(cat, instrumented),
		counter: counter,
		audit:   audit,
	}, nil
}

func newExecutor(ctx context.Context, config *Config, dialect core.Dialect) (core.Executor, error) {
	switch dialect {
	case core.DialectMySQL:
		return database.NewMySQLExecutor(
			config.Database.Host,
			config.Database.Port,
			config.Database.Database,
			config.Database.Username,
			config.Database.Password,
			config.Database.MaxOpenConns,
			config.Database.MaxIdleConns,
			config.Database.ConnMaxLifetime,
			config.Database.ConnMaxIdleTime,
			config.Database.ConnectionTimeout,
		)
	case core.DialectSQLite:
		return database.NewSQLiteExecutor(ctx, config.Database.Path)
	default:
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("unsupported dialect: %s", dialect)}
	}
}

// Save inserts or updates a single row.
func (c *clientImpl) Save(ctx context.Context, tableName string, record Record, id ...interface{}) (interface{}, error) {
	switch len(id) {
	case 0:
		return c.mapper.Save(ctx, tableName, record, nil)
	case 1:
		return c.mapper.Save(ctx, tableName, record, id[0])
	default:
		return nil, &core.QueryError{Reason: fmt.Sprintf("expected at most one id, got %d", len(id))}
	}
}

// GetOneByID reads one row by primary key.
func (c *clientImpl) GetOneByID(ctx context.Context, tableName string, id interface{}) (Record, error) {
	record, err := c.query.GetOneByID(ctx, tableName, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return Record(record), nil
}

// DeleteOneByID deletes one row by primary key.
func (c *clientImpl) DeleteOneByID(ctx context.Context, tableName string, id interface{}) (bool, error) {
	return c.query.DeleteOneByID(ctx, tableName, id)
}

// ExistsByID reports whether a row with the given primary key exists.
func (c *clientImpl) ExistsByID(ctx context.Context, tableName string, id interface{}) (bool, error) {
	return c.query.ExistsByID(ctx, tableName, id)
}

// Select runs an arbitrary query and returns all rows.
func (c *clientImpl) Select(ctx context.Context, sqlText string, params map[string]interface{}) ([]Record, error) {
	records, err := c.query.Select(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record(r)
	}
	return out, nil
}

// SelectOne runs a query expected to return at most one row.
func (c *clientImpl) SelectOne(ctx context.Context, sqlText string, params map[string]interface{}) (Record, error) {
	record, err := c.query.SelectOne(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return Record(record), nil
}

// SelectOneField runs a single-column query.
func (c *clientImpl) SelectOneField(ctx context.Context, sqlText string, params map[string]interface{}) ([]interface{}, error) {
	return c.query.SelectOneField(ctx, sqlText, params)
}

// SelectOneValue runs a query expected to return a single scalar.
func (c *clientImpl) SelectOneValue(ctx context.Context, sqlText string, params map[string]interface{}) (interface{}, error) {
	return c.query.SelectOneValue(ctx, sqlText, params)
}

// Tables returns the names of the discovered tables.
func (c *clientImpl) Tables() []string {
	return c.catalog.Tables()
}

// Schema returns the discovered schema for a table.
func (c *clientImpl) Schema(tableName string) (TableSchema, error) {
	schema, err := c.catalog.Lookup(tableName)
	if err != nil {
		return TableSchema{}, err
	}

	columns := make([]string, len(schema.Columns))
	copy(columns, schema.Columns)
	return TableSchema{
		Name:       schema.Name,
		Columns:    columns,
		PrimaryKey: schema.PrimaryKey,
	}, nil
}

// StatementCount returns the number of statements executed so far.
func (c *clientImpl) StatementCount() int64 {
	return c.counter.Count()
}

// Ping verifies the database connection is alive.
func (c *clientImpl) Ping(ctx context.Context) error {
	return c.exec.Ping(ctx)
}

// Close closes all connections and releases resources.
func (c *clientImpl) Close() error {
	if c.audit != nil {
		if err := c.audit.Close(); err != nil {
			log.Printf("[CLIENT] Warning: error closing audit sink: %v", err)
		}
	}
	return c.exec.Close()
}
