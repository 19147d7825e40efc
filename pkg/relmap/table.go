package relmap

import (
	"context"
)

// Table is a client handle bound to a single table, for callers that work
// against one table repeatedly and do not want to pass its name on every
// call.
type Table interface {
	// Save inserts or updates a single row; see Client.Save.
	Save(ctx context.Context, record Record, id ...interface{}) (interface{}, error)

	// GetOneByID reads one row by primary key; (nil, nil) when absent.
	GetOneByID(ctx context.Context, id interface{}) (Record, error)

	// DeleteOneByID deletes one row by primary key and reports whether a
	// row was removed.
	DeleteOneByID(ctx context.Context, id interface{}) (bool, error)

	// ExistsByID reports whether a row with the given primary key exists.
	ExistsByID(ctx context.Context, id interface{}) (bool, error)

	// Schema returns the discovered schema of the bound table.
	Schema() TableSchema
}

// boundTable binds a client to one discovered table.
type boundTable struct {
	client *clientImpl
	schema TableSchema
}

// Table returns a handle bound to the given table. The table must exist
// in the discovered schema.
func (c *clientImpl) Table(tableName string) (Table, error) {
	schema, err := c.Schema(tableName)
	if err != nil {
		return nil, err
	}
	return &boundTable{client: c, schema: schema}, nil
}

func (t *boundTable) Save(ctx context.Context, record Record, id ...interface{}) (interface{}, error) {
	return t.client.Save(ctx, t.schema.Name, record, id...)
}

func (t *boundTable) GetOneByID(ctx context.Context, id interface{}) (Record, error) {
	return t.client.GetOneByID(ctx, t.schema.Name, id)
}

func (t *boundTable) DeleteOneByID(ctx context.Context, id interface{}) (bool, error) {
	return t.client.DeleteOneByID(ctx, t.schema.Name, id)
}

func (t *boundTable) ExistsByID(ctx context.Context, id interface{}) (bool, error) {
	return t.client.ExistsByID(ctx, t.schema.Name, id)
}

func (t *boundTable) Schema() TableSchema {
	return t.schema
}
