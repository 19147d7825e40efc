package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/rzpsarthak13/relmap/internal/core"
)

// fakeRows replays canned rows through the core.Rows interface.
type fakeRows struct {
	columns []string
	values  [][]interface{}
	pos     int
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.values)
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.values[r.pos-1]
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = row[i].(string)
		case *int:
			*d = row[i].(int)
		case *sql.NullString:
			if row[i] == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: row[i].(string), Valid: true}
			}
		case *interface{}:
			*d = row[i]
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Close() error { return nil }
func (r *fakeRows) Err() error   { return nil }

// fakeExecutor dispatches queries to a caller-supplied function and
// records every statement it sees.
type fakeExecutor struct {
	queryFn  func(sqlText string) (core.Rows, error)
	executed []string
}

func (e *fakeExecutor) Query(ctx context.Context, sqlText string, params map[string]interface{}) (core.Rows, error) {
	e.executed = append(e.executed, sqlText)
	return e.queryFn(sqlText)
}

func (e *fakeExecutor) Execute(ctx context.Context, sqlText string, params map[string]interface{}) (core.Result, error) {
	return nil, fmt.Errorf("unexpected Execute: %s", sqlText)
}

func (e *fakeExecutor) Ping(ctx context.Context) error { return nil }
func (e *fakeExecutor) Close() error                   { return nil }

func TestBuildMySQL(t *testing.T) {
	exec := &fakeExecutor{
		queryFn: func(sqlText string) (core.Rows, error) {
			return &fakeRows{
				columns: []string{"TABLE_NAME", "COLUMN_NAME", "COLUMN_KEY"},
				values: [][]interface{}{
					{"logs", "message", ""},
					{"orders", "id", "PRI"},
					{"orders", "region_id", "PRI"},
					{"orders", "amount", ""},
					{"users", "id", "PRI"},
					{"users", "name", ""},
					{"users", "email", ""},
				},
			}, nil
		},
	}

	cat, err := Build(context.Background(), core.DialectMySQL, exec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := cat.Tables(); !reflect.DeepEqual(got, []string{"logs", "orders", "users"}) {
		t.Errorf("Tables() = %v", got)
	}

	users, err := cat.Lookup("users")
	if err != nil {
		t.Fatalf("Lookup(users) failed: %v", err)
	}
	if users.PrimaryKey != "id" {
		t.Errorf("users primary key = %q, want id", users.PrimaryKey)
	}
	if !reflect.DeepEqual(users.Columns, []string{"name", "email"}) {
		t.Errorf("users columns = %v, want [name email]", users.Columns)
	}

	// Composite key: the first PRI column is the key, the rest stay
	// ordinary columns.
	orders, _ := cat.Lookup("orders")
	if orders.PrimaryKey != "id" {
		t.Errorf("orders primary key = %q, want id", orders.PrimaryKey)
	}
	if !reflect.DeepEqual(orders.Columns, []string{"region_id", "amount"}) {
		t.Errorf("orders columns = %v, want [region_id amount]", orders.Columns)
	}

	// A table without a key still gets an entry.
	logs, _ := cat.Lookup("logs")
	if logs.PrimaryKey != "" {
		t.Errorf("logs primary key = %q, want empty", logs.PrimaryKey)
	}
}

func TestBuildSQLite(t *testing.T) {
	exec := &fakeExecutor{
		queryFn: func(sqlText string) (core.Rows, error) {
			switch {
			case strings.Contains(sqlText, "sqlite_master"):
				return &fakeRows{
					columns: []string{"name"},
					values:  [][]interface{}{{"notes"}, {"users"}},
				}, nil
			case strings.Contains(sqlText, "table_info(users)"):
				return &fakeRows{
					columns: []string{"cid", "name", "type", "notnull", "dflt_value", "pk"},
					values: [][]interface{}{
						{0, "id", "INTEGER", 1, nil, 1},
						{1, "name", "TEXT", 0, nil, 0},
						{2, "email", "TEXT", 0, "''", 0},
					},
				}, nil
			case strings.Contains(sqlText, "table_info(notes)"):
				return &fakeRows{
					columns: []string{"cid", "name", "type", "notnull", "dflt_value", "pk"},
					values: [][]interface{}{
						{0, "body", "TEXT", 0, nil, 0},
					},
				}, nil
			default:
				return nil, fmt.Errorf("unexpected query: %s", sqlText)
			}
		},
	}

	cat, err := Build(context.Background(), core.DialectSQLite, exec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := cat.Tables(); !reflect.DeepEqual(got, []string{"notes", "users"}) {
		t.Errorf("Tables() = %v", got)
	}

	users, err := cat.Lookup("users")
	if err != nil {
		t.Fatalf("Lookup(users) failed: %v", err)
	}
	if users.PrimaryKey != "id" {
		t.Errorf("users primary key = %q, want id", users.PrimaryKey)
	}
	if !reflect.DeepEqual(users.Columns, []string{"name", "email"}) {
		t.Errorf("users columns = %v, want [name email]", users.Columns)
	}

	notes, _ := cat.Lookup("notes")
	if notes.PrimaryKey != "" {
		t.Errorf("notes primary key = %q, want empty", notes.PrimaryKey)
	}
}

func TestBuildUnsupportedDialect(t *testing.T) {
	exec := &fakeExecutor{queryFn: func(string) (core.Rows, error) {
		return &fakeRows{}, nil
	}}

	_, err := Build(context.Background(), core.Dialect("oracle"), exec)
	var configErr *core.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected *core.ConfigurationError, got %v", err)
	}
	if len(exec.executed) != 0 {
		t.Errorf("expected no statements, got %v", exec.executed)
	}
}

func TestLookupUnknownTable(t *testing.T) {
	exec := &fakeExecutor{
		queryFn: func(string) (core.Rows, error) {
			return &fakeRows{columns: []string{"TABLE_NAME", "COLUMN_NAME", "COLUMN_KEY"}}, nil
		},
	}

	cat, err := Build(context.Background(), core.DialectMySQL, exec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err = cat.Lookup("missing")
	var queryErr *core.QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("expected *core.QueryError, got %v", err)
	}
	if !strings.Contains(err.Error(), `"missing"`) {
		t.Errorf("error should name the table, got %q", err.Error())
	}
}
