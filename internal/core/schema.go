package core

// TableSchema represents the discovered structure of a single database table.
type TableSchema struct {
	// Name is the name of the table.
	Name string

	// Columns contains the non-key column names in discovery order.
	Columns []string

	// PrimaryKey is the name of the single-column primary key.
	// Empty when no primary key was discovered; id-based operations
	// on such a table fail.
	PrimaryKey string
}

// HasColumn reports whether the table has a non-key column with the given name.
func (s *TableSchema) HasColumn(name string) bool {
	for _, col := range s.Columns {
		if col == name {
			return true
		}
	}
	return false
}
