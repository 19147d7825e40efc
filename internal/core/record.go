package core

// Record is a flat field-to-value mapping supplied by the caller.
// Fields that do not match a discovered column are silently dropped
// by the mapper; no type coercion is performed beyond what the SQL
// driver's parameter binding does.
type Record map[string]interface{}

// PreparedStatement is a parameterized statement produced by the mapper
// and consumed by an Executor. SQL uses named placeholders (":name");
// Params holds the values bound to them. Timestamp-function assignments
// are literal SQL text and never appear in Params.
type PreparedStatement struct {
	SQL    string
	Params map[string]interface{}
}
