package relmap

import (
	"github.com/rzpsarthak13/relmap/internal/core"
)

// The client reports failures through a small set of typed errors.
// Match them with errors.As:
//
//	var missingPK *relmap.MissingPrimaryKeyError
//	if errors.As(err, &missingPK) { ... }
type (
	// ConfigurationError reports invalid or incomplete configuration,
	// detected before any statement runs.
	ConfigurationError = core.ConfigurationError

	// QueryError reports a request the discovered schema cannot satisfy:
	// an unknown table, or a record with no matching columns.
	QueryError = core.QueryError

	// MissingPrimaryKeyError reports an id-based operation against a
	// table with no discovered single-column primary key.
	MissingPrimaryKeyError = core.MissingPrimaryKeyError

	// ResultError reports a result set that violates the operation's
	// cardinality contract, such as multiple rows from SelectOne.
	ResultError = core.ResultError
)
