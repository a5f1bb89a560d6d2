package record

import "errors"

// Domain-specific errors for store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTableNotFound is returned by Add and Update when the target
	// table does not exist. Read-side operations treat table absence as
	// a negative result instead.
	ErrTableNotFound = errors.New("record: table not found")

	// ErrEmptyUpdate is returned when Update is called with no values to
	// set. This is a caller contract violation, not a transient condition.
	ErrEmptyUpdate = errors.New("record: update requires at least one value")
)
