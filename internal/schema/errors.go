package schema

import "errors"

// Domain-specific errors for schema introspection and coercion.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidIdentifier is returned when a table or column name fails
	// the identifier check. Names are interpolated into SQL (values never
	// are), so only conservative identifiers are accepted.
	ErrInvalidIdentifier = errors.New("schema: invalid identifier")

	// ErrCoerce is returned when a decoded storage string cannot be
	// converted to the kind its column declares.
	ErrCoerce = errors.New("schema: cannot coerce stored value")
)
