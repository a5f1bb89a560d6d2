package encoding

import "errors"

// Domain-specific errors for value encoding.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownMode is returned when an unrecognised encoding mode is configured.
	ErrUnknownMode = errors.New("encoding: unknown mode")

	// ErrSecretRequired is returned when a keyed mode is configured without a secret.
	ErrSecretRequired = errors.New("encoding: secure and sealed modes require a secret")

	// ErrEmptyInput is returned when a keyed codec is given an empty value.
	ErrEmptyInput = errors.New("encoding: empty input")

	// ErrDecode is returned when a stored value cannot be decoded.
	// This usually means the value was written under a different secret or
	// mode, or has been tampered with. It is distinct from a "no rows" result
	// so callers can tell a wrong secret apart from an empty match.
	ErrDecode = errors.New("encoding: cannot decode stored value")
)
