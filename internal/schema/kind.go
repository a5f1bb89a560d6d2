package schema

import "strings"

// Kind is the semantic category a column's declared type maps to.
type Kind int

// Column kinds.
const (
	// KindOpaque is any unrecognised or absent declared type (including
	// BLOB). Opaque columns get no coercion and no write validation.
	KindOpaque Kind = iota
	KindInteger
	KindReal
	KindBoolean
	KindTimestamp
	KindText
)

// String implements fmt.Stringer for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindText:
		return "text"
	default:
		return "opaque"
	}
}

// Declared-type lexical sets. These mirror SQLite's type-affinity names;
// membership is exact (after upcasing), not prefix-based.
var (
	integerTypes   = []string{"INT", "INTEGER", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT", "UNSIGNED BIG INT"}
	realTypes      = []string{"REAL", "DOUBLE", "DOUBLE PRECISION", "FLOAT"}
	booleanTypes   = []string{"BOOLEAN", "BOOL"}
	timestampTypes = []string{"DATE", "DATETIME", "TIME"}
	textTypes      = []string{"TEXT"}
)

// kindByType is the classification lookup, built once at init.
var kindByType = func() map[string]Kind {
	m := make(map[string]Kind)
	for _, t := range integerTypes {
		m[t] = KindInteger
	}
	for _, t := range realTypes {
		m[t] = KindReal
	}
	for _, t := range booleanTypes {
		m[t] = KindBoolean
	}
	for _, t := range timestampTypes {
		m[t] = KindTimestamp
	}
	for _, t := range textTypes {
		m[t] = KindText
	}
	return m
}()

// Classify maps a declared column type to its semantic kind.
// Classification is case-insensitive; unknown or absent types are opaque.
func Classify(declared string) Kind {
	return kindByType[strings.ToUpper(strings.TrimSpace(declared))]
}
