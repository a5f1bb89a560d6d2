package schema

import (
	"strconv"
	"time"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

// Value variants.
const (
	ValueNull ValueKind = iota
	ValueInt
	ValueReal
	ValueBool
	ValueTime
	ValueText
)

// Value is the tagged union of logical values the gateway accepts and
// returns: integer, real, boolean, timestamp, text or null. The zero
// Value is null.
//
// Values are immutable; construct them with the package-level
// constructors and read them through the kind-specific accessors.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	b    bool
	t    time.Time
	s    string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: ValueInt, i: v} }

// Real returns a floating-point value.
func Real(v float64) Value { return Value{kind: ValueReal, f: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: ValueBool, b: v} }

// Time returns a timestamp value.
func Time(v time.Time) Value { return Value{kind: ValueTime, t: v} }

// Text returns a text value.
func Text(v string) Value { return Value{kind: ValueText, s: v} }

// Kind reports which variant this value holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// Int returns the integer payload. Zero for other variants.
func (v Value) Int() int64 { return v.i }

// Real returns the floating-point payload. Zero for other variants.
func (v Value) Real() float64 { return v.f }

// Bool returns the boolean payload. False for other variants.
func (v Value) Bool() bool { return v.b }

// Time returns the timestamp payload. Zero time for other variants.
func (v Value) Time() time.Time { return v.t }

// Text returns the text payload. Empty for other variants.
func (v Value) Text() string { return v.s }

// StorageString is the canonical string form written to storage (before
// any encoding is applied): integers in decimal, reals in shortest 'g'
// form, booleans as "1"/"0", timestamps in RFC 3339, text verbatim.
//
// Booleans deliberately use "1"/"0" so the truthiness rule applied on
// read maps false back to false.
func (v Value) StorageString() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueBool:
		if v.b {
			return "1"
		}
		return "0"
	case ValueTime:
		return v.t.Format(time.RFC3339)
	case ValueText:
		return v.s
	default: // ValueNull
		return ""
	}
}

// String implements fmt.Stringer for logs and pretty-printing.
func (v Value) String() string {
	if v.kind == ValueNull {
		return "NULL"
	}
	return v.StorageString()
}

// Equal reports whether two values hold the same variant and payload.
// Timestamps compare with time.Time.Equal, so representations of the
// same instant in different zones are equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueInt:
		return v.i == other.i
	case ValueReal:
		return v.f == other.f
	case ValueBool:
		return v.b == other.b
	case ValueTime:
		return v.t.Equal(other.t)
	case ValueText:
		return v.s == other.s
	default: // ValueNull
		return true
	}
}
