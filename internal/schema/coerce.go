package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are the ISO-8601 shapes accepted for timestamp
// columns, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CoerceOnRead converts a decoded storage string into the logical value
// implied by the column's kind. Text and opaque columns pass through
// unchanged; NULLs never reach this function (the gateway short-circuits
// them to the null value).
//
// Parameters:
//   - stored: The decoded storage string
//   - kind: The column's semantic kind
//
// Returns:
//   - Value: The coerced logical value
//   - error: ErrCoerce if the string does not parse as the kind demands
func CoerceOnRead(stored string, kind Kind) (Value, error) {
	switch kind {
	case KindInteger:
		n, err := strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return Null(), fmt.Errorf("%w: %q as integer", ErrCoerce, stored)
		}
		return Int(n), nil

	case KindReal:
		f, err := strconv.ParseFloat(stored, 64)
		if err != nil {
			return Null(), fmt.Errorf("%w: %q as real", ErrCoerce, stored)
		}
		return Real(f), nil

	case KindBoolean:
		return Bool(truthy(stored)), nil

	case KindTimestamp:
		t, err := ParseTimestamp(stored)
		if err != nil {
			return Null(), err
		}
		return Time(t), nil

	default: // KindText, KindOpaque
		return Text(stored), nil
	}
}

// ValidateOnWrite reports whether a logical value may be written to a
// column of the given kind. Validation never raises; the gateway turns a
// false result into a negative-status response.
//
// Rules:
//   - Null passes everywhere (encoding is never applied to null)
//   - Opaque columns accept anything
//   - Timestamp columns accept integers and reals (Unix seconds), time
//     values, and text that is numeric or parses as ISO-8601
//   - Every other kind requires the exactly matching value variant;
//     mismatches fail, values are never silently coerced or truncated
func ValidateOnWrite(v Value, kind Kind) bool {
	if v.IsNull() || kind == KindOpaque {
		return true
	}

	switch kind {
	case KindTimestamp:
		switch v.Kind() {
		case ValueInt, ValueReal, ValueTime:
			return true
		case ValueText:
			_, err := ParseTimestamp(v.Text())
			return err == nil
		default:
			return false
		}
	case KindInteger:
		return v.Kind() == ValueInt
	case KindReal:
		return v.Kind() == ValueReal
	case KindBoolean:
		return v.Kind() == ValueBool
	default: // KindText
		return v.Kind() == ValueText
	}
}

// ParseTimestamp interprets a string as a point in time: purely numeric
// strings are Unix timestamps (fractional seconds allowed), anything
// else must match an ISO-8601 layout.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrCoerce)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q as timestamp", ErrCoerce, s)
}

// truthy implements the read-side boolean rule: numeric strings are true
// when nonzero, the literals "true"/"false" mean what they say, and
// everything else is true when non-empty.
func truthy(s string) bool {
	if s == "" {
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return true
}
