package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nerrad567/veildb/internal/encoding"
	"github.com/nerrad567/veildb/internal/schema"
)

// buildPredicate renders an AND-conjoined equality filter over the
// encoded predicate values. It returns the clause body (no "WHERE") and
// the bound arguments; an empty predicate yields an empty clause, which
// callers treat as match-all.
//
// Column names are checked against the identifier rules before they are
// interpolated; values are always parameter-bound, never inlined.
func buildPredicate(pred Record, codec encoding.Codec) (string, []any, error) {
	if len(pred) == 0 {
		return "", nil, nil
	}

	// Map iteration order is random; sort for deterministic SQL.
	keys := sortedKeys(pred)

	parts := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		if !schema.ValidIdentifier(k) {
			return "", nil, fmt.Errorf("%w: %q", schema.ErrInvalidIdentifier, k)
		}

		arg, err := encodeValue(pred[k], codec)
		if err != nil {
			return "", nil, err
		}

		parts = append(parts, k+" = ?")
		args = append(args, arg)
	}

	return strings.Join(parts, " AND "), args, nil
}

// encodeValue transforms a logical value into its bound storage form.
// Null binds SQL NULL directly; the codec is never applied to it.
func encodeValue(v schema.Value, codec encoding.Codec) (any, error) {
	if v.IsNull() {
		return nil, nil
	}

	encoded, err := codec.Encode(v.StorageString())
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	return encoded, nil
}

// castColumnList renders a SELECT column list that forces every column
// through CAST(... AS TEXT). The driver converts values from DATE,
// DATETIME and TIME declared columns into time.Time at scan, which
// mangles stored (encoded) text before it can reach the codec; casting
// strips the declared type so the stored bytes arrive verbatim.
func castColumnList(cols []schema.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("CAST(%s AS TEXT) AS %s", c.Name, c.Name)
	}
	return strings.Join(parts, ", ")
}

// sortedKeys returns the record's column names in lexical order.
func sortedKeys(rec Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
