package record

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nerrad567/veildb/internal/encoding"
	"github.com/nerrad567/veildb/internal/infrastructure/database"
	"github.com/nerrad567/veildb/internal/infrastructure/logging"
	"github.com/nerrad567/veildb/internal/schema"
)

// Store is the record gateway: CRUD over one SQLite file with uniform
// value encoding on the way in and decoding plus type coercion on the
// way out. The codec is fixed for the lifetime of the store.
type Store struct {
	db     *database.DB
	codec  encoding.Codec
	schema *schema.Introspector
	log    *logging.Logger
}

// New creates a Store over an open database with the given codec.
func New(db *database.DB, codec encoding.Codec, log *logging.Logger) *Store {
	return &Store{
		db:     db,
		codec:  codec,
		schema: schema.NewIntrospector(db),
		log:    log.Component("record"),
	}
}

// Mode reports the store's encoding mode.
func (s *Store) Mode() encoding.Mode {
	return s.codec.Mode()
}

// Columns returns the table's declared columns, nil if the table is absent.
func (s *Store) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	return s.schema.Columns(ctx, table)
}

// Exists reports whether the table exists.
func (s *Store) Exists(ctx context.Context, table string) (bool, error) {
	return s.schema.Exists(ctx, table)
}

// Tables lists all user tables.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	return s.schema.Tables(ctx)
}

// Add inserts one or more records into a table.
//
// Every record must supply a value for every declared column, and each
// value must pass the column's write validation on the logical value
// (before encoding). A validation failure on any record aborts the whole
// call with a negative-status Response and no insert; it is reported in
// the envelope, never raised. Values are bound positionally in the
// table's declared column order, not in record order.
//
// Each record is inserted by its own statement, so an engine failure
// midway leaves earlier records committed (batches are not atomic as a
// whole).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - records: Records to insert
//   - table: Target table name
//
// Returns:
//   - Response: Status true iff at least one row was inserted; Records
//     echoes the original (un-encoded) input on success
//   - error: ErrTableNotFound if the table is absent, or an engine error
func (s *Store) Add(ctx context.Context, records []Record, table string) (Response, error) {
	cols, err := s.schema.Columns(ctx, table)
	if err != nil {
		return Response{}, err
	}
	if cols == nil {
		return Response{}, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}

	// Validate and encode everything up front so a bad record cannot
	// leave a partial batch behind.
	bound := make([][]any, 0, len(records))
	for i, rec := range records {
		args, cause := s.bindRecord(rec, cols)
		if cause != "" {
			s.log.Warn("add rejected by validation",
				"table", table,
				"record", i,
				"cause", cause,
			)
			return Response{Status: false}, nil
		}
		bound = append(bound, args)
	}

	names := make([]string, len(cols))
	holes := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		holes[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(holes, ", "))

	var inserted int64
	for _, args := range bound {
		result, err := s.db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return Response{Status: inserted > 0}, fmt.Errorf("inserting into %s: %w", table, err)
		}
		n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
		inserted += n
	}

	s.log.Debug("add", "table", table, "rows", inserted)
	return Response{Status: inserted > 0, Records: records}, nil
}

// bindRecord validates a record against the declared columns and encodes
// its values in declared column order. A non-empty cause string reports
// why validation failed.
func (s *Store) bindRecord(rec Record, cols []schema.Column) ([]any, string) {
	declared := make(map[string]bool, len(cols))
	for _, c := range cols {
		declared[c.Name] = true
	}
	for key := range rec {
		if !declared[key] {
			return nil, fmt.Sprintf("unknown column %q", key)
		}
	}

	args := make([]any, 0, len(cols))
	for _, col := range cols {
		v, ok := rec[col.Name]
		if !ok {
			return nil, fmt.Sprintf("missing value for column %q", col.Name)
		}

		kind := col.Kind()
		if !schema.ValidateOnWrite(v, kind) {
			return nil, fmt.Sprintf("value %s does not satisfy %s column %q", v, kind, col.Name)
		}

		arg, err := encodeValue(v, s.codec)
		if err != nil {
			return nil, fmt.Sprintf("column %q: %v", col.Name, err)
		}
		args = append(args, arg)
	}

	return args, ""
}

// Fetch returns records matching an equality predicate. An empty
// predicate matches every row. Returned values are decoded and coerced
// to each column's declared kind.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - predicate: Column → value equality filter (ANDed)
//   - table: Table to query
//   - mode: FetchOne for the first match, FetchAll for all matches
//
// Returns:
//   - Response: Status true iff at least one row matched; Record holds
//     the first match under FetchOne, Records the full list under FetchAll
//   - error: Decode/coercion failures and engine errors; an absent table
//     is a negative result, not an error
func (s *Store) Fetch(ctx context.Context, predicate Record, table string, mode FetchMode) (Response, error) {
	cols, err := s.schema.Columns(ctx, table)
	if err != nil {
		return Response{}, err
	}
	if cols == nil {
		return Response{Status: false}, nil
	}

	where, args, err := buildPredicate(predicate, s.codec)
	if err != nil {
		return Response{}, err
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", castColumnList(cols), table)
	if where != "" {
		stmt += " WHERE " + where
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return Response{}, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close() //nolint:errcheck // rows fully consumed below

	var matches []Record
	for rows.Next() {
		raw := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Response{}, fmt.Errorf("scanning %s row: %w", table, err)
		}

		rec, err := s.decodeRow(raw, cols)
		if err != nil {
			return Response{}, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return Response{}, fmt.Errorf("iterating %s rows: %w", table, err)
	}

	s.log.Debug("fetch", "table", table, "matches", len(matches))

	if mode == FetchOne {
		if len(matches) == 0 {
			return Response{Status: false}, nil
		}
		return Response{Status: true, Record: matches[0]}, nil
	}
	return Response{Status: len(matches) > 0, Records: matches}, nil
}

// decodeRow decodes every stored value and coerces it to its column's
// kind. NULLs short-circuit to the null value; the codec never sees them.
func (s *Store) decodeRow(raw []sql.NullString, cols []schema.Column) (Record, error) {
	rec := make(Record, len(cols))
	for i, col := range cols {
		if !raw[i].Valid {
			rec[col.Name] = schema.Null()
			continue
		}

		decoded, err := s.codec.Decode(raw[i].String)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}

		v, err := schema.CoerceOnRead(decoded, col.Kind())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		rec[col.Name] = v
	}
	return rec, nil
}

// Remove deletes rows matching each predicate in turn, accumulating the
// affected count. Each predicate is an independent delete; an empty
// predicate deletes every row. A positive limit caps each delete.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - predicates: One filter per delete statement
//   - table: Target table
//   - limit: Maximum rows per delete, 0 for no limit
//
// Returns:
//   - Response: Status true iff at least one row was deleted; Count is
//     the total affected. Removing nothing is a negative result, not an
//     error, and is idempotent
//   - error: Engine errors; an absent table is a negative result
func (s *Store) Remove(ctx context.Context, predicates []Record, table string, limit int) (Response, error) {
	exists, err := s.schema.Exists(ctx, table)
	if err != nil {
		return Response{}, err
	}
	if !exists {
		return Response{Status: false}, nil
	}

	var total int64
	for _, pred := range predicates {
		where, args, err := buildPredicate(pred, s.codec)
		if err != nil {
			return Response{Status: total > 0, Count: total}, err
		}

		var stmt string
		switch {
		case limit > 0:
			// Stock SQLite builds lack DELETE ... LIMIT; a rowid
			// subquery is the portable equivalent.
			inner := fmt.Sprintf("SELECT rowid FROM %s", table)
			if where != "" {
				inner += " WHERE " + where
			}
			stmt = fmt.Sprintf("DELETE FROM %s WHERE rowid IN (%s LIMIT ?)", table, inner)
			args = append(args, limit)
		case where != "":
			stmt = fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
		default:
			stmt = fmt.Sprintf("DELETE FROM %s", table)
		}

		result, err := s.db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return Response{Status: total > 0, Count: total}, fmt.Errorf("deleting from %s: %w", table, err)
		}
		n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
		total += n
	}

	s.log.Debug("remove", "table", table, "rows", total)
	return Response{Status: total > 0, Count: total}, nil
}

// Update sets new values on rows matching the predicate. Both the SET
// values and the predicate are encoded and fully parameter-bound. An
// empty values map is a contract violation and raises ErrEmptyUpdate; a
// predicate matching nothing is a negative result.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - predicate: Column → value equality filter for the rows to change
//   - values: Column → new value assignments (must be non-empty)
//   - table: Target table
//   - limit: Maximum rows to update, 0 for no limit
//
// Returns:
//   - Response: Status true iff at least one row changed; Count is the
//     affected row count
//   - error: ErrEmptyUpdate, ErrTableNotFound, or an engine error
func (s *Store) Update(ctx context.Context, predicate, values Record, table string, limit int) (Response, error) {
	if len(values) == 0 {
		return Response{}, ErrEmptyUpdate
	}

	exists, err := s.schema.Exists(ctx, table)
	if err != nil {
		return Response{}, err
	}
	if !exists {
		return Response{}, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}

	setKeys := sortedKeys(values)
	setParts := make([]string, 0, len(setKeys))
	args := make([]any, 0, len(setKeys)+len(predicate)+1)
	for _, k := range setKeys {
		if !schema.ValidIdentifier(k) {
			return Response{}, fmt.Errorf("%w: %q", schema.ErrInvalidIdentifier, k)
		}
		arg, err := encodeValue(values[k], s.codec)
		if err != nil {
			return Response{}, err
		}
		setParts = append(setParts, k+" = ?")
		args = append(args, arg)
	}

	where, whereArgs, err := buildPredicate(predicate, s.codec)
	if err != nil {
		return Response{}, err
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(setParts, ", "))
	switch {
	case limit > 0:
		inner := fmt.Sprintf("SELECT rowid FROM %s", table)
		if where != "" {
			inner += " WHERE " + where
		}
		stmt += fmt.Sprintf(" WHERE rowid IN (%s LIMIT ?)", inner)
		args = append(args, whereArgs...)
		args = append(args, limit)
	case where != "":
		stmt += " WHERE " + where
		args = append(args, whereArgs...)
	}

	result, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Response{}, fmt.Errorf("updating %s: %w", table, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite

	s.log.Debug("update", "table", table, "rows", n)
	return Response{Status: n > 0, Count: n}, nil
}

// Execute runs a raw SQL query and returns its rows as records of raw
// (undecoded) text values. It exists for diagnostics and tooling; values
// pass through no codec and no coercion.
//
// The driver turns values from DATE/DATETIME/TIME declared columns into
// time.Time before they can be scanned as text. A query that must see
// the stored text of such a column verbatim should select it through
// CAST(col AS TEXT), the way Snapshot does.
func (s *Store) Execute(ctx context.Context, query string) (Response, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Response{}, err
	}
	defer rows.Close() //nolint:errcheck // rows fully consumed below

	names, err := rows.Columns()
	if err != nil {
		return Response{}, fmt.Errorf("reading result columns: %w", err)
	}

	var records []Record
	for rows.Next() {
		raw := make([]sql.NullString, len(names))
		dest := make([]any, len(names))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Response{}, fmt.Errorf("scanning row: %w", err)
		}

		rec := make(Record, len(names))
		for i, name := range names {
			if raw[i].Valid {
				rec[name] = schema.Text(raw[i].String)
			} else {
				rec[name] = schema.Null()
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return Response{}, fmt.Errorf("iterating rows: %w", err)
	}

	return Response{Status: len(records) > 0, Records: records}, nil
}
