package schema

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/nerrad567/veildb/internal/infrastructure/database"
)

// Column describes one column of a table: its name and the type string
// it was declared with. An empty DeclaredType means the column is
// untyped and treated as opaque.
type Column struct {
	Name         string
	DeclaredType string
}

// Kind returns the semantic kind of this column's declared type.
func (c Column) Kind() Kind {
	return Classify(c.DeclaredType)
}

// identPattern is the conservative shape accepted for table and column
// names. Names are interpolated into SQL text (values never are), so
// anything outside this set is rejected up front.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to interpolate as a
// table or column name.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// Introspector reads live table metadata from the storage engine.
// It holds no state beyond the database handle and never caches:
// every call reflects the schema as it is at that moment.
type Introspector struct {
	db *database.DB
}

// NewIntrospector creates an Introspector over the given database.
func NewIntrospector(db *database.DB) *Introspector {
	return &Introspector{db: db}
}

// Columns returns the table's columns in declared order, or nil (with no
// error) when the table does not exist. Table absence is a normal
// result here, not a failure.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - table: Table name
//
// Returns:
//   - []Column: Declared columns in order, nil if the table is absent
//   - error: ErrInvalidIdentifier or an engine error
func (in *Introspector) Columns(ctx context.Context, table string) ([]Column, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, table)
	}

	rows, err := in.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("reading table metadata: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only metadata cursor

	var columns []Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			name             string
			declared         sql.NullString
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declared, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table metadata: %w", err)
		}
		columns = append(columns, Column{Name: name, DeclaredType: declared.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table metadata: %w", err)
	}

	return columns, nil
}

// Exists reports whether a table with the given name exists.
func (in *Introspector) Exists(ctx context.Context, table string) (bool, error) {
	if !ValidIdentifier(table) {
		return false, fmt.Errorf("%w: %q", ErrInvalidIdentifier, table)
	}

	var count int
	err := in.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking table existence: %w", err)
	}
	return count > 0, nil
}

// Tables lists all user tables in the database, in sqlite_master order.
func (in *Introspector) Tables(ctx context.Context) ([]string, error) {
	rows, err := in.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only metadata cursor

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}

	return tables, nil
}
