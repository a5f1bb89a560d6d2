package record

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/veildb/internal/schema"
)

// opaqueTypeName is how untyped columns are labelled when printing,
// matching SQLite's catch-all affinity.
const opaqueTypeName = "BLOB"

// Table is a point-in-time snapshot of a table: its name, declared
// columns and the rows as stored (encoded, undecoded). Snapshots are
// for introspection and printing only; they do not track mutations
// made after construction.
type Table struct {
	// Name is the table name.
	Name string

	// Created reports whether CreateTable had to create the table
	// (false when it already existed). Always false for Snapshot.
	Created bool

	columns []schema.Column
	rows    []Record
}

// Columns returns the declared columns captured at snapshot time.
func (t *Table) Columns() []schema.Column { return t.columns }

// Rows returns the stored rows captured at snapshot time, as raw text
// values. No decoding is applied.
func (t *Table) Rows() []Record { return t.rows }

// String implements fmt.Stringer.
func (t *Table) String() string {
	return fmt.Sprintf("Table(%s: %d columns, %d rows)", t.Name, len(t.columns), len(t.rows))
}

// PrettyPrint renders the snapshot as a bordered text table: a header
// row of "name: TYPE" cells followed by the stored rows, numbered from 1.
func (t *Table) PrettyPrint() string {
	var b strings.Builder
	border := strings.Repeat("=", 50)

	fmt.Fprintf(&b, "table %s:\n%s\n", t.Name, border)

	b.WriteString("0. |")
	for _, col := range t.columns {
		declared := col.DeclaredType
		if declared == "" {
			declared = opaqueTypeName
		}
		fmt.Fprintf(&b, " %s: %s |", col.Name, declared)
	}
	b.WriteString("\n")

	for i, row := range t.rows {
		fmt.Fprintf(&b, "%d. |", i+1)
		for _, col := range t.columns {
			fmt.Fprintf(&b, " %s |", row[col.Name])
		}
		b.WriteString("\n")
	}

	b.WriteString(border)
	return b.String()
}

// Snapshot captures a table's columns and raw rows as they are right
// now. It returns nil (with no error) when the table does not exist.
func (s *Store) Snapshot(ctx context.Context, name string) (*Table, error) {
	cols, err := s.schema.Columns(ctx, name)
	if err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, nil
	}

	// Cast every column so the rows show the stored text, not the
	// driver's reading of datetime declared columns.
	resp, err := s.Execute(ctx, fmt.Sprintf("SELECT %s FROM %s", castColumnList(cols), name))
	if err != nil {
		return nil, err
	}

	return &Table{Name: name, columns: cols, rows: resp.Records}, nil
}

// CreateTable creates a table if it does not exist and returns its
// snapshot. Column definitions are raw DDL fragments ("id INTEGER") and
// are treated as trusted input, like the table name they accompany; the
// name itself must still pass the identifier check.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - name: Table name
//   - columnDefs: One DDL fragment per column
//
// Returns:
//   - *Table: Snapshot of the (possibly pre-existing) table, with
//     Created reporting whether this call created it
//   - error: ErrInvalidIdentifier or an engine error
func (s *Store) CreateTable(ctx context.Context, name string, columnDefs ...string) (*Table, error) {
	if !schema.ValidIdentifier(name) {
		return nil, fmt.Errorf("%w: %q", schema.ErrInvalidIdentifier, name)
	}

	existed, err := s.schema.Exists(ctx, name)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(columnDefs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", name, err)
	}

	table, err := s.Snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	table.Created = !existed

	s.log.Debug("create table", "table", name, "created", !existed)
	return table, nil
}

// DropTable removes a table. A missing table is a negative result, not
// an error, mirroring the read-side not-found behaviour.
func (s *Store) DropTable(ctx context.Context, name string) (bool, error) {
	if !schema.ValidIdentifier(name) {
		return false, fmt.Errorf("%w: %q", schema.ErrInvalidIdentifier, name)
	}

	exists, err := s.schema.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", name)); err != nil {
		return false, fmt.Errorf("dropping table %s: %w", name, err)
	}

	s.log.Debug("drop table", "table", name)
	return true, nil
}
