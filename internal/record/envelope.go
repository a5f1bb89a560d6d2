package record

import "github.com/nerrad567/veildb/internal/schema"

// Record maps column names to logical values. Keys being strings is
// structural here; ordering is irrelevant because inserts bind values in
// the table's declared column order, never in record order.
type Record = map[string]schema.Value

// FetchMode selects how many matches Fetch returns.
type FetchMode int

// Fetch modes.
const (
	// FetchOne returns the first matching record.
	FetchOne FetchMode = iota + 1

	// FetchAll returns every matching record in result order.
	FetchAll
)

// Response is the uniform result envelope for every store operation.
//
// Status is true iff the operation affected or returned at least one
// row. Exactly one of the value fields is meaningful per operation:
// Record for FetchOne, Records for FetchAll and Add (the echoed input),
// Count for Remove and Update.
type Response struct {
	Status  bool
	Record  Record
	Records []Record
	Count   int64
}
