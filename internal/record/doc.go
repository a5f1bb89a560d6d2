// Package record is the CRUD façade over the encoded SQLite store.
//
// A Store composes the three lower layers: every outgoing value is
// validated against its column's kind, encoded through the configured
// codec and bound as a statement parameter; every incoming value is
// decoded and coerced back to the kind the column declares. Callers
// therefore always see logical values (integer, real, boolean,
// timestamp, text, null) regardless of the storage encoding.
//
// All four operations return the same Response envelope: Status is true
// iff at least one row was affected or returned, and the value slot
// carries the matched records, the echoed input (Add) or the affected
// row count (Remove, Update).
//
// Error model:
//   - absent tables are a normal negative result for Fetch and Remove,
//     but an error for Add and Update, which cannot proceed meaningfully
//   - a failed write validation is reported in the envelope, never as an
//     error, and nothing is inserted
//   - decode failures (wrong secret, tampering) and engine errors
//     propagate as errors
//
// Operations are synchronous and blocking; each borrows the store's
// database handle for its duration. Batches are not atomic as a whole:
// each record is an independent unit of work.
package record
