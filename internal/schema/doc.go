// Package schema reads table metadata and reconciles stored strings with
// the logical types their columns declare.
//
// This package manages:
//   - Live introspection of column names and declared types (PRAGMA table_info)
//   - Classification of declared SQL types into semantic kinds
//   - Coercion of decoded storage strings back into logical values on read
//   - Validation of logical values against column kinds before write
//
// Declared types are a closed, well-known lexical set, so classification
// is a static lookup rather than a parser: O(1) per value and fully
// deterministic. The declared type is authoritative on read: a caller
// who writes an integer into a TEXT column gets a string back.
//
// Metadata is re-read on every call, never cached, so a column added by
// an external process is visible on the next operation.
package schema
