// Package database provides SQLite database connectivity for VeilDB.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Busy-timeout and foreign-key pragmas
//   - Connection pooling and lifecycle management
//
// Security Considerations:
//   - All value binding uses parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//   - At-rest value encoding is layered above this package (internal/encoding)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//   - A single pooled connection matches SQLite's one-writer model
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "data/veildb.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
