// Package database provides SQLite-based storage for CompScan run history.
//
// This package implements the RunDB, which stores:
//   - One row per run with the assembled report as JSON
//   - One row per entity outcome (success or failure) for history queries
//
// The markdown files in the archive directory remain the canonical report
// record; the database is a queryable index over the same runs so the
// history command can answer per-entity questions without re-parsing the
// archive.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
