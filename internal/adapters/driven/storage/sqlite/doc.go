// Package sqlite implements the storage ports on a single SQLite database.
// Records, the import run log and OAuth credentials share one file so a
// backup of it captures the entire local state.
package sqlite
