// Package history persists finished downloads in SQLite.
//
// Every item that reaches done or error is recorded with its batch ID, final
// stage, error text and saved paths, and every completed batch gets a summary
// row. The web host serves the recent entries on /history and the CLI exposes
// them through `ripmedia history list|clear`.
package history
