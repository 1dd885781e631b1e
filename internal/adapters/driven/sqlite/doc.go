// Package sqlite provides a file-backed DocumentStore for single-node deployments.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that needs no CGO.
// The schema is managed through numbered migrations embedded from migrations/.
// The database runs in WAL mode so readers never block the upload writer.
package sqlite
