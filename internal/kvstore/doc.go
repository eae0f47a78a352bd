// Package kvstore persists timeplus data as string values under string keys.
//
// Three backends implement Store: SQLite (default, modernc.org/sqlite), a
// PostgreSQL backend through GORM for sharing markers between machines, and
// an in-memory map used by tests and the memory backend. Open selects one from
// config. Keys are namespaced by the caller; Keys lists everything under a
// prefix so the backup command can export a consistent snapshot.
package kvstore
