// Package storage provides ledger.Store implementations: an in-memory
// store for tests and a SQLite-backed store for production. Both enforce
// the append-only contract; neither exposes update or delete.
package storage
