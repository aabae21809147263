package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the ledger database
// schema. The entries table is append-only: sequence is the primary key
// and no update or delete statement exists anywhere in this package.
const Schema = `
-- Ledger entries table (append-only)
CREATE TABLE IF NOT EXISTS entries (
    sequence INTEGER PRIMARY KEY,

    -- Chain columns (signed)
    timestamp_ns INTEGER NOT NULL,
    prev_hash TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    signature TEXT NOT NULL,

    -- Canonical decision payload (sole input to content_hash)
    payload BLOB NOT NULL,

    -- Derived columns for query filters
    decision_id TEXT NOT NULL,
    actor TEXT NOT NULL,
    outcome TEXT NOT NULL,
    risk_level INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_actor ON entries(actor);
CREATE INDEX IF NOT EXISTS idx_entries_outcome ON entries(outcome);
CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_entries_decision_id ON entries(decision_id);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version (idempotent).
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?);`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1;`
