package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"veritas-hq/meridian/pkg/ledger"
)

// SQLiteConfig contains configuration for the SQLite ledger store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10 (SQLite serializes writes internally; readers benefit
	// from the pool under WAL)
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging so reads proceed concurrently
	// with the single writer.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/ledger.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements ledger.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLite-backed ledger store, initializing the
// schema and enabling WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "ledger.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite ledger store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the schema and database pragmas.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return ledger.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return ledger.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return ledger.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return ledger.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return ledger.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return ledger.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append persists an entry. The primary key on sequence makes duplicate
// assignment fail atomically; the insert either lands whole or not at
// all, so an entry can never be persisted partially.
func (s *SQLiteStore) Append(ctx context.Context, entry *ledger.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (
			sequence, timestamp_ns, prev_hash, content_hash, signature,
			payload, decision_id, actor, outcome, risk_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Sequence,
		entry.Timestamp.UnixNano(),
		entry.PrevHash,
		entry.ContentHash,
		entry.Signature,
		entry.Payload,
		entry.DecisionID,
		entry.Actor,
		entry.Outcome,
		entry.RiskLevel,
	)
	if err != nil {
		if sqliteErr, ok := err.(sqlite3.Error); ok &&
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return &ledger.DuplicateSequenceError{Sequence: entry.Sequence}
		}
		return ledger.NewStorageError("sqlite", "append", err)
	}
	return nil
}

// Head returns the entry with the highest sequence, or nil if empty.
func (s *SQLiteStore) Head(ctx context.Context) (*ledger.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM entries ORDER BY sequence DESC LIMIT 1`)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "head", err)
	}
	return entry, nil
}

// Get returns entries with from <= sequence <= to, in sequence order.
func (s *SQLiteStore) Get(ctx context.Context, from, to uint64) ([]*ledger.Entry, error) {
	if from == 0 {
		from = 1
	}

	var (
		rows *sql.Rows
		err  error
	)
	if to == 0 {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` FROM entries WHERE sequence >= ? ORDER BY sequence ASC`, from)
	} else {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` FROM entries WHERE sequence >= ? AND sequence <= ? ORDER BY sequence ASC`,
			from, to)
	}
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "get", err)
	}
	defer rows.Close()

	return collectEntries(rows, "get")
}

// Query returns entries matching the filters, in sequence order.
func (s *SQLiteStore) Query(ctx context.Context, query *ledger.Query) ([]*ledger.Entry, error) {
	var (
		clauses []string
		args    []interface{}
	)

	if query != nil {
		if query.FromSequence > 0 {
			clauses = append(clauses, "sequence >= ?")
			args = append(args, query.FromSequence)
		}
		if query.ToSequence > 0 {
			clauses = append(clauses, "sequence <= ?")
			args = append(args, query.ToSequence)
		}
		if query.DecisionID != "" {
			clauses = append(clauses, "decision_id = ?")
			args = append(args, query.DecisionID)
		}
		if query.Actor != "" {
			clauses = append(clauses, "actor = ?")
			args = append(args, query.Actor)
		}
		if query.Outcome != "" {
			clauses = append(clauses, "outcome = ?")
			args = append(args, query.Outcome)
		}
		if query.MinRiskLevel != nil {
			clauses = append(clauses, "risk_level >= ?")
			args = append(args, *query.MinRiskLevel)
		}
		if query.StartTime != nil {
			clauses = append(clauses, "timestamp_ns >= ?")
			args = append(args, query.StartTime.UnixNano())
		}
		if query.EndTime != nil {
			clauses = append(clauses, "timestamp_ns <= ?")
			args = append(args, query.EndTime.UnixNano())
		}
	}

	sqlQuery := selectColumns + ` FROM entries`
	if len(clauses) > 0 {
		sqlQuery += " WHERE " + strings.Join(clauses, " AND ")
	}
	sqlQuery += " ORDER BY sequence ASC"
	if query != nil && query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	return collectEntries(rows, "query")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT sequence, timestamp_ns, prev_hash, content_hash, signature,
	payload, decision_id, actor, outcome, risk_level`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEntry reads one entry from a row.
func scanEntry(row rowScanner) (*ledger.Entry, error) {
	var (
		entry       ledger.Entry
		timestampNs int64
	)
	err := row.Scan(
		&entry.Sequence,
		&timestampNs,
		&entry.PrevHash,
		&entry.ContentHash,
		&entry.Signature,
		&entry.Payload,
		&entry.DecisionID,
		&entry.Actor,
		&entry.Outcome,
		&entry.RiskLevel,
	)
	if err != nil {
		return nil, err
	}
	entry.Timestamp = time.Unix(0, timestampNs).UTC()
	return &entry, nil
}

// collectEntries drains rows into a slice.
func collectEntries(rows *sql.Rows, operation string) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, ledger.NewStorageError("sqlite", operation, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("sqlite", operation, err)
	}
	return entries, nil
}
