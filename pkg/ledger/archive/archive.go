// Package archive stores decision evaluation detail alongside the
// ledger: the originating request (including its free-form context map)
// and evaluation timing, keyed by decision ID. Ledger entries stay
// compact and verify without the archive; audit replay joins the two
// through the decision ID.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"veritas-hq/meridian/pkg/policy/engine"
)

// Config configures the archive store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Archive is a SQLite-backed decision detail store.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens an archive database.
func Open(cfg Config) (*Archive, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("archive db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	a := &Archive{
		db:     db,
		logger: slog.Default().With("component", "ledger.archive"),
	}

	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	a.logger.Info("decision archive opened", "path", cfg.DBPath)
	return a, nil
}

// initSchema creates the archive schema if it does not exist.
func (a *Archive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decision_details (
		decision_id TEXT PRIMARY KEY,
		request_json TEXT NOT NULL,
		evaluation_us INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_details_created_at ON decision_details(created_at);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Store records the request and timing detail for a decision.
func (a *Archive) Store(ctx context.Context, decision *engine.Decision, req *engine.DecisionRequest) error {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO decision_details (decision_id, request_json, evaluation_us, created_at)
		VALUES (?, ?, ?, ?)`,
		decision.ID,
		string(requestJSON),
		decision.EvaluationTime.Microseconds(),
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store decision detail: %w", err)
	}
	return nil
}

// Request returns the archived request for a decision, or nil if the
// decision has no archived detail.
func (a *Archive) Request(ctx context.Context, decisionID string) (*engine.DecisionRequest, error) {
	var requestJSON string
	err := a.db.QueryRowContext(ctx,
		`SELECT request_json FROM decision_details WHERE decision_id = ?`,
		decisionID).Scan(&requestJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read decision detail: %w", err)
	}

	var req engine.DecisionRequest
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return nil, fmt.Errorf("failed to decode archived request: %w", err)
	}
	return &req, nil
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}
