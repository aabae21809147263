package ledger

import (
	"context"
	"fmt"
	"time"
)

// GenesisHash is the prev_hash of the first entry in every chain:
// 64 hex zeros, the length of a hex-encoded SHA-256 digest.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Entry is one immutable, signed row of the audit ledger.
type Entry struct {
	// Sequence is the strictly increasing, gap-free entry number,
	// starting at 1.
	Sequence uint64 `json:"sequence"`

	// Timestamp is when the entry was appended. Signed as Unix
	// nanoseconds.
	Timestamp time.Time `json:"timestamp"`

	// PrevHash is the content hash of the previous entry, or GenesisHash
	// for the first entry.
	PrevHash string `json:"prev_hash"`

	// ContentHash is the hex-encoded SHA-256 of Payload.
	ContentHash string `json:"content_hash"`

	// Signature is the hex-encoded Ed25519 signature over
	// SigningMessage(Sequence, PrevHash, ContentHash, Timestamp).
	Signature string `json:"signature"`

	// Payload is the canonical serialization of the decision. It is the
	// sole input to ContentHash; everything below is derived from it and
	// denormalized for query filters.
	Payload []byte `json:"payload"`

	// Derived columns (from Payload) used by ledger queries.
	DecisionID string `json:"decision_id"`
	Actor      string `json:"actor"`
	Outcome    string `json:"outcome"`
	RiskLevel  int    `json:"risk_level"`
}

// SigningMessage builds the byte string the ledger signs for an entry.
// The format is fixed; verifiers reconstruct it from stored columns.
func SigningMessage(sequence uint64, prevHash, contentHash string, ts time.Time) []byte {
	return []byte(fmt.Sprintf("%d|%s|%s|%d", sequence, prevHash, contentHash, ts.UnixNano()))
}

// Query defines filter parameters for reading ledger entries.
type Query struct {
	// Sequence window (inclusive). Zero means unbounded.
	FromSequence uint64 `json:"from_sequence,omitempty"`
	ToSequence   uint64 `json:"to_sequence,omitempty"`

	// Filters.
	DecisionID   string     `json:"decision_id,omitempty"`
	Actor        string     `json:"actor,omitempty"`
	Outcome      string     `json:"outcome,omitempty"`
	MinRiskLevel *int       `json:"min_risk_level,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`

	// Pagination by sequence window.
	Limit int `json:"limit,omitempty"`
}

// Store defines the persistence contract for ledger entries.
// Implementations must be safe for concurrent use: one writer calling
// Append, any number of concurrent readers.
type Store interface {
	// Append persists an entry. It must fail if the sequence number
	// already exists, and must never persist an entry partially.
	Append(ctx context.Context, entry *Entry) error

	// Head returns the entry with the highest sequence number, or nil
	// if the ledger is empty.
	Head(ctx context.Context) (*Entry, error)

	// Get returns entries with from <= sequence <= to, in sequence
	// order. to == 0 means "through the head".
	Get(ctx context.Context, from, to uint64) ([]*Entry, error)

	// Query returns entries matching the filters, in sequence order.
	Query(ctx context.Context, query *Query) ([]*Entry, error)

	// Close releases resources held by the store.
	Close() error
}
