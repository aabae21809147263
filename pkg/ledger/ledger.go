package ledger

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"sync"
	"time"

	"veritas-hq/meridian/pkg/policy/engine"
)

// Config contains configuration for the ledger writer.
type Config struct {
	// MaxAppendAttempts bounds append retries after persistence
	// failures. Each retry recomputes prev_hash and re-signs against the
	// current head; a stale signature is never reused.
	// Default: 3
	MaxAppendAttempts int

	// PersistTimeout bounds the storage write inside Append. A timeout
	// is an AppendError, never a silent success.
	// Default: 5 seconds
	PersistTimeout time.Duration

	// OnRetry, if non-nil, is called once for each failed append attempt
	// that is about to be retried. Used to feed metrics.
	OnRetry func()
}

// DefaultConfig returns the default ledger configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxAppendAttempts: 3,
		PersistTimeout:    5 * time.Second,
	}
}

// Ledger is the append-only decision ledger for one tenant. It owns the
// append cursor and the signing key; Append is the sole mutator and is
// serialized by mu so sequence numbers are never duplicated, skipped, or
// assigned out of hash order.
type Ledger struct {
	store  Store
	signer *Signer
	config *Config
	logger *slog.Logger

	// mu serializes appends. prev_hash linkage and sequence assignment
	// are inherently sequential.
	mu sync.Mutex
}

// New creates a ledger over the given store and signing key.
func New(store Store, signer *Signer, config *Config) *Ledger {
	if config == nil {
		config = DefaultConfig()
	}
	return &Ledger{
		store:  store,
		signer: signer,
		config: config,
		logger: slog.Default().With("component", "ledger"),
	}
}

// Append records a decision as the next chain entry and returns it.
//
// The payload hash, prev_hash, sequence number, and signature are
// computed under the writer lock. If persistence fails, the whole append
// is retried against the possibly-changed head up to the configured
// attempt budget; a partial entry is never persisted.
func (l *Ledger) Append(ctx context.Context, decision *engine.Decision) (*Entry, error) {
	payload, err := CanonicalPayload(decision)
	if err != nil {
		return nil, &AppendError{Attempts: 0, Cause: err}
	}
	contentHash := HashContent(payload)

	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= l.config.MaxAppendAttempts; attempt++ {
		entry, err := l.tryAppend(ctx, decision, payload, contentHash)
		if err == nil {
			l.logger.Info("ledger entry appended",
				"sequence", entry.Sequence,
				"decision_id", entry.DecisionID,
				"outcome", entry.Outcome,
			)
			return entry, nil
		}

		lastErr = err
		l.logger.Warn("ledger append attempt failed",
			"attempt", attempt,
			"max_attempts", l.config.MaxAppendAttempts,
			"error", err,
		)

		if ctx.Err() != nil {
			break
		}
		if attempt < l.config.MaxAppendAttempts && l.config.OnRetry != nil {
			l.config.OnRetry()
		}
	}

	return nil, &AppendError{Attempts: l.config.MaxAppendAttempts, Cause: lastErr}
}

// tryAppend performs one append attempt: read head, link, sign, persist.
// Caller holds l.mu.
func (l *Ledger) tryAppend(ctx context.Context, decision *engine.Decision, payload []byte, contentHash string) (*Entry, error) {
	head, err := l.store.Head(ctx)
	if err != nil {
		return nil, err
	}

	prevHash := GenesisHash
	var sequence uint64 = 1
	if head != nil {
		prevHash = head.ContentHash
		sequence = head.Sequence + 1
	}

	entry := &Entry{
		Sequence:    sequence,
		Timestamp:   time.Now().UTC(),
		PrevHash:    prevHash,
		ContentHash: contentHash,
		Payload:     payload,
		DecisionID:  decision.ID,
		Actor:       decision.Actor,
		Outcome:     string(decision.Outcome),
		RiskLevel:   decision.RiskLevel,
	}
	entry.Signature = l.signer.Sign(
		SigningMessage(entry.Sequence, entry.PrevHash, entry.ContentHash, entry.Timestamp))

	persistCtx, cancel := context.WithTimeout(ctx, l.config.PersistTimeout)
	defer cancel()

	if err := l.store.Append(persistCtx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Head returns the most recent entry, or nil if the ledger is empty.
// Reads do not block on in-flight appends.
func (l *Ledger) Head(ctx context.Context) (*Entry, error) {
	return l.store.Head(ctx)
}

// Get returns entries in the inclusive sequence range [from, to].
// to == 0 means "through the head".
func (l *Ledger) Get(ctx context.Context, from, to uint64) ([]*Entry, error) {
	return l.store.Get(ctx, from, to)
}

// Query returns entries matching the filters, in sequence order.
func (l *Ledger) Query(ctx context.Context, query *Query) ([]*Entry, error) {
	return l.store.Query(ctx, query)
}

// PublicKey returns the ledger's verification key.
func (l *Ledger) PublicKey() ed25519.PublicKey {
	return l.signer.PublicKey()
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}
