package storage

import (
	"context"
	"sync"

	"veritas-hq/meridian/pkg/ledger"
)

// MemoryStore implements ledger.Store with an in-memory slice.
// Intended for tests and development.
type MemoryStore struct {
	entries []*ledger.Entry
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append persists an entry. Fails on duplicate or out-of-order sequence.
func (s *MemoryStore) Append(ctx context.Context, entry *ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected := uint64(len(s.entries)) + 1
	if entry.Sequence != expected {
		if entry.Sequence < expected {
			return &ledger.DuplicateSequenceError{Sequence: entry.Sequence}
		}
		return ledger.NewStorageError("memory", "append",
			&ledger.DuplicateSequenceError{Sequence: entry.Sequence})
	}

	copied := *entry
	s.entries = append(s.entries, &copied)
	return nil
}

// Head returns the most recent entry, or nil if empty.
func (s *MemoryStore) Head(ctx context.Context) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	copied := *s.entries[len(s.entries)-1]
	return &copied, nil
}

// Get returns entries with from <= sequence <= to, in sequence order.
func (s *MemoryStore) Get(ctx context.Context, from, to uint64) ([]*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if from == 0 {
		from = 1
	}
	if to == 0 || to > uint64(len(s.entries)) {
		to = uint64(len(s.entries))
	}

	var results []*ledger.Entry
	for seq := from; seq <= to; seq++ {
		copied := *s.entries[seq-1]
		results = append(results, &copied)
	}
	return results, nil
}

// Query returns entries matching the filters, in sequence order.
func (s *MemoryStore) Query(ctx context.Context, query *ledger.Query) ([]*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*ledger.Entry
	for _, entry := range s.entries {
		if !matchesQuery(entry, query) {
			continue
		}
		copied := *entry
		results = append(results, &copied)
		if query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// matchesQuery applies query filters to an entry.
func matchesQuery(entry *ledger.Entry, query *ledger.Query) bool {
	if query == nil {
		return true
	}
	if query.FromSequence > 0 && entry.Sequence < query.FromSequence {
		return false
	}
	if query.ToSequence > 0 && entry.Sequence > query.ToSequence {
		return false
	}
	if query.DecisionID != "" && entry.DecisionID != query.DecisionID {
		return false
	}
	if query.Actor != "" && entry.Actor != query.Actor {
		return false
	}
	if query.Outcome != "" && entry.Outcome != query.Outcome {
		return false
	}
	if query.MinRiskLevel != nil && entry.RiskLevel < *query.MinRiskLevel {
		return false
	}
	if query.StartTime != nil && entry.Timestamp.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && entry.Timestamp.After(*query.EndTime) {
		return false
	}
	return true
}
