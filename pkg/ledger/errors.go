package ledger

import "fmt"

// AppendError indicates an append failed after the ledger exhausted its
// retry budget. Nothing was persisted for the failed attempt; callers
// must not assume the decision was recorded.
type AppendError struct {
	Attempts int
	Cause    error
}

// Error returns the error message.
func (e *AppendError) Error() string {
	return fmt.Sprintf("ledger append failed after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *AppendError) Unwrap() error {
	return e.Cause
}

// StorageError represents a failure in a ledger storage backend.
type StorageError struct {
	Backend   string // "sqlite", "memory"
	Operation string // "append", "head", "get", "query"
	Cause     error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// DuplicateSequenceError indicates an append collided with an existing
// sequence number. The appender retries with a recomputed head.
type DuplicateSequenceError struct {
	Sequence uint64
}

// Error returns the error message.
func (e *DuplicateSequenceError) Error() string {
	return fmt.Sprintf("sequence %d already exists", e.Sequence)
}

// ChainIntegrityError indicates the verifier found a broken chain. It is
// always surfaced and never auto-repaired; silently fixing a broken
// chain would defeat the ledger's purpose.
type ChainIntegrityError struct {
	Sequence uint64
	Reason   string
}

// Error returns the error message.
func (e *ChainIntegrityError) Error() string {
	return fmt.Sprintf("chain integrity violation at sequence %d: %s", e.Sequence, e.Reason)
}
