// Package ledger implements the signed, hash-chained audit ledger that
// is Meridian's system of record. Every decision the policy engine
// produces is appended as an immutable entry: each entry carries the
// SHA-256 hash of its canonical payload, the content hash of its
// predecessor, a strictly increasing sequence number, and an Ed25519
// signature over the chain tuple. The public contract has no update or
// delete; tampering with any persisted byte is detectable by
// pkg/ledger/verify without trusting the store.
//
// Append is the only mutator and is serialized by a single-writer lock.
// Reads proceed concurrently against committed state.
package ledger
