package verify

import (
	"context"
	"crypto/ed25519"

	"veritas-hq/meridian/pkg/ledger"
)

// FailureReason identifies which check an entry failed.
type FailureReason string

const (
	// ReasonHashMismatch: the stored content hash does not match the
	// recomputed hash of the stored payload.
	ReasonHashMismatch FailureReason = "hash_mismatch"

	// ReasonChainBreak: prev_hash does not match the recomputed content
	// hash of the preceding entry.
	ReasonChainBreak FailureReason = "chain_break"

	// ReasonBadSignature: the signature does not verify over the claimed
	// (sequence, prev_hash, content_hash, timestamp) tuple.
	ReasonBadSignature FailureReason = "bad_signature"
)

// Failure records one failed check for one entry.
type Failure struct {
	Sequence uint64        `json:"sequence"`
	Reason   FailureReason `json:"reason"`
}

// Report is the result of a chain verification run. Reports are computed
// on demand and never persisted as authoritative state.
type Report struct {
	// Total is the number of entries checked.
	Total int `json:"total"`

	// Verified is the number of entries that passed all three checks.
	Verified int `json:"verified"`

	// Failed is the number of entries that failed at least one check.
	Failed int `json:"failed"`

	// ChainIntact is true when no chain_break or hash_mismatch occurred.
	ChainIntact bool `json:"chain_intact"`

	// SignaturesValid is true when every signature verified.
	SignaturesValid bool `json:"signatures_valid"`

	// Failures lists each failed check with its sequence number.
	Failures []Failure `json:"failures,omitempty"`
}

// Options adjusts verification of partial ranges.
type Options struct {
	// ExpectedPriorHash is the content hash expected as the first
	// entry's prev_hash. When empty, the first entry is checked against
	// GenesisHash if its sequence is 1, and its linkage is otherwise
	// left unchecked (the predecessor is outside the range).
	ExpectedPriorHash string
}

// Entries verifies a contiguous slice of entries against the ledger's
// public key. Every entry is checked independently on all three
// properties; a single mutated byte fails its entry, and a broken link
// additionally fails the entries causally after it.
func Entries(entries []*ledger.Entry, public ed25519.PublicKey, opts *Options) *Report {
	report := &Report{
		Total:           len(entries),
		ChainIntact:     true,
		SignaturesValid: true,
	}

	var prevRecomputed string
	if opts != nil && opts.ExpectedPriorHash != "" {
		prevRecomputed = opts.ExpectedPriorHash
	}

	for i, entry := range entries {
		failed := false

		// Content hash: recompute from the stored payload.
		recomputed := ledger.HashContent(entry.Payload)
		if recomputed != entry.ContentHash {
			report.Failures = append(report.Failures, Failure{entry.Sequence, ReasonHashMismatch})
			report.ChainIntact = false
			failed = true
		}

		// Chain linkage: prev_hash must equal the recomputed hash of the
		// predecessor (or the genesis constant / supplied prior hash).
		expectedPrev := prevRecomputed
		if i == 0 && expectedPrev == "" && entry.Sequence == 1 {
			expectedPrev = ledger.GenesisHash
		}
		if expectedPrev != "" && entry.PrevHash != expectedPrev {
			report.Failures = append(report.Failures, Failure{entry.Sequence, ReasonChainBreak})
			report.ChainIntact = false
			failed = true
		}

		// Signature: verify over the claimed tuple as stored.
		message := ledger.SigningMessage(entry.Sequence, entry.PrevHash, entry.ContentHash, entry.Timestamp)
		if !ledger.VerifySignature(public, message, entry.Signature) {
			report.Failures = append(report.Failures, Failure{entry.Sequence, ReasonBadSignature})
			report.SignaturesValid = false
			failed = true
		}

		if failed {
			report.Failed++
		} else {
			report.Verified++
		}

		prevRecomputed = recomputed
	}

	return report
}

// FilterVerified returns the subset of entries that pass all three
// per-entry checks. The entries need not be contiguous: each entry's
// linkage is anchored on the recomputed hash of its stored predecessor,
// so a query-filtered result set verifies entry by entry. An entry whose
// predecessor is missing from the store fails its linkage check and is
// dropped.
func FilterVerified(ctx context.Context, store ledger.Store, entries []*ledger.Entry, public ed25519.PublicKey) ([]*ledger.Entry, error) {
	verified := make([]*ledger.Entry, 0, len(entries))
	for _, entry := range entries {
		opts := &Options{}
		if entry.Sequence > 1 {
			prior, err := store.Get(ctx, entry.Sequence-1, entry.Sequence-1)
			if err != nil {
				return nil, err
			}
			if len(prior) != 1 {
				continue
			}
			opts.ExpectedPriorHash = ledger.HashContent(prior[0].Payload)
		}

		report := Entries([]*ledger.Entry{entry}, public, opts)
		if report.Failed == 0 {
			verified = append(verified, entry)
		}
	}
	return verified, nil
}

// Chain reads the range [from, to] from a store and verifies it.
// to == 0 pins the range at the head sequence before reading, so
// verification can run concurrently with ongoing appends.
func Chain(ctx context.Context, store ledger.Store, from, to uint64, public ed25519.PublicKey, opts *Options) (*Report, error) {
	if to == 0 {
		head, err := store.Head(ctx)
		if err != nil {
			return nil, err
		}
		if head == nil {
			return &Report{ChainIntact: true, SignaturesValid: true}, nil
		}
		to = head.Sequence
	}

	entries, err := store.Get(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return Entries(entries, public, opts), nil
}
