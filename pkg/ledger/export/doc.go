// Package export builds deterministic, signed snapshots of ledger
// ranges for external audit. Two exports of the same unmodified range
// are byte-identical: entries serialize in sequence order with stable
// field ordering, and the generation timestamp travels alongside the
// package without being covered by its signature. A downloaded package
// verifies independently of the channel that delivered it.
package export
