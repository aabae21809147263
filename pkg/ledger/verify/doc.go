// Package verify walks ledger entries and independently checks payload
// hashes, chain linkage, and signatures. It is strictly read-only: a
// detected break is reported, never repaired. Partial ranges (for
// example an external export without the full chain) verify against an
// externally supplied expected prior hash for the first entry.
package verify
