// Package engine evaluates decision requests against a versioned policy
// snapshot and produces immutable decisions for the audit ledger.
//
// Evaluation is a pure function over the request and the policy: no wall
// clock, randomness, or shared mutable state influences rule matching, so
// the same request and policy version always yield the same outcome and
// the same applied-rule ordering. Any internal failure on the decide path
// fails closed (deny), never open.
package engine
