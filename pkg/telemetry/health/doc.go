// Package health provides liveness and readiness checks for Meridian.
//
// Components register named check functions with a Checker; the
// readiness endpoint runs them all and aggregates the result. Liveness
// is a constant-time "process is up" answer.
package health
