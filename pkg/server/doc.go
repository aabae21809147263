// Package server provides the Meridian HTTP API.
//
// # Endpoints
//
//   - POST /v1/decide: evaluate a decision request and record the result
//   - POST /v1/resolve: resolve a pending require_confirmation decision
//   - GET  /v1/ledger: query ledger entries with filters
//   - GET  /v1/ledger/head: return the most recent ledger entry
//   - GET  /v1/key: return the ledger's public verification key
//   - POST /v1/verify: verify chain integrity over a sequence range
//   - POST /v1/export: build a signed export package
//   - GET  /healthz, /readyz: liveness and readiness
//   - GET  /metrics: Prometheus metrics (when enabled)
//
// Decide fails closed: any internal failure during evaluation or
// recording is reported to the caller as a denial.
package server
