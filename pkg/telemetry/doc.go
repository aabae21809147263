// Package telemetry provides observability for Meridian.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics collection
//   - health: liveness and readiness checks
package telemetry
