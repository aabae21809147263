// Package metrics provides Prometheus metrics for Meridian.
//
// The Collector registers all metric families on a dedicated registry
// and exposes them through the standard promhttp handler. Metric names
// follow the pattern <namespace>_<name>, with the namespace taken from
// configuration (default "meridian").
package metrics
