// Package logging configures structured logging for Meridian on top of
// log/slog. All components log through slog.Default with a "component"
// attribute, so setup here applies process-wide.
package logging
