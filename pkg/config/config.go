package config

import "time"

// Config is the root configuration structure for Meridian. It contains
// all sections for the HTTP front door, policy loading, the ledger,
// the decision archive, and telemetry. Exports have no section: their
// options are supplied per request or per CLI invocation.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Policy contains policy loading and hot-reload configuration.
	Policy PolicyConfig `yaml:"policy"`

	// Ledger contains ledger storage, signing, and verification
	// configuration.
	Ledger LedgerConfig `yaml:"ledger"`

	// Archive contains decision detail archive configuration.
	Archive ArchiveConfig `yaml:"archive"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PolicyConfig contains configuration for policy loading.
type PolicyConfig struct {
	// Path is the policy YAML file to load.
	Path string `yaml:"path"`

	// Watch enables hot reload when the policy file changes.
	// Default: true
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload fires.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// LedgerConfig contains configuration for the audit ledger.
type LedgerConfig struct {
	// DBPath is the SQLite database file for ledger entries.
	// Default: "data/ledger.db"
	DBPath string `yaml:"db_path"`

	// SigningKeyPath is the PEM file holding the Ed25519 private key.
	// The key is read only by the ledger writer.
	SigningKeyPath string `yaml:"signing_key_path"`

	// MaxAppendAttempts bounds append retries on persistence failure.
	// Default: 3
	MaxAppendAttempts int `yaml:"max_append_attempts"`

	// PersistTimeout bounds the storage write inside an append.
	// Default: 5s
	PersistTimeout time.Duration `yaml:"persist_timeout"`

	// VerifySchedule is a cron expression for background chain
	// verification. Empty disables scheduled verification.
	VerifySchedule string `yaml:"verify_schedule"`
}

// ArchiveConfig contains configuration for the decision detail archive.
type ArchiveConfig struct {
	// Enabled turns the archive on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database file for decision details.
	// Default: "data/archive.db"
	DBPath string `yaml:"db_path"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "meridian"
	Namespace string `yaml:"namespace"`
}
