package config

import "time"

// Default returns a configuration populated with defaults. Loading
// overlays the YAML file on top of these values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   "127.0.0.1:8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Policy: PolicyConfig{
			Path:             "policies/policy.yaml",
			Watch:            true,
			DebounceInterval: 100 * time.Millisecond,
		},
		Ledger: LedgerConfig{
			DBPath:            "data/ledger.db",
			MaxAppendAttempts: 3,
			PersistTimeout:    5 * time.Second,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			DBPath:  "data/archive.db",
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "meridian",
			},
		},
	}
}
