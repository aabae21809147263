package config

import "fmt"

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address cannot be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if c.Policy.Path == "" {
		return fmt.Errorf("policy.path cannot be empty")
	}
	if c.Policy.DebounceInterval < 0 {
		return fmt.Errorf("policy.debounce_interval cannot be negative")
	}

	if c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger.db_path cannot be empty")
	}
	if c.Ledger.SigningKeyPath == "" {
		return fmt.Errorf("ledger.signing_key_path cannot be empty")
	}
	if c.Ledger.MaxAppendAttempts < 1 {
		return fmt.Errorf("ledger.max_append_attempts must be at least 1")
	}
	if c.Ledger.PersistTimeout <= 0 {
		return fmt.Errorf("ledger.persist_timeout must be positive")
	}

	if c.Archive.Enabled && c.Archive.DBPath == "" {
		return fmt.Errorf("archive.db_path cannot be empty when archive is enabled")
	}

	switch c.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error")
	}
	switch c.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be json or text")
	}

	return nil
}
