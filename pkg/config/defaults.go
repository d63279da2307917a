package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultBackend        = BackendPostgres
	DefaultMarker         = "WFL_START"
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "console"
	DefaultConnectTimeout = 10 * time.Second
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvBackend         = "WFLOGGER_BACKEND"
	EnvSQLitePath      = "WFLOGGER_SQLITE_PATH"
	EnvCredentialsFile = "WFLOGGER_CREDENTIALS"
	EnvLogLevel        = "WFLOGGER_LOG_LEVEL"
	EnvMarker          = "WFLOGGER_MARKER"
	EnvEnforceLengths  = "WFLOGGER_ENFORCE_LENGTHS"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Backend:        DefaultBackend,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Ingest: IngestConfig{
			Marker:         DefaultMarker,
			EnforceLengths: true,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	// A sqlite path on its own implies the sqlite backend
	if path := os.Getenv(EnvSQLitePath); path != "" {
		c.Database.SQLitePath = path
		c.Database.Backend = BackendSQLite
	}
	if backend := os.Getenv(EnvBackend); backend != "" {
		c.Database.Backend = Backend(backend)
	}
	if creds := os.Getenv(EnvCredentialsFile); creds != "" {
		c.Database.CredentialsFile = creds
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if marker := os.Getenv(EnvMarker); marker != "" {
		c.Ingest.Marker = marker
	}
	if v := os.Getenv(EnvEnforceLengths); v != "" {
		if enforce, err := strconv.ParseBool(v); err == nil {
			c.Ingest.EnforceLengths = enforce
		}
	}
}
