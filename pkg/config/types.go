// Package config provides configuration loading and validation for wflogger.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Database DatabaseConfig  `yaml:"database"`
	Ingest   IngestConfig    `yaml:"ingest"`
	Logging  LoggingConfig   `yaml:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// Backend names a backing store implementation.
type Backend string

const (
	// BackendPostgres is the networked production store.
	BackendPostgres Backend = "postgres"
	// BackendSQLite is the embedded store, useful for local testing.
	BackendSQLite Backend = "sqlite"
)

// DatabaseConfig selects and locates the backing store.
type DatabaseConfig struct {
	// Backend is postgres (default) or sqlite.
	Backend Backend `yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path,omitempty"`

	// CredentialsFile holds the PostgreSQL connection string.
	// Defaults to ~/.wflogger. Must have mode 0400.
	CredentialsFile string `yaml:"credentials_file,omitempty"`

	// ConnectTimeout bounds opening and pinging the store.
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
}

// IngestConfig controls how log lines are recognized and parsed.
type IngestConfig struct {
	// Marker is the token that introduces an entry. Defaults to WFL_START.
	Marker string `yaml:"marker"`

	// EnforceLengths rejects text fields longer than their column at
	// parse time instead of leaving it to the store.
	EnforceLengths bool `yaml:"enforce_lengths"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	// Level is trace, debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is console or json.
	Format string `yaml:"format"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnFailure fires only when at least one file failed (default).
	WebhookTriggerOnFailure WebhookTrigger = "on_failure"
	// WebhookTriggerAlways fires after every ingest run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending ingest reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	// ${VAR} and $VAR are expanded from the environment.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
