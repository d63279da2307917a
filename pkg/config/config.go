package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Override adjusts a configuration before it is validated.
type Override func(*Config)

// Load reads and validates a configuration file.
// Environment overrides are applied after the file is parsed, then each
// of overrides in order.
func Load(_ context.Context, path string, overrides ...Override) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg, overrides)
}

// LoadOrDefault loads path if it is non-empty, otherwise returns the
// validated defaults with environment overrides and overrides applied.
func LoadOrDefault(ctx context.Context, path string, overrides ...Override) (*Config, error) {
	if path != "" {
		return Load(ctx, path, overrides...)
	}
	return finish(DefaultConfig(), overrides)
}

func finish(cfg *Config, overrides []Override) (*Config, error) {
	cfg.applyEnvironmentOverrides()
	for _, o := range overrides {
		o(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults.
func Validate(cfg *Config) error {
	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if strings.TrimSpace(cfg.Ingest.Marker) == "" {
		return errors.New("ingest.marker: must not be empty")
	}
	if strings.Contains(cfg.Ingest.Marker, "|") {
		return errors.New("ingest.marker: must not contain the | delimiter")
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateDatabase(db *DatabaseConfig) error {
	switch db.Backend {
	case "":
		db.Backend = DefaultBackend
	case BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("invalid backend %q (must be postgres or sqlite)", db.Backend)
	}

	if db.Backend == BackendSQLite && db.SQLitePath == "" {
		return errors.New("sqlite_path is required for the sqlite backend")
	}

	if db.ConnectTimeout <= 0 {
		db.ConnectTimeout = DefaultConnectTimeout
	}

	return nil
}

func validateLogging(l *LoggingConfig) error {
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	switch strings.ToLower(l.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid level %q (must be trace, debug, info, warn, or error)", l.Level)
	}

	if l.Format == "" {
		l.Format = DefaultLogFormat
	}
	switch l.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid format %q (must be console or json)", l.Format)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnFailure
	case WebhookTriggerOnFailure, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_failure, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
