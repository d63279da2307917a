package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/logging"
	"github.com/wflogger/wflogger/pkg/parser"
	"github.com/wflogger/wflogger/pkg/store"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// StoreOptions are the flags shared by every command that touches a store.
type StoreOptions struct {
	ConfigFile string
	SQLitePath string
	Verbose    bool
}

func addStoreFlags(cmd *cobra.Command, opts *StoreOptions) {
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "Configuration file (YAML)")
	cmd.Flags().StringVar(&opts.SQLitePath, "sqlite-path", "", "Write to a SQLite database at this path instead of PostgreSQL")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log progress messages to stderr")
}

// loadConfig loads the optional config file and applies flag overrides
// ahead of validation.
func loadConfig(ctx context.Context, opts *StoreOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, opts.ConfigFile, flagOverrides(opts))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func flagOverrides(opts *StoreOptions) config.Override {
	return func(cfg *config.Config) {
		if opts.SQLitePath != "" {
			cfg.Database.Backend = config.BackendSQLite
			cfg.Database.SQLitePath = opts.SQLitePath
		}
		if opts.Verbose && logging.ParseLevel(cfg.Logging.Level) > log.InfoLevel {
			cfg.Logging.Level = "info"
		}
	}
}

func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	return logging.New(cfg.Logging, w)
}

func newParser(cfg *config.Config) *parser.Parser {
	return parser.New(
		parser.WithMarker(cfg.Ingest.Marker),
		parser.WithLengthEnforcement(cfg.Ingest.EnforceLengths),
	)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	s, err := store.Open(ctx, cfg.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Backend, err)
	}
	return s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
