package store

import (
	"context"
	"fmt"

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/credentials"
)

// Open connects to the backend selected by cfg. For PostgreSQL the
// connection string comes from provider; a nil provider reads
// cfg.CredentialsFile (or ~/.wflogger). Credential problems are returned
// before any connection is attempted.
func Open(ctx context.Context, cfg config.DatabaseConfig, provider credentials.Provider) (Store, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendPostgres, "":
		if provider == nil {
			fp, err := credentials.NewFileProvider(cfg.CredentialsFile)
			if err != nil {
				return nil, err
			}
			provider = fp
		}
		conn, err := provider.ConnString()
		if err != nil {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}
		s, err := OpenPostgres(ctx, conn)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
