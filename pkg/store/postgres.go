package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/parser"
)

// PostgresStore keeps entries in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects using a libpq connection string or URL and pings
// the server before returning.
func OpenPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 4
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Backend() config.Backend {
	return config.BackendPostgres
}

func (s *PostgresStore) TableExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = $1)`, TableName).Scan(&exists)
	if err != nil {
		return false, opErr("table exists", err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresDialect.createTableSQL())
	return opErr("create table", err)
}

func (s *PostgresStore) DropTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "DROP TABLE "+TableName)
	return opErr("drop table", err)
}

func (s *PostgresStore) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM "+TableName)
	if err != nil {
		return 0, opErr("delete", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+TableName).Scan(&n); err != nil {
		return 0, opErr("count", err)
	}
	return n, nil
}

// InsertBatch streams the entries with COPY inside one transaction.
func (s *PostgresStore) InsertBatch(ctx context.Context, entries []parser.Entry) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{TableName}, Columns,
			pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
				e := &entries[i]
				return entryValues(e, postgresDialect.timeValue(e.Timestamp)), nil
			}))
		if err != nil {
			return opErr("copy", err)
		}
		if n != int64(len(entries)) {
			return opErr("copy", fmt.Errorf("copied %d of %d rows", n, len(entries)))
		}
		return nil
	})
}

func (s *PostgresStore) Insert(ctx context.Context, entry parser.Entry) error {
	_, err := s.pool.Exec(ctx, postgresDialect.insertSQL(),
		entryValues(&entry, postgresDialect.timeValue(entry.Timestamp))...)
	return opErr("insert", err)
}

func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]Record, error) {
	where, args := f.build(postgresDialect)
	rows, err := s.pool.Query(ctx, postgresDialect.selectSQL()+where, args...)
	if err != nil {
		return nil, opErr("query", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, opErr("scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("query", err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// withTx runs fn in a transaction, committing on success and rolling back
// on error or panic.
func (s *PostgresStore) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return opErr("begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return opErr("commit", err)
	}
	return nil
}
