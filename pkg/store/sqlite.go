package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/parser"
)

// SQLite DSN parameters.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

// SQLiteStore keeps entries in a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
// The pool is limited to a single connection so writes never contend.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("open sqlite: empty path")
	}

	db, err := sql.Open("sqlite3", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// buildDSN constructs a SQLite DSN with hardened parameters.
func buildDSN(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_synchronous", defaultSynchronous)
	params.Set("_txlock", "immediate")

	return path + "?" + params.Encode()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Backend() config.Backend {
	return config.BackendSQLite
}

func (s *SQLiteStore) TableExists(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", TableName).Scan(&n)
	if err != nil {
		return false, opErr("table exists", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteDialect.createTableSQL())
	return opErr("create table", err)
}

func (s *SQLiteStore) DropTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DROP TABLE "+TableName)
	return opErr("drop table", err)
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+TableName)
	if err != nil {
		return 0, opErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, opErr("delete", err)
	}
	return n, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+TableName).Scan(&n); err != nil {
		return 0, opErr("count", err)
	}
	return n, nil
}

func (s *SQLiteStore) InsertBatch(ctx context.Context, entries []parser.Entry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return opErr("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, sqliteDialect.insertSQL())
	if err != nil {
		return opErr("prepare insert", err)
	}
	defer stmt.Close()

	for i := range entries {
		e := &entries[i]
		if _, err = stmt.ExecContext(ctx, entryValues(e, sqliteDialect.timeValue(e.Timestamp))...); err != nil {
			return opErr("insert", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return opErr("commit", err)
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, entry parser.Entry) error {
	_, err := s.db.ExecContext(ctx, sqliteDialect.insertSQL(),
		entryValues(&entry, sqliteDialect.timeValue(entry.Timestamp))...)
	return opErr("insert", err)
}

func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]Record, error) {
	where, args := f.build(sqliteDialect)
	rows, err := s.db.QueryContext(ctx, sqliteDialect.selectSQL()+where, args...)
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

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
