// Package store persists workflow log entries in a relational table.
//
// Two backends are provided: SQLiteStore for local files and PostgresStore
// for a shared server. Both create the same workflow_logs table and accept
// parameterized queries only.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/parser"
)

// TableName is the table holding one row per entry.
const TableName = "workflow_logs"

// Store is a backing store for workflow log entries.
type Store interface {
	// Backend reports which implementation this is.
	Backend() config.Backend

	// TableExists reports whether the workflow_logs table is present.
	TableExists(ctx context.Context) (bool, error)

	// CreateTable creates the workflow_logs table. It fails if the table exists.
	CreateTable(ctx context.Context) error

	// DropTable removes the workflow_logs table. It fails if the table is absent.
	DropTable(ctx context.Context) error

	// DeleteAll removes every row and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)

	// InsertBatch writes all entries in a single transaction.
	// Either every entry is stored or none is.
	InsertBatch(ctx context.Context, entries []parser.Entry) error

	// Insert writes one entry immediately.
	Insert(ctx context.Context, entry parser.Entry) error

	// Query returns the rows matching f, oldest event first.
	Query(ctx context.Context, f Filter) ([]Record, error)

	Close() error
}

// Record is a stored row as read back from the table.
type Record struct {
	ID         int64        `json:"id"`
	Entry      parser.Entry `json:"entry"`
	InsertedAt time.Time    `json:"inserted_at"`
}

// OpError wraps a driver error with the store operation that failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// scanner is satisfied by *sql.Rows and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var r Record
	e := &r.Entry
	err := s.Scan(&r.ID, &e.UserID, &e.Hostname, &e.Workflow, &e.Tag,
		&e.StageNumber, &e.Stage, &e.Iteration, &e.Timestamp,
		&e.Comment, &e.Flag, &r.InsertedAt)
	if err != nil {
		return Record{}, err
	}
	e.Timestamp = e.Timestamp.UTC()
	r.InsertedAt = r.InsertedAt.UTC()
	return r, nil
}

func entryValues(e *parser.Entry, ts any) []any {
	return []any{
		e.UserID, e.Hostname, e.Workflow, e.Tag, e.StageNumber,
		e.Stage, e.Iteration, ts, e.Comment, e.Flag,
	}
}
