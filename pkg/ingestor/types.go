package ingestor

import (
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyBatch is returned for a file that holds no marker lines.
var ErrEmptyBatch = errors.New("no entries found in file")

// Outcome is the result of a lifecycle operation.
type Outcome string

const (
	// OK means the operation ran and succeeded.
	OK Outcome = "ok"

	// AlreadyExisted means PrepareDatabase found the table in place and did nothing.
	AlreadyExisted Outcome = "already_existed"

	// Failed means the store rejected the operation. Err holds the cause.
	Failed Outcome = "failed"
)

// Result reports a lifecycle operation.
type Result struct {
	Outcome Outcome

	// Rows is the number of rows deleted by ResetDatabase.
	Rows int64

	Err error
}

// Ok reports whether the operation left the store in the requested state.
func (r Result) Ok() bool {
	return r.Outcome == OK || r.Outcome == AlreadyExisted
}

// Stats are cumulative counters for one Ingestor.
type Stats struct {
	FilesIngested   int `json:"files_ingested"`
	FilesFailed     int `json:"files_failed"`
	EntriesIngested int `json:"entries_ingested"`
}

// FileResult describes the ingestion of one file.
type FileResult struct {
	Path string

	// BatchID correlates log lines emitted for this file.
	BatchID uuid.UUID

	// Entries is the number of rows committed. Zero on failure.
	Entries int

	// Lines is the number of lines read before the scan stopped.
	Lines int

	// Err is nil on success. Otherwise it is a *parser.ParseError,
	// ErrEmptyBatch, or a wrapped I/O or store error.
	Err error
}

// Ok reports whether the file was committed.
func (r *FileResult) Ok() bool {
	return r.Err == nil
}
