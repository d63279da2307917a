// Package parser extracts workflow log entries from application log files.
package parser

import "time"

// Marker is the token that flags a log line as carrying a workflow log entry.
const Marker = "WFL_START"

// Defaults applied when optional integer fields are left blank.
const (
	DefaultIteration = 0
	DefaultFlag      = -999
)

// FieldCount is the number of |-delimited fields an entry must contain.
const FieldCount = 10

// Entry is a single workflow log event.
type Entry struct {
	// UserID identifies the user who ran the workflow.
	UserID string `db:"user_id" json:"user_id" validate:"max=32"`

	// Hostname is the machine the workflow ran on.
	Hostname string `db:"hostname" json:"hostname" validate:"max=64"`

	// Workflow identifies the type of job.
	Workflow string `db:"workflow" json:"workflow" validate:"max=64"`

	// Tag is a free-form qualifier for the job, such as a version.
	Tag string `db:"tag" json:"tag" validate:"max=64"`

	// StageNumber is the ordinal of the processing stage.
	StageNumber int `db:"stage_number" json:"stage_number"`

	// Stage is the name of the processing stage.
	Stage string `db:"stage" json:"stage" validate:"max=64"`

	// Iteration is the iteration number within the stage.
	Iteration int `db:"iteration" json:"iteration"`

	// Timestamp is when the event happened, with microsecond precision.
	Timestamp time.Time `db:"date_time" json:"date_time"`

	// Comment is an optional free-text note.
	Comment string `db:"comment" json:"comment" validate:"max=128"`

	// Flag is an auxiliary integer annotation. DefaultFlag means unset.
	Flag int `db:"flag" json:"flag"`
}

// MarkedLine is a log line that contains the marker token.
type MarkedLine struct {
	// Payload is the text following the first marker occurrence.
	Payload string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}
