// Package output provides formatting for ingest reports and query results.
package output

import (
	"errors"
	"time"

	"github.com/wflogger/wflogger/pkg/ingestor"
	"github.com/wflogger/wflogger/pkg/parser"
)

// File statuses.
const (
	StatusIngested = "ingested"
	StatusChecked  = "ok"
	StatusFailed   = "failed"
)

// Report is the complete ingest output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Files has one entry per file, in processing order.
	Files []FileReport `json:"files"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	FilesIngested   int `json:"files_ingested"`
	FilesFailed     int `json:"files_failed"`
	EntriesIngested int `json:"entries_ingested"`

	// TableRows is the store row count after the run, or -1 if unknown.
	TableRows int64 `json:"table_rows"`
}

// FileReport describes one file.
type FileReport struct {
	Path    string `json:"path"`
	BatchID string `json:"batch_id"`
	Status  string `json:"status"`
	Entries int    `json:"entries"`
	Lines   int    `json:"lines"`
	Error   string `json:"error,omitempty"`

	// Diagnostic is set when the file was rejected for a malformed entry.
	Diagnostic *parser.ParseError `json:"diagnostic,omitempty"`
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Backend is the store backend name.
	Backend string `json:"backend,omitempty"`

	// Patterns are the path patterns given on the command line.
	Patterns []string `json:"patterns"`

	// Unmatched lists patterns that matched no files.
	Unmatched []string `json:"unmatched,omitempty"`

	// DryRun is true when files were only checked.
	DryRun bool `json:"dry_run"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// NewReport builds a Report from per-file results. With dryRun the
// successful files are marked as checked rather than ingested.
func NewReport(results []*ingestor.FileResult, dryRun bool) *Report {
	report := &Report{
		Files:    make([]FileReport, 0, len(results)),
		Summary:  Summary{TableRows: -1},
		Metadata: Metadata{DryRun: dryRun},
	}

	for _, res := range results {
		fr := FileReport{
			Path:    res.Path,
			BatchID: res.BatchID.String(),
			Entries: res.Entries,
			Lines:   res.Lines,
		}

		if res.Err != nil {
			fr.Status = StatusFailed
			fr.Error = res.Err.Error()
			var pe *parser.ParseError
			if errors.As(res.Err, &pe) {
				fr.Diagnostic = pe
			}
			report.Summary.FilesFailed++
		} else {
			fr.Status = StatusIngested
			if dryRun {
				fr.Status = StatusChecked
			}
			report.Summary.FilesIngested++
			report.Summary.EntriesIngested += res.Entries
		}

		report.Files = append(report.Files, fr)
	}

	return report
}

// ApplyStats replaces the file and entry counts with the ingestor's own
// counters.
func (r *Report) ApplyStats(st ingestor.Stats) {
	r.Summary.FilesIngested = st.FilesIngested
	r.Summary.FilesFailed = st.FilesFailed
	r.Summary.EntriesIngested = st.EntriesIngested
}

// HasFailures returns true if any file failed.
func (r *Report) HasFailures() bool {
	return r.Summary.FilesFailed > 0
}
