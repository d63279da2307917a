package output

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wflogger/wflogger/pkg/parser"
	"github.com/wflogger/wflogger/pkg/store"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatSummary(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatSummary(report *Report, w io.Writer) error {
	s := report.Summary
	var err error
	if report.Metadata.DryRun {
		_, err = fmt.Fprintf(w, "Checked %d entries total in %d files, %d files would fail to ingest\n",
			s.EntriesIngested, s.FilesIngested+s.FilesFailed, s.FilesFailed)
	} else {
		_, err = fmt.Fprintf(w, "Ingested %d entries total from %d files, failed to ingest %d files\n",
			s.EntriesIngested, s.FilesIngested, s.FilesFailed)
	}
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	title := "Ingest Report"
	if report.Metadata.DryRun {
		title = "Check Report"
	}
	fmt.Fprintf(w, "=== wflogger %s ===\n", title)
	fmt.Fprintln(w)

	for _, pattern := range report.Metadata.Unmatched {
		fmt.Fprintf(w, "[SKIPPED] %s: no files match\n", pattern)
	}

	for i := range report.Files {
		f.formatFile(&report.Files[i], w)
	}

	fmt.Fprintln(w, "---")
	if err := f.formatSummary(report, w); err != nil {
		return err
	}

	if f.opts.Verbose {
		if report.Summary.TableRows >= 0 {
			fmt.Fprintf(w, "Table rows: %d\n", report.Summary.TableRows)
		}
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatFile(file *FileReport, w io.Writer) {
	switch file.Status {
	case StatusFailed:
		fmt.Fprintf(w, "[FAILED] %s: %s\n", file.Path, file.Error)
	default:
		fmt.Fprintf(w, "[OK] %s: %d entries\n", file.Path, file.Entries)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "  batch: %s, lines read: %d\n", file.BatchID, file.Lines)
		if d := file.Diagnostic; d != nil && d.Raw != "" {
			fmt.Fprintf(w, "  offending value: %q\n", d.Raw)
		}
	}
}

// FormatRecords renders query results as an aligned table.
func (f *TextFormatter) FormatRecords(ctx context.Context, records []store.Record, w io.Writer) error {
	if !f.opts.Quiet {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE_TIME\tUSER\tHOST\tWORKFLOW\tTAG\tSTAGE#\tSTAGE\tITER\tFLAG\tCOMMENT")
		for _, r := range records {
			e := r.Entry
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\t%s\n",
				r.ID, e.Timestamp.Format(parser.TimestampLayout), e.UserID, e.Hostname,
				e.Workflow, e.Tag, e.StageNumber, e.Stage, e.Iteration, e.Flag, e.Comment)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d rows\n", len(records))
	return err
}
