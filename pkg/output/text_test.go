package output

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wflogger/wflogger/pkg/ingestor"
	"github.com/wflogger/wflogger/pkg/parser"
	"github.com/wflogger/wflogger/pkg/store"
)

func createTestReport() *Report {
	results := []*ingestor.FileResult{
		{Path: "logs/a.log", BatchID: uuid.New(), Entries: 5, Lines: 7},
		{
			Path:    "logs/b.log",
			BatchID: uuid.New(),
			Lines:   4,
			Err: &parser.ParseError{
				Kind: parser.TimestampFieldInvalid, Line: 4, Field: "timestamp",
				Raw: "202-01-01 12:25:02.891922", Format: parser.TimestampFormat,
			},
		},
		{Path: "logs/c.log", BatchID: uuid.New(), Entries: 6, Lines: 9},
	}
	report := NewReport(results, false)
	report.Summary.TableRows = 11
	report.Metadata.Patterns = []string{"logs/*.log"}
	report.Metadata.Duration = 1500 * time.Millisecond
	return report
}

func TestNewReport(t *testing.T) {
	report := createTestReport()

	want := Summary{FilesIngested: 2, FilesFailed: 1, EntriesIngested: 11, TableRows: 11}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}
	if !report.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}
	if report.Files[1].Status != StatusFailed || report.Files[1].Diagnostic == nil {
		t.Errorf("Files[1] = %+v", report.Files[1])
	}
	if report.Files[0].Status != StatusIngested {
		t.Errorf("Files[0].Status = %q", report.Files[0].Status)
	}
}

func TestNewReport_DryRun(t *testing.T) {
	report := NewReport([]*ingestor.FileResult{
		{Path: "a.log", Entries: 3},
		{Path: "b.log", Err: ingestor.ErrEmptyBatch},
	}, true)

	if report.Files[0].Status != StatusChecked {
		t.Errorf("Status = %q, want %q", report.Files[0].Status, StatusChecked)
	}
	if report.Files[1].Diagnostic != nil {
		t.Error("Diagnostic set for non-parse error")
	}
	if report.Summary.TableRows != -1 {
		t.Errorf("TableRows = %d, want -1", report.Summary.TableRows)
	}
}

func TestReport_ApplyStats(t *testing.T) {
	report := createTestReport()
	report.ApplyStats(ingestor.Stats{FilesIngested: 4, FilesFailed: 0, EntriesIngested: 20})

	want := Summary{FilesIngested: 4, FilesFailed: 0, EntriesIngested: 20, TableRows: 11}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}
	if report.HasFailures() {
		t.Error("HasFailures() = true, want the counters to decide")
	}
	if len(report.Files) != 3 {
		t.Errorf("Files changed: got %d, want 3", len(report.Files))
	}
}

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"", "text", "json"} {
		if _, err := NewFormatter(name, FormatOptions{}); err != nil {
			t.Errorf("NewFormatter(%q) error = %v", name, err)
		}
	}
	if _, err := NewFormatter("xml", FormatOptions{}); err == nil {
		t.Error("NewFormatter(xml) expected error")
	}
}

func TestTextFormatter_Format_Empty(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := NewReport(nil, false)

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "wflogger Ingest Report") {
		t.Error("Output missing header")
	}
	if !strings.Contains(out, "Ingested 0 entries total from 0 files, failed to ingest 0 files") {
		t.Errorf("Output missing summary: %s", out)
	}
}

func TestTextFormatter_Format_WithFailures(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[OK] logs/a.log: 5 entries",
		"[FAILED] logs/b.log: line 4: could not parse field timestamp",
		"Ingested 11 entries total from 2 files, failed to ingest 1 files",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "batch:") {
		t.Error("Non-verbose output contains batch ids")
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "Ingested 11 entries total from 2 files, failed to ingest 1 files\n"
	if buf.String() != want {
		t.Errorf("Quiet output = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})
	report := createTestReport()
	report.Metadata.Unmatched = []string{"missing/*.log"}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[SKIPPED] missing/*.log",
		"batch: " + report.Files[0].BatchID,
		"lines read: 7",
		`offending value: "202-01-01 12:25:02.891922"`,
		"Table rows: 11",
		"Duration: 1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Verbose output missing %q:\n%s", want, out)
		}
	}
}

func TestTextFormatter_Format_DryRun(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := NewReport([]*ingestor.FileResult{
		{Path: "a.log", Entries: 3},
		{Path: "b.log", Err: errors.New("opening log file b.log: no such file")},
	}, true)

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Check Report") {
		t.Error("Output missing check header")
	}
	if !strings.Contains(out, "Checked 3 entries total in 2 files, 1 files would fail to ingest") {
		t.Errorf("Output missing dry-run summary:\n%s", out)
	}
}

func TestTextFormatter_FormatRecords(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	ts := time.Date(2022, 1, 1, 12, 23, 4, 342912000, time.UTC)
	records := []store.Record{{
		ID: 1,
		Entry: parser.Entry{
			UserID: "fred", Hostname: "compute1", Workflow: "modeler.py", Tag: "v14.3",
			StageNumber: 1, Stage: "prep", Timestamp: ts, Comment: "Lorem Ipsum", Flag: parser.DefaultFlag,
		},
	}}

	var buf bytes.Buffer
	if err := f.FormatRecords(context.Background(), records, &buf); err != nil {
		t.Fatalf("FormatRecords() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"DATE_TIME", "2022-01-01 12:23:04.342912", "modeler.py", "-999", "Lorem Ipsum", "1 rows"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}
