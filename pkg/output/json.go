package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/wflogger/wflogger/pkg/store"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := f.encoder(w)
	if f.opts.Quiet {
		return encoder.Encode(report.Summary)
	}
	return encoder.Encode(report)
}

// FormatRecords renders query results as a JSON array.
func (f *JSONFormatter) FormatRecords(ctx context.Context, records []store.Record, w io.Writer) error {
	if records == nil {
		records = []store.Record{}
	}
	if f.opts.Quiet {
		return f.encoder(w).Encode(map[string]int{"count": len(records)})
	}
	return f.encoder(w).Encode(records)
}

func (f *JSONFormatter) encoder(w io.Writer) *json.Encoder {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder
}
