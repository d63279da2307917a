package output

import (
	"context"
	"fmt"
	"io"

	"github.com/wflogger/wflogger/pkg/store"
)

// Formatter renders ingest reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// FormatRecords renders stored rows returned by a query.
	FormatRecords(ctx context.Context, records []store.Record, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds batch ids, line counts and timing.
	Verbose bool

	// Quiet prints only the summary.
	Quiet bool
}

// NewFormatter returns the formatter for name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text or json)", name)
	}
}
