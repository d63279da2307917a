package parser

import (
	"context"
)

// LineSource provides an iterator over the marker lines of a log file.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next line containing the marker.
	// Returns io.EOF when no more lines are available.
	// Lines without the marker are skipped.
	Next(ctx context.Context) (*MarkedLine, error)

	// Close releases any resources held by the source.
	Close() error
}
