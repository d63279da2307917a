package parser

import (
	"fmt"
	"regexp"
	"time"
)

// TimestampFormat is the human-readable form of the required timestamp format.
const TimestampFormat = "YYYY-MM-DD HH:MM:SS.ffffff"

// TimestampLayout is the Go time layout equivalent of TimestampFormat.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// timestampPattern pins every component to its exact digit count; time.Parse
// alone accepts single-digit hours.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{6}$`)

// TimestampExtractor validates and parses entry timestamps.
type TimestampExtractor struct {
	pattern *regexp.Regexp
	layout  string
}

// NewTimestampExtractor creates a new timestamp extractor.
// The pattern must match the whole value; the layout is used to parse it.
func NewTimestampExtractor(pattern *regexp.Regexp, layout string) *TimestampExtractor {
	return &TimestampExtractor{
		pattern: pattern,
		layout:  layout,
	}
}

// DefaultTimestampExtractor returns an extractor for TimestampFormat.
func DefaultTimestampExtractor() *TimestampExtractor {
	return NewTimestampExtractor(timestampPattern, TimestampLayout)
}

// Extract parses s as a timestamp. The result is in UTC.
// Returns zero time and an error if s does not match the pattern or
// names an impossible calendar value.
func (e *TimestampExtractor) Extract(s string) (time.Time, error) {
	if !e.pattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("timestamp %q does not match pattern %s", s, e.pattern)
	}

	ts, err := time.Parse(e.layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}

	return ts, nil
}
