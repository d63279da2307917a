package parser

import "fmt"

// ErrorKind classifies why an entry could not be parsed.
type ErrorKind string

const (
	// FieldCountMismatch means the line did not split into FieldCount fields.
	FieldCountMismatch ErrorKind = "field_count_mismatch"

	// IntegerFieldInvalid means an integer field held non-numeric content.
	IntegerFieldInvalid ErrorKind = "integer_field_invalid"

	// TimestampFieldInvalid means the timestamp did not match TimestampFormat.
	TimestampFieldInvalid ErrorKind = "timestamp_field_invalid"

	// FieldTooLong means a text field exceeded its column length.
	FieldTooLong ErrorKind = "field_too_long"
)

// ParseError describes exactly where and why an entry was rejected.
type ParseError struct {
	Kind ErrorKind `json:"kind"`

	// Line is the 1-based line number of the rejected line.
	Line int `json:"line"`

	// Field names the offending field. Empty for FieldCountMismatch.
	Field string `json:"field,omitempty"`

	// Raw is the offending field value as it appeared in the line.
	Raw string `json:"raw,omitempty"`

	// Expected and Found are field counts for FieldCountMismatch.
	Expected int `json:"expected,omitempty"`
	Found    int `json:"found,omitempty"`

	// Format is the required timestamp format for TimestampFieldInvalid.
	Format string `json:"format,omitempty"`

	// Limit is the maximum length for FieldTooLong.
	Limit int `json:"limit,omitempty"`
}

func (e *ParseError) Error() string {
	msg := e.reason()
	if e.Line <= 0 {
		return msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, msg)
}

func (e *ParseError) reason() string {
	switch e.Kind {
	case FieldCountMismatch:
		return fmt.Sprintf("line does not contain the required %d |-delimited fields, found %d fields",
			e.Expected, e.Found)
	case IntegerFieldInvalid:
		return fmt.Sprintf("could not parse field %s value %q as integer", e.Field, e.Raw)
	case TimestampFieldInvalid:
		return fmt.Sprintf("could not parse field %s value %q as datetime with format %s",
			e.Field, e.Raw, e.Format)
	case FieldTooLong:
		return fmt.Sprintf("field %s is longer than %d characters", e.Field, e.Limit)
	default:
		return string(e.Kind)
	}
}
