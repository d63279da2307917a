package parser

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Parser converts marker lines into entries.
// A Parser is safe for concurrent use once constructed.
type Parser struct {
	marker         string
	enforceLengths bool
	timestamps     *TimestampExtractor
	validate       *validator.Validate
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarker overrides the marker token. Empty values are ignored.
func WithMarker(marker string) Option {
	return func(p *Parser) {
		if marker != "" {
			p.marker = marker
		}
	}
}

// WithLengthEnforcement controls whether text fields are checked against
// their column lengths at parse time. Enabled by default; when disabled,
// over-long values are left for the store to reject.
func WithLengthEnforcement(enabled bool) Option {
	return func(p *Parser) {
		p.enforceLengths = enabled
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		marker:         Marker,
		enforceLengths: true,
		timestamps:     DefaultTimestampExtractor(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.enforceLengths {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return fld.Tag.Get("db")
		})
		p.validate = v
	}

	return p
}

// Marker returns the marker token this parser looks for.
func (p *Parser) Marker() string {
	return p.marker
}

// Payload returns the text after the first marker occurrence in line.
// ok is false if the line has no marker.
func (p *Parser) Payload(line string) (payload string, ok bool) {
	idx := strings.Index(line, p.marker)
	if idx < 0 {
		return "", false
	}
	return line[idx+len(p.marker):], true
}

// ParseLine parses a full log line. Lines without the marker return
// ok=false and no error; text before the marker is ignored.
func (p *Parser) ParseLine(line string, lineNum int) (entry *Entry, ok bool, err error) {
	payload, ok := p.Payload(line)
	if !ok {
		return nil, false, nil
	}
	entry, err = p.ParseEntry(payload, lineNum)
	return entry, true, err
}

// ParseEntry parses the text following the marker.
// Any failure is returned as a *ParseError.
func (p *Parser) ParseEntry(raw string, lineNum int) (*Entry, error) {
	fields := strings.Split(raw, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if len(fields) != FieldCount {
		return nil, &ParseError{
			Kind:     FieldCountMismatch,
			Line:     lineNum,
			Expected: FieldCount,
			Found:    len(fields),
		}
	}

	entry := &Entry{
		UserID:   fields[0],
		Hostname: fields[1],
		Workflow: fields[2],
		Tag:      fields[3],
		Stage:    fields[5],
		Comment:  fields[8],
	}

	var err error
	if entry.StageNumber, err = parseInteger(fields[4], "stage_number", lineNum); err != nil {
		return nil, err
	}

	entry.Iteration = DefaultIteration
	if fields[6] != "" {
		if entry.Iteration, err = parseInteger(fields[6], "iteration", lineNum); err != nil {
			return nil, err
		}
	}

	entry.Timestamp, err = p.timestamps.Extract(fields[7])
	if err != nil {
		return nil, &ParseError{
			Kind:   TimestampFieldInvalid,
			Line:   lineNum,
			Field:  "timestamp",
			Raw:    fields[7],
			Format: TimestampFormat,
		}
	}

	entry.Flag = DefaultFlag
	if fields[9] != "" {
		if entry.Flag, err = parseInteger(fields[9], "flag", lineNum); err != nil {
			return nil, err
		}
	}

	if p.enforceLengths {
		if err := p.checkLengths(entry, lineNum); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// Validate applies the same length rules as ParseEntry to an entry built
// elsewhere. It is a no-op when length enforcement is disabled.
func (p *Parser) Validate(entry *Entry) error {
	if !p.enforceLengths {
		return nil
	}
	return p.checkLengths(entry, 0)
}

// checkLengths reports the first text field that exceeds its column length.
func (p *Parser) checkLengths(entry *Entry, lineNum int) error {
	err := p.validate.Struct(entry)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("line %d: validating entry: %w", lineNum, err)
	}

	fe := verrs[0]
	limit, _ := strconv.Atoi(fe.Param())
	return &ParseError{
		Kind:  FieldTooLong,
		Line:  lineNum,
		Field: fe.Field(),
		Raw:   fmt.Sprint(fe.Value()),
		Limit: limit,
	}
}

func parseInteger(s, field string, lineNum int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{
			Kind:  IntegerFieldInvalid,
			Line:  lineNum,
			Field: field,
			Raw:   s,
		}
	}
	return n, nil
}
