package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseEntry(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		raw  string
		want *Entry
	}{
		{
			name: "all fields",
			raw:  " fred | compute1 | modeler.py | v14.3 | 2 | model | 3 | 2022-01-01 12:28:05.782933 | slow run | 11",
			want: &Entry{
				UserID:      "fred",
				Hostname:    "compute1",
				Workflow:    "modeler.py",
				Tag:         "v14.3",
				StageNumber: 2,
				Stage:       "model",
				Iteration:   3,
				Timestamp:   time.Date(2022, 1, 1, 12, 28, 5, 782933000, time.UTC),
				Comment:     "slow run",
				Flag:        11,
			},
		},
		{
			name: "blank optional fields take defaults",
			raw:  " fred | compute1 | modeler.py | v14.3 | 1 | prep |  | 2022-01-01 12:23:04.342912 ||",
			want: &Entry{
				UserID:      "fred",
				Hostname:    "compute1",
				Workflow:    "modeler.py",
				Tag:         "v14.3",
				StageNumber: 1,
				Stage:       "prep",
				Iteration:   DefaultIteration,
				Timestamp:   time.Date(2022, 1, 1, 12, 23, 4, 342912000, time.UTC),
				Comment:     "",
				Flag:        DefaultFlag,
			},
		},
		{
			name: "irregular spacing",
			raw:  "fred|compute1|modeler.py |v14.3 |2| model |3|2022-01-01 12:28:05.782933|Lorem Ipsum|",
			want: &Entry{
				UserID:      "fred",
				Hostname:    "compute1",
				Workflow:    "modeler.py",
				Tag:         "v14.3",
				StageNumber: 2,
				Stage:       "model",
				Iteration:   3,
				Timestamp:   time.Date(2022, 1, 1, 12, 28, 5, 782933000, time.UTC),
				Comment:     "Lorem Ipsum",
				Flag:        DefaultFlag,
			},
		},
		{
			name: "negative integers",
			raw:  "u | h | w | t | -1 | s | -2 | 2022-01-01 12:28:05.000001 | | -5",
			want: &Entry{
				UserID:      "u",
				Hostname:    "h",
				Workflow:    "w",
				Tag:         "t",
				StageNumber: -1,
				Stage:       "s",
				Iteration:   -2,
				Timestamp:   time.Date(2022, 1, 1, 12, 28, 5, 1000, time.UTC),
				Flag:        -5,
			},
		},
		{
			name: "empty text fields are allowed",
			raw:  " |  |  |  | 7 |  | 0 | 2022-01-01 12:28:05.782933 |  | ",
			want: &Entry{
				StageNumber: 7,
				Timestamp:   time.Date(2022, 1, 1, 12, 28, 5, 782933000, time.UTC),
				Flag:        DefaultFlag,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseEntry(tt.raw, 1)
			if err != nil {
				t.Fatalf("ParseEntry() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseEntry() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseEntry_Errors(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		raw  string
		line int
		want ParseError
	}{
		{
			name: "too few fields",
			raw:  " fred | compute1 | modeler.py | v14.3 | 1 | prep | 0 | 2022-01-01 12:23:04.342912 |",
			line: 3,
			want: ParseError{Kind: FieldCountMismatch, Line: 3, Expected: 10, Found: 9},
		},
		{
			name: "too many fields",
			raw:  " fred | compute1 | modeler.py | v14.3 | 1 | prep | 0 | 2022-01-01 12:23:04.342912 ||||",
			line: 4,
			want: ParseError{Kind: FieldCountMismatch, Line: 4, Expected: 10, Found: 12},
		},
		{
			name: "empty payload",
			raw:  "",
			line: 1,
			want: ParseError{Kind: FieldCountMismatch, Line: 1, Expected: 10, Found: 1},
		},
		{
			name: "non-numeric stage number",
			raw:  " fred | compute1 | modeler.py | v14.3 | s2 | model | 2 | 2022-01-01 12:25:02.891922 ||",
			line: 4,
			want: ParseError{Kind: IntegerFieldInvalid, Line: 4, Field: "stage_number", Raw: "s2"},
		},
		{
			name: "blank stage number",
			raw:  " fred | compute1 | modeler.py | v14.3 |  | model | 2 | 2022-01-01 12:25:02.891922 ||",
			line: 2,
			want: ParseError{Kind: IntegerFieldInvalid, Line: 2, Field: "stage_number", Raw: ""},
		},
		{
			name: "fractional iteration",
			raw:  " fred | compute1 | modeler.py | v14.3 | 2 | model | 2.5 | 2022-01-01 12:25:02.891922 ||",
			line: 5,
			want: ParseError{Kind: IntegerFieldInvalid, Line: 5, Field: "iteration", Raw: "2.5"},
		},
		{
			name: "non-numeric flag",
			raw:  " fred | compute1 | modeler.py | v14.3 | 2 | model | 2 | 2022-01-01 12:25:02.891922 || x",
			line: 6,
			want: ParseError{Kind: IntegerFieldInvalid, Line: 6, Field: "flag", Raw: "x"},
		},
		{
			name: "three digit year",
			raw:  " fred | compute1 | modeler.py | v14.3 | 2 | model | 2 | 202-01-01 12:25:02.891922 ||",
			line: 4,
			want: ParseError{
				Kind:   TimestampFieldInvalid,
				Line:   4,
				Field:  "timestamp",
				Raw:    "202-01-01 12:25:02.891922",
				Format: TimestampFormat,
			},
		},
		{
			name: "user id too long",
			raw:  strings.Repeat("u", 33) + " | h | w | t | 1 | s | 0 | 2022-01-01 12:25:02.891922 ||",
			line: 9,
			want: ParseError{Kind: FieldTooLong, Line: 9, Field: "user_id", Raw: strings.Repeat("u", 33), Limit: 32},
		},
		{
			name: "comment too long",
			raw:  "u | h | w | t | 1 | s | 0 | 2022-01-01 12:25:02.891922 | " + strings.Repeat("c", 129) + " |",
			line: 2,
			want: ParseError{Kind: FieldTooLong, Line: 2, Field: "comment", Raw: strings.Repeat("c", 129), Limit: 128},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := p.ParseEntry(tt.raw, tt.line)
			if err == nil {
				t.Fatalf("ParseEntry() = %+v, want error", entry)
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseEntry() error = %T %v, want *ParseError", err, err)
			}
			if diff := cmp.Diff(tt.want, *perr); diff != "" {
				t.Errorf("ParseError mismatch (-want +got):\n%s", diff)
			}
			if !strings.HasPrefix(err.Error(), "line ") {
				t.Errorf("Error() = %q, want line prefix", err.Error())
			}
		})
	}
}

func TestParseEntry_IntegerCheckedBeforeTimestamp(t *testing.T) {
	// Both stage_number and timestamp are bad; stage_number is reported.
	raw := " fred | compute1 | modeler.py | v14.3 | s2 | model | 2 | 202-01-01 12:25:02.891922 ||"

	_, err := New().ParseEntry(raw, 1)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("ParseEntry() error = %v, want *ParseError", err)
	}
	if perr.Kind != IntegerFieldInvalid || perr.Field != "stage_number" {
		t.Errorf("ParseEntry() error = %+v, want stage_number integer error", perr)
	}
}

func TestParseEntry_LengthMeasuredInCharacters(t *testing.T) {
	// 32 multi-byte characters fit in varchar(32).
	user := strings.Repeat("é", 32)
	raw := user + " | h | w | t | 1 | s | 0 | 2022-01-01 12:25:02.891922 ||"

	entry, err := New().ParseEntry(raw, 1)
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if entry.UserID != user {
		t.Errorf("UserID = %q, want %q", entry.UserID, user)
	}
}

func TestParseEntry_LengthEnforcementDisabled(t *testing.T) {
	raw := strings.Repeat("u", 40) + " | h | w | t | 1 | s | 0 | 2022-01-01 12:25:02.891922 ||"

	entry, err := New(WithLengthEnforcement(false)).ParseEntry(raw, 1)
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if len(entry.UserID) != 40 {
		t.Errorf("UserID length = %d, want 40", len(entry.UserID))
	}
}

func TestParseLine(t *testing.T) {
	p := New()

	tests := []struct {
		name    string
		line    string
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "prefixed marker line",
			line:   "Lorem Ipsum WFL_START fred | compute1 | modeler.py | v14.3 | 1 | prep | 0 | 2022-01-01 12:23:04.342912 ||",
			wantOK: true,
		},
		{
			name:   "pipes before marker are ignored",
			line:   "||| WFL_START fred | compute1 | modeler.py | v14.3 | 3 | publish | 1 | 2022-01-01 12:35:33.224452 ||11",
			wantOK: true,
		},
		{
			name:   "no marker",
			line:   "Lorem Ipsum",
			wantOK: false,
		},
		{
			name:    "malformed marker line",
			line:    "WFL_START fred | compute1",
			wantOK:  true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok, err := p.ParseLine(tt.line, 1)
			if ok != tt.wantOK {
				t.Errorf("ParseLine() ok = %v, want %v", ok, tt.wantOK)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok && !tt.wantErr && entry == nil {
				t.Error("ParseLine() returned nil entry")
			}
		})
	}
}

func TestParseLine_FirstMarkerWins(t *testing.T) {
	line := "WFL_START u | h | w | WFL_START | 1 | s | 0 | 2022-01-01 12:23:04.342912 ||"

	entry, ok, err := New().ParseLine(line, 1)
	if err != nil || !ok {
		t.Fatalf("ParseLine() = %v, %v", ok, err)
	}
	if entry.Tag != "WFL_START" {
		t.Errorf("Tag = %q, want WFL_START", entry.Tag)
	}
}

func TestNew_Defaults(t *testing.T) {
	p := New(WithMarker(""))
	if p.Marker() != Marker {
		t.Errorf("Marker() = %q, want %q", p.Marker(), Marker)
	}
}

func TestValidate(t *testing.T) {
	entry := &Entry{UserID: "fred", Hostname: "compute1", Workflow: "modeler.py", Stage: strings.Repeat("s", 65)}

	err := New().Validate(entry)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Validate() error = %v, want *ParseError", err)
	}
	if pe.Kind != FieldTooLong || pe.Field != "stage" || pe.Limit != 64 {
		t.Errorf("Validate() = %+v, want stage too long with limit 64", pe)
	}
	if strings.HasPrefix(err.Error(), "line") {
		t.Errorf("Error() = %q, want no line prefix for a built entry", err.Error())
	}

	if err := New(WithLengthEnforcement(false)).Validate(entry); err != nil {
		t.Errorf("Validate() with enforcement disabled = %v, want nil", err)
	}
}
