package parser

import (
	"regexp"
	"testing"
	"time"
)

func TestTimestampExtractor_Extract(t *testing.T) {
	extractor := DefaultTimestampExtractor()

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "valid timestamp",
			value: "2022-11-28 14:34:27.393315",
			want:  time.Date(2022, 11, 28, 14, 34, 27, 393315000, time.UTC),
		},
		{
			name:  "zero microseconds",
			value: "2022-01-01 00:00:00.000000",
			want:  time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "three digit year",
			value:   "202-01-01 12:25:02.891922",
			wantErr: true,
		},
		{
			name:    "missing microseconds",
			value:   "2022-01-01 12:25:02",
			wantErr: true,
		},
		{
			name:    "truncated microseconds",
			value:   "2022-01-01 12:25:02.89192",
			wantErr: true,
		},
		{
			name:    "nanoseconds",
			value:   "2022-01-01 12:25:02.891922000",
			wantErr: true,
		},
		{
			name:    "single digit hour",
			value:   "2022-01-01 1:25:02.891922",
			wantErr: true,
		},
		{
			name:    "T separator",
			value:   "2022-01-01T12:25:02.891922",
			wantErr: true,
		},
		{
			name:    "slash separators",
			value:   "2022/01/01 12:25:02.891922",
			wantErr: true,
		},
		{
			name:    "month out of range",
			value:   "2022-13-01 12:25:02.891922",
			wantErr: true,
		},
		{
			name:    "february 30th",
			value:   "2022-02-30 12:25:02.891922",
			wantErr: true,
		},
		{
			name:    "hour out of range",
			value:   "2022-01-01 24:25:02.891922",
			wantErr: true,
		},
		{
			name:    "empty",
			value:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Extract() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimestampExtractor_CustomLayout(t *testing.T) {
	extractor := NewTimestampExtractor(regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02")

	got, err := extractor.Extract("2024-01-15")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}

	if _, err := extractor.Extract("2024-01-15 10:00:00"); err == nil {
		t.Error("Extract() expected error for trailing time")
	}
}
