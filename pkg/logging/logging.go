// Package logging builds the structured logger shared by the CLI and the
// ingestor.
package logging

import (
	"io"
	"strings"

	"github.com/phuslu/log"

	"github.com/wflogger/wflogger/pkg/config"
)

// ParseLevel maps a config level name to a log level.
// Unknown names map to warn.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// New returns a logger writing to w in the configured format.
func New(cfg config.LoggingConfig, w io.Writer) *log.Logger {
	var writer log.Writer
	if cfg.Format == "json" {
		writer = &log.IOWriter{Writer: w}
	} else {
		writer = &log.ConsoleWriter{Writer: w}
	}

	return &log.Logger{
		Level:  ParseLevel(cfg.Level),
		Writer: writer,
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
