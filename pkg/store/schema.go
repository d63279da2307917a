package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/wflogger/wflogger/pkg/parser"
)

// Columns lists the entry columns in insert order.
var Columns = []string{
	"user_id", "hostname", "workflow", "tag", "stage_number",
	"stage", "iteration", "date_time", "comment", "flag",
}

// Text column limits, in characters.
var columnLimits = []struct {
	name  string
	limit int
}{
	{"user_id", 32},
	{"hostname", 64},
	{"workflow", 64},
	{"tag", 64},
	{"stage", 64},
	{"comment", 128},
}

// dialect captures the per-backend differences in SQL text.
type dialect struct {
	// idColumn is the generated primary key definition.
	idColumn string

	// checkLengths adds CHECK constraints for engines that ignore varchar sizes.
	checkLengths bool

	placeholder func(n int) string

	// timeValue converts an event time to its bind parameter.
	timeValue func(t time.Time) any
}

var sqliteDialect = dialect{
	idColumn:     "id INTEGER PRIMARY KEY AUTOINCREMENT",
	checkLengths: true,
	placeholder:  func(int) string { return "?" },
	// Fixed-width UTC text keeps lexical order equal to time order.
	timeValue: func(t time.Time) any { return t.UTC().Format(parser.TimestampLayout) },
}

var postgresDialect = dialect{
	idColumn:    "id serial PRIMARY KEY",
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	timeValue:   func(t time.Time) any { return t.UTC() },
}

func (d dialect) createTableSQL() string {
	lines := []string{
		d.idColumn,
		"user_id varchar(32) NOT NULL",
		"hostname varchar(64) NOT NULL",
		"workflow varchar(64) NOT NULL",
		"tag varchar(64) NOT NULL",
		"stage_number integer NOT NULL",
		"stage varchar(64) NOT NULL",
		"iteration integer DEFAULT 0",
		"date_time timestamp NOT NULL",
		"comment varchar(128) DEFAULT ''",
		"flag integer DEFAULT -999",
		"inserted_at timestamp DEFAULT current_timestamp",
	}
	if d.checkLengths {
		for _, c := range columnLimits {
			lines = append(lines, fmt.Sprintf("CHECK (length(%s) <= %d)", c.name, c.limit))
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", TableName, strings.Join(lines, ",\n\t"))
}

func (d dialect) insertSQL() string {
	ph := make([]string, len(Columns))
	for i := range Columns {
		ph[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableName, strings.Join(Columns, ", "), strings.Join(ph, ", "))
}

func (d dialect) selectSQL() string {
	return fmt.Sprintf("SELECT id, %s, inserted_at FROM %s", strings.Join(Columns, ", "), TableName)
}
