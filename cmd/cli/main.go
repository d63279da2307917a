// wflogger loads workflow log entries from application logs into a
// PostgreSQL or SQLite workflow_logs table.
package main

import (
	"os"

	"github.com/wflogger/wflogger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
