// Package cli provides the command-line interface for wflogger.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wflogger/wflogger/internal/cli/commands"
	"github.com/wflogger/wflogger/internal/cli/plugins"
)

// Execute runs the CLI against os.Args and returns the exit code.
// SIGINT and SIGTERM cancel the running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the CLI with args (without the program name) and returns
// the exit code: 0 success, 1 at least one file failed, 2 usage or runtime error.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	commands.ExitCode = 0
	if args == nil {
		args = []string{}
	}
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Unknown commands may be plugins
	potentialCommand := ""
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		potentialCommand = args[0]
	}
	if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
		if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
			return plugins.Execute(ctx, pluginPath, args[1:])
		}
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(potentialCommand))
			return 2
		}
		// SilenceErrors prevents Cobra from printing this itself
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wflogger",
		Short: "Load workflow log entries into PostgreSQL or SQLite",
		Long: `wflogger records progress events emitted by data-processing workflows.

Workflows write lines of the form

  ... WFL_START user | host | workflow | tag | stage_number | stage | iteration | YYYY-MM-DD HH:MM:SS.ffffff | comment | flag

into their ordinary logs. wflogger finds those lines and loads them into the
workflow_logs table, one file per transaction: a file with any malformed
entry loads nothing.

PostgreSQL is the default backend, with the connection string read from
~/.wflogger (mode 0400). Use --sqlite-path for a local SQLite database.

PLUGINS:
  Unknown commands run standalone binaries named wflogger-<command>.

  Plugin locations (searched in order):
    1. Same directory as the wflogger binary
    2. $WFLOGGER_PLUGIN_DIR, or <user config dir>/wflogger/plugins
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewIngestCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewLogCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewSetupCommand())
	rootCmd.AddCommand(commands.NewResetCommand())
	rootCmd.AddCommand(commands.NewDropCommand())
	rootCmd.AddCommand(commands.NewCountCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
