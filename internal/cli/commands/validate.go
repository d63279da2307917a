package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wflogger/wflogger/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a wflogger configuration file without touching a database.

Checks:
  - YAML syntax
  - Backend and its required settings
  - Marker and logging values
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(commandContext(cmd), configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Backend:         %s\n", cfg.Database.Backend)
	switch cfg.Database.Backend {
	case config.BackendSQLite:
		fmt.Fprintf(w, "  SQLite path:     %s\n", cfg.Database.SQLitePath)
	default:
		creds := cfg.Database.CredentialsFile
		if creds == "" {
			creds = "~/.wflogger"
		}
		fmt.Fprintf(w, "  Credentials:     %s\n", creds)
	}
	fmt.Fprintf(w, "  Marker:          %s\n", cfg.Ingest.Marker)
	fmt.Fprintf(w, "  Enforce lengths: %t\n", cfg.Ingest.EnforceLengths)
	fmt.Fprintf(w, "  Log level:       %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, name)
		}
	}

	return nil
}
