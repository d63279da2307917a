package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/credentials"
	"github.com/wflogger/wflogger/pkg/store"
)

// Diagnostic statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	StoreOptions
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose configuration, credentials and database access",
		Long: `Diagnose common setup problems before ingesting.

This command checks:
- Config file syntax and values (when --config is given)
- The credentials file for PostgreSQL (existence and 0400 permissions)
- The SQLite database directory (when --sqlite-path is given)
- Database connectivity and whether the workflow_logs table exists
- Webhook configuration

Example:
  wflogger diagnose
  wflogger diagnose --sqlite-path /tmp/wflogs.db -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(commandContext(cmd), cmd.OutOrStdout(), opts)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Load config (defaults when no file is given)
	cfg, result := checkConfig(ctx, opts)
	results = append(results, result)
	if result.Status == statusError {
		printDiagnostics(w, results, opts)
		ExitCode = 1
		return nil
	}

	// 2. Check what the backend needs before connecting
	result = checkBackendPrerequisites(cfg)
	results = append(results, result)

	// 3. Connect and look for the table
	if result.Status != statusError {
		results = append(results, checkDatabase(ctx, cfg))
	}

	// 4. Check webhooks configuration
	results = append(results, checkWebhooks(cfg, opts)...)

	if printDiagnostics(w, results, opts) > 0 {
		ExitCode = 1
	}
	return nil
}

func checkConfig(ctx context.Context, opts *DiagnoseOptions) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); os.IsNotExist(err) {
			result.Status = statusError
			result.Message = fmt.Sprintf("Config file not found: %s", opts.ConfigFile)
			result.Suggests = []string{"Check the file path is correct"}
			return nil, result
		}
	}

	cfg, err := loadConfig(ctx, &opts.StoreOptions)
	if err != nil {
		result.Status = statusError
		result.Message = "Configuration is invalid"
		result.Details = []string{err.Error()}
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{"Check YAML syntax (indentation, colons, quotes)"}
		}
		return nil, result
	}

	result.Status = statusOK
	if opts.ConfigFile == "" {
		result.Message = "No config file, using defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", opts.ConfigFile)
	}
	result.Details = []string{
		fmt.Sprintf("Backend: %s", cfg.Database.Backend),
		fmt.Sprintf("Marker: %s", cfg.Ingest.Marker),
		fmt.Sprintf("Enforce lengths: %t", cfg.Ingest.EnforceLengths),
		fmt.Sprintf("Log level: %s", cfg.Logging.Level),
	}
	return cfg, result
}

func checkBackendPrerequisites(cfg *config.Config) DiagnosticResult {
	if cfg.Database.Backend == config.BackendSQLite {
		return checkSQLitePath(cfg.Database.SQLitePath)
	}
	return checkCredentials(cfg.Database.CredentialsFile)
}

func checkSQLitePath(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "SQLite Path",
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		result.Status = statusError
		result.Message = fmt.Sprintf("Directory does not exist: %s", dir)
		result.Suggests = []string{"Create the directory or choose another --sqlite-path"}
		return result
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		result.Status = statusOK
		result.Message = fmt.Sprintf("%s will be created", path)
		return result
	}

	result.Status = statusOK
	result.Message = path
	return result
}

func checkCredentials(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Credentials",
	}

	provider, err := credentials.NewFileProvider(path)
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		return result
	}

	if _, err := provider.ConnString(); err != nil {
		result.Status = statusError
		result.Message = err.Error()
		switch {
		case errors.Is(err, credentials.ErrMissing):
			result.Suggests = []string{
				fmt.Sprintf("Write a PostgreSQL connection string to %s", provider.Path),
				"Or use --sqlite-path for a local database",
			}
		case errors.Is(err, credentials.ErrInsecurePermissions):
			result.Suggests = []string{fmt.Sprintf("Run: chmod 400 %s", provider.Path)}
		}
		return result
	}

	result.Status = statusOK
	result.Message = fmt.Sprintf("%s (mode 0400)", provider.Path)
	return result
}

func checkDatabase(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Database",
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		result.Status = statusError
		result.Message = "Cannot connect"
		result.Details = []string{err.Error()}
		return result
	}
	defer s.Close()

	exists, err := s.TableExists(ctx)
	if err != nil {
		result.Status = statusError
		result.Message = "Connected, but cannot inspect tables"
		result.Details = []string{err.Error()}
		return result
	}

	if !exists {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Connected to %s, table %s does not exist", s.Backend(), store.TableName)
		result.Suggests = []string{"Run 'wflogger setup' or pass --setup to ingest"}
		return result
	}

	n, err := s.Count(ctx)
	if err != nil {
		result.Status = statusError
		result.Message = "Connected, but cannot count rows"
		result.Details = []string{err.Error()}
		return result
	}

	result.Status = statusOK
	result.Message = fmt.Sprintf("Connected to %s, %s has %d rows", s.Backend(), store.TableName, n)
	return result
}

// printDiagnostics writes the results and returns the number of errors.
func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) int {
	fmt.Fprintln(w, "=== wflogger Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case statusOK:
			icon = "PASS"
			okCount++
		case statusWarning:
			icon = "WARN"
			warnCount++
		case statusError:
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != statusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before ingesting.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nSetup is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nSetup looks good!")
	}

	return errCount
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  statusOK,
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		// URL and trigger were validated on load.
		warnings := []string{}
		if u, err := url.Parse(wh.URL); err == nil && u.Scheme == "http" &&
			u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
			warnings = append(warnings, "URL is not HTTPS; the report and token are sent in clear text")
		}

		if len(warnings) > 0 {
			result.Status = statusWarning
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = statusOK
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
		}

		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			)
		}

		results = append(results, result)
	}

	return results
}
