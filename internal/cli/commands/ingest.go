package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wflogger/wflogger/pkg/config"
	"github.com/wflogger/wflogger/pkg/ingestor"
	"github.com/wflogger/wflogger/pkg/output"
	"github.com/wflogger/wflogger/pkg/parser"
	"github.com/wflogger/wflogger/pkg/webhook"
)

// IngestOptions holds command-line options for the ingest command.
type IngestOptions struct {
	StoreOptions

	Setup  bool
	Reset  bool
	Output string
	Quiet  bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest <pattern>...",
		Short: "Load workflow log entries from log files",
		Long: `Scan log files for WFL_START lines and load the entries into the database.

Each file is loaded in a single transaction. A file containing any malformed
entry loads nothing and is reported with the line and field at fault.
Patterns support ** and patterns that match no files are skipped.

Exit codes:
  0 - Every file was ingested
  1 - At least one file failed to ingest
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, opts)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().BoolVar(&opts.Setup, "setup", false, "Create the workflow_logs table if it does not exist")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "Delete all rows before ingesting")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_failure", "When to fire webhook (on_failure|always|never)")

	return cmd
}

func runIngest(cmd *cobra.Command, patterns []string, opts *IngestOptions) error {
	ctx := commandContext(cmd)
	started := time.Now()

	cfg, err := loadConfig(ctx, &opts.StoreOptions)
	if err != nil {
		return err
	}

	formatter, err := createFormatter(opts.Output, opts.Verbose, opts.Quiet)
	if err != nil {
		return err
	}

	files, unmatched, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return fmt.Errorf("expanding patterns: %w", err)
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	for _, pattern := range unmatched {
		logger.Warn().Str("pattern", pattern).Msg("no files match pattern")
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ing := ingestor.New(s, ingestor.WithLogger(logger), ingestor.WithParser(newParser(cfg)))

	if opts.Setup {
		if r := ing.PrepareDatabase(ctx); !r.Ok() {
			return fmt.Errorf("setting up database: %w", r.Err)
		}
	}
	if opts.Reset {
		if r := ing.ResetDatabase(ctx); !r.Ok() {
			return fmt.Errorf("resetting database: %w", r.Err)
		}
	}

	results := ing.IngestAll(ctx, files)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ingest interrupted: %w", err)
	}

	report := output.NewReport(results, false)
	report.ApplyStats(ing.Stats())
	report.Summary.TableRows = ing.TableSize(ctx)
	report.Metadata = output.Metadata{
		ConfigFile: opts.ConfigFile,
		Backend:    string(s.Backend()),
		Patterns:   patterns,
		Unmatched:  unmatched,
		StartedAt:  started,
		Duration:   time.Since(started),
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail the ingest)
	sendWebhooks(ctx, cfg, opts, report, cmd.ErrOrStderr())

	if report.HasFailures() {
		ExitCode = 1
	}

	return nil
}

func createFormatter(name string, verbose, quiet bool) (output.Formatter, error) {
	return output.NewFormatter(name, output.FormatOptions{
		Verbose: verbose,
		Quiet:   quiet,
	})
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are written to stderr but don't fail the ingest.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *IngestOptions, report *output.Report, stderr io.Writer) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	for _, resp := range webhook.NewClient().SendAll(ctx, webhooks, report) {
		if resp.Success() {
			fmt.Fprintf(stderr, "Webhook %s: sent (%d, %s)\n", resp.Name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(stderr, "Webhook %s: failed (%v)\n", resp.Name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *IngestOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnFailure
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
