package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wflogger/wflogger/pkg/credentials"
	"github.com/wflogger/wflogger/pkg/ingestor"
	"github.com/wflogger/wflogger/pkg/parser"
)

// dateTimeLayouts are the accepted --date-time forms, tried in order.
var dateTimeLayouts = []string{
	parser.TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LogOptions holds command-line options for the log command.
type LogOptions struct {
	StoreOptions

	DateTime string
	Comment  string
	Flag     int
	Setup    bool
}

// NewLogCommand creates the log command.
func NewLogCommand() *cobra.Command {
	opts := &LogOptions{}

	cmd := &cobra.Command{
		Use:   "log <workflow> <tag> <stage_number> <stage> [iteration]",
		Short: "Record a single workflow log entry",
		Long: `Record one entry directly into the database.

The user and host are taken from USER and HOSTNAME. The date-time defaults
to now (UTC) and accepts "YYYY-MM-DD HH:MM:SS.ffffff", RFC 3339,
"YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD".

Example:
  wflogger log modeler.py v14.3 2 model 3 -c "slow run"`,
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, args, opts)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().StringVarP(&opts.DateTime, "date-time", "d", "", "When the event happened (default now)")
	cmd.Flags().StringVarP(&opts.Comment, "comment", "c", "", "Free-text comment")
	cmd.Flags().IntVarP(&opts.Flag, "flag", "f", parser.DefaultFlag, "Integer flag")
	cmd.Flags().BoolVar(&opts.Setup, "setup", false, "Create the workflow_logs table if it does not exist")

	return cmd
}

func runLog(cmd *cobra.Command, args []string, opts *LogOptions) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(ctx, &opts.StoreOptions)
	if err != nil {
		return err
	}

	id, err := credentials.CurrentIdentity()
	if err != nil {
		return err
	}

	entry, err := buildEntry(args, opts, id, time.Now())
	if err != nil {
		return err
	}
	if err := newParser(cfg).Validate(entry); err != nil {
		return err
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.Setup {
		ing := ingestor.New(s, ingestor.WithLogger(newLogger(cfg, cmd.ErrOrStderr())))
		if r := ing.PrepareDatabase(ctx); !r.Ok() {
			return fmt.Errorf("setting up database: %w", r.Err)
		}
	}

	if err := s.Insert(ctx, *entry); err != nil {
		return fmt.Errorf("recording entry: %w", err)
	}

	if opts.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s stage %d (%s) at %s\n",
			entry.Workflow, entry.Tag, entry.StageNumber, entry.Stage,
			entry.Timestamp.Format(parser.TimestampLayout))
	}
	return nil
}

func buildEntry(args []string, opts *LogOptions, id credentials.Identity, now time.Time) (*parser.Entry, error) {
	stageNumber, err := strconv.Atoi(args[2])
	if err != nil {
		return nil, fmt.Errorf("stage_number %q is not an integer", args[2])
	}

	iteration := parser.DefaultIteration
	if len(args) == 5 {
		if iteration, err = strconv.Atoi(args[4]); err != nil {
			return nil, fmt.Errorf("iteration %q is not an integer", args[4])
		}
	}

	ts := now.UTC().Truncate(time.Microsecond)
	if opts.DateTime != "" {
		if ts, err = parseDateTime(opts.DateTime); err != nil {
			return nil, err
		}
	}

	return &parser.Entry{
		UserID:      id.UserID,
		Hostname:    id.Hostname,
		Workflow:    args[0],
		Tag:         args[1],
		StageNumber: stageNumber,
		Stage:       args[3],
		Iteration:   iteration,
		Timestamp:   ts,
		Comment:     opts.Comment,
		Flag:        opts.Flag,
	}, nil
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("date-time %q does not match %s, RFC 3339 or YYYY-MM-DD", s, parser.TimestampFormat)
}
