package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wflogger/wflogger/pkg/store"
)

// QueryOptions holds command-line options for the query command.
type QueryOptions struct {
	StoreOptions

	UserID   string
	Hostname string
	Workflow string
	Tag      string
	Stage    string

	StageNumber int
	Iteration   int
	Flag        int

	Since string
	Until string
	Limit int

	Output string
	Quiet  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List stored workflow log entries",
		Long: `List stored entries ordered by date-time.

Every filter is an exact match; --since is inclusive and --until exclusive.
With -q only the number of matching rows is printed.

Example:
  wflogger query --workflow modeler.py --since 2022-01-01 --limit 20
  wflogger query --stage-number 2 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().StringVar(&opts.UserID, "user", "", "Match user_id")
	cmd.Flags().StringVar(&opts.Hostname, "hostname", "", "Match hostname")
	cmd.Flags().StringVar(&opts.Workflow, "workflow", "", "Match workflow")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "Match tag")
	cmd.Flags().StringVar(&opts.Stage, "stage", "", "Match stage")
	cmd.Flags().IntVar(&opts.StageNumber, "stage-number", 0, "Match stage_number")
	cmd.Flags().IntVar(&opts.Iteration, "iteration", 0, "Match iteration")
	cmd.Flags().IntVar(&opts.Flag, "flag", 0, "Match flag")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Entries at or after this date-time")
	cmd.Flags().StringVar(&opts.Until, "until", "", "Entries before this date-time")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of rows (0 for all)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Print the row count only")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions) error {
	ctx := commandContext(cmd)

	filter, err := buildFilter(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	formatter, err := createFormatter(opts.Output, opts.Verbose, opts.Quiet)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, &opts.StoreOptions)
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.Query(ctx, filter)
	if err != nil {
		return err
	}

	if err := formatter.FormatRecords(ctx, records, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

// buildFilter sets only the filter fields whose flags were given, so that
// zero values such as --stage-number 0 still filter.
func buildFilter(flags *pflag.FlagSet, opts *QueryOptions) (store.Filter, error) {
	var f store.Filter

	strs := []struct {
		flag string
		v    string
		dst  **string
	}{
		{"user", opts.UserID, &f.UserID},
		{"hostname", opts.Hostname, &f.Hostname},
		{"workflow", opts.Workflow, &f.Workflow},
		{"tag", opts.Tag, &f.Tag},
		{"stage", opts.Stage, &f.Stage},
	}
	for _, s := range strs {
		if flags.Changed(s.flag) {
			v := s.v
			*s.dst = &v
		}
	}

	ints := []struct {
		flag string
		v    int
		dst  **int
	}{
		{"stage-number", opts.StageNumber, &f.StageNumber},
		{"iteration", opts.Iteration, &f.Iteration},
		{"flag", opts.Flag, &f.Flag},
	}
	for _, n := range ints {
		if flags.Changed(n.flag) {
			v := n.v
			*n.dst = &v
		}
	}

	times := []struct {
		flag string
		v    string
		dst  **time.Time
	}{
		{"since", opts.Since, &f.Since},
		{"until", opts.Until, &f.Until},
	}
	for _, t := range times {
		if !flags.Changed(t.flag) {
			continue
		}
		ts, err := parseDateTime(t.v)
		if err != nil {
			return store.Filter{}, fmt.Errorf("--%s: %w", t.flag, err)
		}
		*t.dst = &ts
	}

	if opts.Limit < 0 {
		return store.Filter{}, fmt.Errorf("--limit must not be negative, got %d", opts.Limit)
	}
	f.Limit = opts.Limit

	return f, nil
}
