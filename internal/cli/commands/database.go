package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wflogger/wflogger/pkg/ingestor"
	"github.com/wflogger/wflogger/pkg/store"
)

// DatabaseOptions holds options shared by the table lifecycle commands.
type DatabaseOptions struct {
	StoreOptions
}

type lifecycleFunc func(ctx context.Context, ing *ingestor.Ingestor, w io.Writer) error

// NewSetupCommand creates the setup command.
func NewSetupCommand() *cobra.Command {
	return newLifecycleCommand("setup", "Create the workflow_logs table if it does not exist",
		func(ctx context.Context, ing *ingestor.Ingestor, w io.Writer) error {
			r := ing.PrepareDatabase(ctx)
			switch r.Outcome {
			case ingestor.OK:
				fmt.Fprintf(w, "Created table %s\n", store.TableName)
			case ingestor.AlreadyExisted:
				fmt.Fprintf(w, "Table %s already exists\n", store.TableName)
			default:
				return fmt.Errorf("setting up database: %w", r.Err)
			}
			return nil
		})
}

// NewResetCommand creates the reset command.
func NewResetCommand() *cobra.Command {
	return newLifecycleCommand("reset", "Delete every row from the workflow_logs table",
		func(ctx context.Context, ing *ingestor.Ingestor, w io.Writer) error {
			r := ing.ResetDatabase(ctx)
			if !r.Ok() {
				return fmt.Errorf("resetting database: %w", r.Err)
			}
			fmt.Fprintf(w, "Deleted %d rows from %s\n", r.Rows, store.TableName)
			return nil
		})
}

// NewDropCommand creates the drop command.
func NewDropCommand() *cobra.Command {
	return newLifecycleCommand("drop", "Drop the workflow_logs table",
		func(ctx context.Context, ing *ingestor.Ingestor, w io.Writer) error {
			r := ing.DropDatabase(ctx)
			if !r.Ok() {
				return fmt.Errorf("dropping database: %w", r.Err)
			}
			fmt.Fprintf(w, "Dropped table %s\n", store.TableName)
			return nil
		})
}

// NewCountCommand creates the count command.
func NewCountCommand() *cobra.Command {
	return newLifecycleCommand("count", "Print the number of rows in the workflow_logs table",
		func(ctx context.Context, ing *ingestor.Ingestor, w io.Writer) error {
			n := ing.TableSize(ctx)
			if n < 0 {
				return errors.New("counting rows failed, see the log for details")
			}
			fmt.Fprintln(w, n)
			return nil
		})
}

func newLifecycleCommand(use, short string, run lifecycleFunc) *cobra.Command {
	opts := &DatabaseOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			cfg, err := loadConfig(ctx, &opts.StoreOptions)
			if err != nil {
				return err
			}

			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			ing := ingestor.New(s, ingestor.WithLogger(newLogger(cfg, cmd.ErrOrStderr())))
			return run(ctx, ing, cmd.OutOrStdout())
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)

	return cmd
}
