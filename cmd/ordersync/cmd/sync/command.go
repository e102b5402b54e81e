// Package sync provides the sync command implementation.
package sync

import (
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordersync"
	"github.com/agentstation/ordersync/cmd/application"
	"github.com/agentstation/ordersync/internal/cmd/output"
	"github.com/agentstation/ordersync/internal/cmd/table"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Flags holds the sync command flags.
type Flags struct {
	Force   bool
	DryRun  bool
	Timeout time.Duration
}

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Run one reconciliation pass",
		Args:    cobra.NoArgs,
		Long: `Sync runs a single reconciliation pass: new orders are inserted at the top
of the sheet and recent orders have their status, ship date and ship address
patched.

Inside the quiet window the pass is skipped unless --force is given.
With --dry-run the pass runs against an in-memory copy of the sheet and prints
what it would have written.`,
		Example: `  ordersync sync                  # One pass
  ordersync sync --dry-run        # Preview the writes
  ordersync sync --force          # Ignore the quiet window`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Force, "force", false, "run even inside the quiet window")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "reconcile into a copy of the sheet and print the writes")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "stop the pass after this long (0 means no limit)")

	return cmd
}

// Execute runs one pass and prints its outcome.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	client, err := app.Client(ctx)
	if err != nil {
		return err
	}

	result, err := client.Sync(ctx,
		ordersync.SyncWithForce(flags.Force),
		ordersync.SyncWithDryRun(flags.DryRun),
		ordersync.SyncWithTimeout(flags.Timeout),
	)
	if stderrors.Is(err, errors.ErrQuietWindow) {
		logger.Info().Msg("Inside quiet window, nothing to do (use --force to override)")
		return nil
	}
	if result == nil {
		return err
	}

	if m := app.Metrics(); m != nil && !result.DryRun {
		m.RecordPass(result)
	}

	out := cmd.OutOrStdout()
	format := app.OutputFormat()
	if !format.IsTabular() {
		if ferr := output.Write(out, format, output.NewPassReport(result)); ferr != nil {
			return ferr
		}
	} else {
		if flags.DryRun {
			if werr := PrintWrites(out, format, client.Schema(), result); werr != nil {
				return werr
			}
		}
		_, _ = fmt.Fprintln(out, result.Summary())
	}

	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("pass %s finished with %d errors", result.PassID, len(result.Errors))
	}
	return nil
}

// PrintWrites renders the rows and cells a pass wrote, each list as its own table.
func PrintWrites(w io.Writer, format output.Format, s *schema.Schema, result *reconciler.Result) error {
	if len(result.Inserted) > 0 {
		if err := output.Write(w, format, table.RowsToTableData(s, result.Inserted)); err != nil {
			return err
		}
	}
	if len(result.Patched) > 0 {
		if err := output.Write(w, format, table.PatchesToTableData(result.Patched)); err != nil {
			return err
		}
	}
	return nil
}
