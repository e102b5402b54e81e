package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordersync/cmd/ordersync/cmd/completion"
	"github.com/agentstation/ordersync/cmd/ordersync/cmd/inspect"
	"github.com/agentstation/ordersync/cmd/ordersync/cmd/run"
	synccmd "github.com/agentstation/ordersync/cmd/ordersync/cmd/sync"
	"github.com/agentstation/ordersync/cmd/ordersync/cmd/version"
	"github.com/agentstation/ordersync/internal/cmd/output"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/logging"
)

// Execute runs the ordersync CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ordersync",
		Short:   "Reconcile marketplace orders into an order sheet",
		Version: a.version,
		Long: `ordersync keeps an order sheet in step with the marketplace.

Each pass lists recent orders, appends rows for orders the sheet has not seen
(newest first, one row per line item, one serial number per order), and patches
status, ship date and ship address on recent orders whose upstream data drifted.

The sheet lives in a row store: memory, a local SQLite file, or PostgreSQL.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&a.flags.configFile, "config", "", "config file (default is $HOME/.ordersync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.flags.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVarP(&a.flags.output, "output", "o", "", "output format: table, tsv, json, yaml (default table on a terminal, tsv otherwise)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "tsv", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetVersionTemplate("ordersync {{.Version}}\n")

	rootCmd.AddCommand(synccmd.NewCommand(a))
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(inspect.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
	rootCmd.AddCommand(completion.NewCommand())

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if a.flags.configFile != "" {
		config, err := LoadConfig(a.flags.configFile)
		if err != nil {
			return errors.WrapResource("load", "config", a.flags.configFile, err)
		}
		a.config = config
	}

	a.config.UpdateFromFlags(a.flags.verbose, a.flags.quiet, a.flags.noColor, a.flags.logLevel)
	if a.flags.output != "" {
		if _, err := output.ParseFormat(a.flags.output); err != nil {
			return errors.NewValidationError("output", a.flags.output, err.Error())
		}
		a.config.Output = a.flags.output
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))
	return nil
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
