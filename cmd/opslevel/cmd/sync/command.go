// Package sync provides the batch sync command.
package sync

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/opslevel/cmd/application"
	"github.com/agentstation/opslevel/internal/cmd/output"
	"github.com/agentstation/opslevel/internal/cmd/table"
	"github.com/agentstation/opslevel/internal/syncer"
	"github.com/agentstation/opslevel/pkg/constants"
)

// Flags holds the sync command flags.
type Flags struct {
	Concurrency int
	DryRun      bool
	FailFast    bool
	SkipUpdate  bool
}

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync <file>...",
		GroupID: "sync",
		Short:   "Export entities and reconcile their services in one pass",
		Long: `Sync loads every entity from the given catalog files, exports each one
as a service, and then reconciles its language and framework. Entities are
processed concurrently; export and update of one entity always run in order.

A file that cannot be loaded, an export rejected by the platform, or a
failed update is reported per entity and makes the command exit non-zero.`,
		Example: `  opslevel sync catalog/*.yaml
  opslevel sync catalog-info.yaml --dry-run
  opslevel sync catalog/*.yaml --concurrency 8 --fail-fast`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args)
		},
	}

	cmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "c", constants.DefaultSyncConcurrency,
		fmt.Sprintf("Entities processed at once (1-%d)", constants.MaxSyncConcurrency))
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Build the import payloads without sending anything")
	cmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop starting new entities after the first failure")
	cmd.Flags().BoolVar(&flags.SkipUpdate, "skip-update", false, "Export only; do not reconcile service metadata")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags, paths []string) error {
	client, err := app.Client()
	if err != nil {
		return err
	}

	s, err := syncer.New(client,
		syncer.WithConcurrency(flags.Concurrency),
		syncer.WithDryRun(flags.DryRun),
		syncer.WithFailFast(flags.FailFast),
		syncer.WithSkipUpdate(flags.SkipUpdate),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
	defer cancel()

	report, runErr := s.SyncFiles(ctx, paths...)

	format := output.Format(app.OutputFormat())
	if err := output.Render(cmd.OutOrStdout(), format, report.Results, func(bool) table.Data {
		return table.SyncReportToTableData(report)
	}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), report.Summary())

	if runErr != nil {
		return runErr
	}
	return report.Err()
}
