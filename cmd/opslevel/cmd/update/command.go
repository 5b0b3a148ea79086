// Package update provides the service metadata update command.
package update

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/cmd/application"
	"github.com/agentstation/opslevel/internal/cmd/output"
	"github.com/agentstation/opslevel/internal/cmd/table"
	"github.com/agentstation/opslevel/internal/syncer"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// Pending describes an update that was started but not awaited.
type Pending struct {
	EntityRef string `json:"entityRef"`
	Alias     string `json:"alias"`
	Status    string `json:"status"`
}

// NewCommand creates the update command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:     "update <file>",
		GroupID: "sync",
		Short:   "Set service language and framework from the repository",
		Long: `Update reconciles the language and framework of the service behind every
entity in a catalog file. The language is the one with the highest usage in
the service's first repository; the framework comes from the
opslevel.com/framework annotation or the first tag naming a configured
framework.

Without --wait the updates are started together, listed as started, and
failures are only logged. With --wait each update is awaited, its outcome
is printed, and any failure makes the command exit non-zero.`,
		Example: `  opslevel update catalog-info.yaml
  opslevel update catalog-info.yaml --wait -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			entities, err := catalog.LoadFile(path)
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			format := output.Format(app.OutputFormat())

			if wait {
				report := reconcileAll(ctx, client, path, entities)
				if err := output.Render(cmd.OutOrStdout(), format, report.Results, func(bool) table.Data {
					return table.SyncReportToTableData(report)
				}); err != nil {
					return err
				}
				return report.Err()
			}

			return startAll(ctx, cmd, client, format, entities)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for each update and report its outcome")

	return cmd
}

// reconcileAll runs the updates one after another and records each outcome.
func reconcileAll(ctx context.Context, client opslevel.Reconciler, source string, entities []*catalog.Entity) *syncer.Report {
	start := time.Now()
	report := &syncer.Report{}
	for _, e := range entities {
		ref := catalog.StringifyEntityRef(e)
		begin := time.Now()

		result, err := client.Reconcile(logging.WithEntityRef(ctx, ref), e)
		if err == nil {
			err = result.Err()
		}
		var syncErr *errors.SyncError
		if err != nil && !errors.As(err, &syncErr) {
			err = errors.NewSyncError(ref, syncer.StepUpdate, err)
		}

		report.Results = append(report.Results, &syncer.Result{
			EntityRef: ref,
			Source:    source,
			Update:    result,
			Err:       err,
			Duration:  time.Since(begin),
		})
	}
	report.Duration = time.Since(start)
	return report
}

// startAll starts every update, lists them, and then blocks until they finish
// so the process does not exit underneath them.
func startAll(ctx context.Context, cmd *cobra.Command, client opslevel.Reconciler, format output.Format, entities []*catalog.Entity) error {
	handles := make([]*opslevel.PendingUpdate, 0, len(entities))
	pending := make([]Pending, 0, len(entities))
	for _, e := range entities {
		ref := catalog.StringifyEntityRef(e)
		handles = append(handles, client.UpdateService(logging.WithEntityRef(ctx, ref), e))
		pending = append(pending, Pending{EntityRef: ref, Alias: e.Metadata.Name, Status: "started"})
	}

	if err := output.Render(cmd.OutOrStdout(), format, pending, func(bool) table.Data {
		data := table.Data{Headers: []string{"Entity", "Alias", "Status"}}
		for _, p := range pending {
			data.Rows = append(data.Rows, []string{p.EntityRef, p.Alias, p.Status})
		}
		return data
	}); err != nil {
		return err
	}

	// Failures and rejections are logged by the client as they happen.
	for _, h := range handles {
		if _, err := h.Wait(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}
