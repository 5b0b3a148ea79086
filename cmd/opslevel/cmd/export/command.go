// Package export provides the entity export command.
package export

import (
	"context"

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

// NewCommand creates the export command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "export <file>",
		GroupID: "sync",
		Short:   "Import catalog entities as services",
		Long: `Export reads every entity from a catalog file and imports each one as a
service. The transmitted copy carries a derived "type:<spec.type>" tag and
a spec type of "service"; the file itself is never modified.

Entities the platform rejects are listed with their errors and make the
command exit non-zero.`,
		Example: `  opslevel export catalog-info.yaml
  opslevel export catalog-info.yaml --dry-run -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			format := output.Format(app.OutputFormat())

			if dryRun {
				plans := make([]opslevel.ExportRequest, 0, len(entities))
				for _, e := range entities {
					plan, err := opslevel.PrepareExport(e)
					if err != nil {
						return err
					}
					plans = append(plans, plan)
				}
				return output.Render(cmd.OutOrStdout(), format, plans, func(bool) table.Data {
					return table.ExportPlanToTableData(plans)
				})
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			results, err := exportAll(ctx, client, entities)
			if err != nil {
				return err
			}

			if err := output.Render(cmd.OutOrStdout(), format, results, func(bool) table.Data {
				return table.ExportResultsToTableData(results)
			}); err != nil {
				return err
			}

			var rejected []error
			for _, r := range results {
				if err := r.Err(); err != nil {
					rejected = append(rejected, errors.NewSyncError(r.EntityRef, syncer.StepExport, err))
				}
			}
			return errors.Join(rejected...)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the import payloads without sending them")

	return cmd
}

// exportAll exports entities in file order and stops at the first request
// failure. Remote validation errors are returned as data.
func exportAll(ctx context.Context, client opslevel.Exporter, entities []*catalog.Entity) ([]*opslevel.ExportResult, error) {
	results := make([]*opslevel.ExportResult, 0, len(entities))
	for _, e := range entities {
		ref := catalog.StringifyEntityRef(e)
		result, err := client.ExportEntity(logging.WithEntityRef(ctx, ref), e)
		if err != nil {
			return nil, errors.NewSyncError(ref, syncer.StepExport, err)
		}
		results = append(results, result)
	}
	return results, nil
}
