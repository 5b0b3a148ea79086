// Package report provides the account services report command.
package report

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/opslevel/cmd/application"
	"github.com/agentstation/opslevel/internal/cmd/output"
	"github.com/agentstation/opslevel/internal/cmd/table"
	"github.com/agentstation/opslevel/pkg/constants"
)

// NewCommand creates the report command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:     "report",
		GroupID: "reports",
		Short:   "Show how many services reached each level",
		Long: `Report fetches the account rubric and counts services per level,
both account wide and per category.`,
		Example: `  opslevel report
  opslevel report -o yaml
  opslevel report --raw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			format := output.Format(app.OutputFormat())

			if raw {
				data, err := client.GetServicesReportRaw(ctx)
				if err != nil {
					return err
				}
				return output.Render(cmd.OutOrStdout(), format, data, nil)
			}

			report, err := client.GetServicesReport(ctx)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), format, report, func(bool) table.Data {
				return table.ServicesReportToTableData(report)
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the undecoded response")

	return cmd
}
