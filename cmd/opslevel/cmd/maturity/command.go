// Package maturity provides the maturity report command.
package maturity

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/opslevel/cmd/application"
	"github.com/agentstation/opslevel/internal/cmd/output"
	"github.com/agentstation/opslevel/internal/cmd/table"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/logging"
)

// Flags holds the maturity command flags.
type Flags struct {
	Raw    bool
	Checks bool
}

// NewCommand creates the maturity command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "maturity <alias|entity-ref>",
		GroupID: "reports",
		Short:   "Show the maturity report of a service",
		Long: `Maturity fetches the rubric levels, overall level, category breakdown,
and check results of the service with the given alias.

An entity reference such as component:default/svc-a may be given instead;
its name is used as the alias.

Table output lists the level reached in each category; use --checks or
the wide format to list individual check results instead.`,
		Example: `  opslevel maturity svc-a
  opslevel maturity component:payments/svc-a --checks
  opslevel maturity svc-a --raw -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, err := aliasFromArg(args[0])
			if err != nil {
				return err
			}
			return run(cmd, app, flags, alias)
		},
	}

	cmd.Flags().BoolVar(&flags.Raw, "raw", false, "Print the undecoded response")
	cmd.Flags().BoolVar(&flags.Checks, "checks", false, "List check results in table output")

	return cmd
}

// aliasFromArg accepts a bare alias or a [kind:][namespace/]name reference.
func aliasFromArg(arg string) (string, error) {
	if !strings.ContainsAny(arg, ":/") {
		return arg, nil
	}
	ref, err := catalog.ParseEntityRef(arg, constants.DefaultEntityKind)
	if err != nil {
		return "", err
	}
	return ref.Name, nil
}

func run(cmd *cobra.Command, app application.Application, flags *Flags, alias string) error {
	client, err := app.Client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(logging.WithAlias(cmd.Context(), alias), constants.CommandTimeout)
	defer cancel()

	format := output.Format(app.OutputFormat())
	w := cmd.OutOrStdout()

	if flags.Raw {
		raw, err := client.GetServiceMaturityByAliasRaw(ctx, alias)
		if err != nil {
			return err
		}
		return output.Render(w, format, raw, nil)
	}

	maturity, err := client.GetServiceMaturityByAlias(ctx, alias)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug().Msg("Fetched service maturity")

	return output.Render(w, format, maturity, func(wide bool) table.Data {
		if wide || flags.Checks {
			return table.CheckResultsToTableData(maturity)
		}
		return table.MaturityToTableData(maturity)
	})
}
