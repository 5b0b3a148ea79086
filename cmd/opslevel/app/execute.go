package app

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentstation/opslevel/cmd/opslevel/cmd/export"
	"github.com/agentstation/opslevel/cmd/opslevel/cmd/maturity"
	"github.com/agentstation/opslevel/cmd/opslevel/cmd/report"
	"github.com/agentstation/opslevel/cmd/opslevel/cmd/serve"
	synccmd "github.com/agentstation/opslevel/cmd/opslevel/cmd/sync"
	"github.com/agentstation/opslevel/cmd/opslevel/cmd/update"
	"github.com/agentstation/opslevel/cmd/opslevel/cmd/version"
	"github.com/agentstation/opslevel/internal/cmd/globals"
	"github.com/agentstation/opslevel/internal/cmd/output"
	"github.com/agentstation/opslevel/pkg/logging"
)

// Execute runs the opslevel CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "opslevel",
		Short:   "Service maturity and catalog sync CLI",
		Version: a.version,
		Long: `opslevel connects a Backstage software catalog to the OpsLevel service
maturity platform through the catalog backend's proxy.

It reads maturity reports, exports catalog entities as services, and
reconciles each service's language and framework from its repository.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "reports",
		Title: "Report Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sync",
		Title: "Sync Commands:",
	})

	globals.AddFlags(rootCmd)

	rootCmd.SetVersionTemplate("opslevel {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It applies the global
// flags, rebuilds the logger and tags the command context with a request id.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	flags := globals.Parse(cmd)

	if _, err := output.ParseFormat(flags.Output); err != nil {
		return err
	}

	if flags.ConfigFile != "" {
		config, err := LoadConfig(flags.ConfigFile)
		if err != nil {
			return err
		}
		a.reload(config)
	}

	a.config.UpdateFromFlags(flags.Verbose, flags.Quiet, flags.NoColor, flags.Output, flags.LogLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, a.logger)
	ctx = logging.WithRequestID(ctx, uuid.NewString())
	cmd.SetContext(ctx)

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Report commands
	rootCmd.AddCommand(maturity.NewCommand(a))
	rootCmd.AddCommand(report.NewCommand(a))

	// Sync commands
	rootCmd.AddCommand(export.NewCommand(a))
	rootCmd.AddCommand(update.NewCommand(a))
	rootCmd.AddCommand(synccmd.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
