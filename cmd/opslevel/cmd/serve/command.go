// Package serve provides the HTTP API server command.
package serve

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/opslevel/cmd/application"
	"github.com/agentstation/opslevel/internal/server"
	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
)

// ServerDefaults is implemented by applications that carry a configured
// listen address. Flags given on the command line still win.
type ServerDefaults interface {
	ServerAddress() (host string, port int)
}

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()
	if sd, ok := app.(ServerDefaults); ok {
		if host, port := sd.ServerAddress(); host != "" && port > 0 {
			defaults.Host, defaults.Port = host, port
		}
	}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "sync",
		Short:   "Start the REST API server",
		Long: `Serve exposes maturity reports, entity export, and service updates over
HTTP so catalog tooling can call them without a GraphQL client.

Endpoints:
  GET  /health
  GET  /api/v1/services/report
  GET  /api/v1/services/{alias}/maturity[?raw=true]
  POST /api/v1/entities/export
  POST /api/v1/entities/update[?wait=true]

Updates return 202 Accepted unless wait=true is given.`,
		Example: `  # Start on the default port
  opslevel serve

  # Require an API key and allow a browser origin
  OPSLEVEL_API_KEY=secret opslevel serve --auth --cors-origins https://backstage.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := parseConfig(cmd)
			if err != nil {
				return err
			}

			logger := app.Logger()
			logger.Info().
				Str("host", cfg.Host).
				Int("port", cfg.Port).
				Str("prefix", cfg.PathPrefix).
				Bool("cors", cfg.CORSEnabled).
				Bool("auth", cfg.AuthEnabled).
				Msg("Starting API server")

			srv, err := server.New(app, cfg)
			if err != nil {
				return errors.WrapResource("create", "server", "", err)
			}

			// Serves until the signal context from main is canceled
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().Int("port", defaults.Port, "Server port")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Int64("max-body", defaults.MaxBodyBytes, "Maximum entity payload size in bytes")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated)")

	cmd.Flags().Bool("auth", false, "Enable API key authentication (key from OPSLEVEL_API_KEY)")
	cmd.Flags().String("auth-header", defaults.AuthHeader, "Authentication header name")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// parseConfig parses command flags into server configuration.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{
		Host:         mustGetString(cmd, "host"),
		Port:         mustGetInt(cmd, "port"),
		PathPrefix:   mustGetString(cmd, "prefix"),
		MaxBodyBytes: mustGetInt64(cmd, "max-body"),
		CORSEnabled:  mustGetBool(cmd, "cors"),
		CORSOrigins:  mustGetStringSlice(cmd, "cors-origins"),
		AuthEnabled:  mustGetBool(cmd, "auth"),
		AuthHeader:   mustGetString(cmd, "auth-header"),
		APIKey:       strings.TrimSpace(os.Getenv("OPSLEVEL_API_KEY")),
		ReadTimeout:  mustGetDuration(cmd, "read-timeout"),
		WriteTimeout: mustGetDuration(cmd, "write-timeout"),
		IdleTimeout:  mustGetDuration(cmd, "idle-timeout"),
	}

	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return server.Config{}, errors.NewValidationError("port", cfg.Port, "must be between 1 and 65535")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = constants.MaxRequestBodyBytes
	}
	return cfg, nil
}

// The mustGet helpers read flags defined in NewCommand; a lookup error is a
// programming error.

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetInt64(cmd *cobra.Command, name string) int64 {
	val, err := cmd.Flags().GetInt64(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
