package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Config file
	ConfigFile string

	// Catalog backend and platform client
	BaseURL     string
	Frameworks  []string // nil when unset
	Token       string
	TokenHeader string
	Timeout     time.Duration
	Headers     map[string]string

	// HTTP server
	ServerHost string
	ServerPort int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string][]string{
	"backend.base_url":      {"OPSLEVEL_BASE_URL", "BACKEND_BASE_URL"},
	"opslevel.frameworks":   {"OPSLEVEL_FRAMEWORKS"},
	"opslevel.token":        {"OPSLEVEL_TOKEN"},
	"opslevel.token_header": {"OPSLEVEL_TOKEN_HEADER"},
	"opslevel.timeout":      {"OPSLEVEL_TIMEOUT"},
	"server.host":           {"OPSLEVEL_SERVER_HOST"},
	"server.port":           {"OPSLEVEL_SERVER_PORT"},
	"output":                {"OPSLEVEL_OUTPUT"},
	"verbose":               {"OPSLEVEL_VERBOSE"},
	"quiet":                 {"OPSLEVEL_QUIET"},
	"no-color":              {"NO_COLOR"},
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or .opslevel.yaml in the home or working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetDefault("opslevel.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("server.host", constants.DefaultServerHost)
	v.SetDefault("server.port", constants.DefaultServerPort)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, errors.NewConfigError(key, "failed to bind environment", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".opslevel")

		// A missing config file is fine; a broken one is not.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "failed to read config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Output:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		BaseURL:     strings.TrimSpace(v.GetString("backend.base_url")),
		Frameworks:  frameworks(v),
		Token:       v.GetString("opslevel.token"),
		TokenHeader: strings.TrimSpace(v.GetString("opslevel.token_header")),
		Timeout:     v.GetDuration("opslevel.timeout"),
		Headers:     v.GetStringMapString("opslevel.headers"),

		ServerHost: v.GetString("server.host"),
		ServerPort: v.GetInt("server.port"),

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// ClientConfig returns the platform client settings.
func (c *Config) ClientConfig() opslevel.Config {
	return opslevel.Config{
		BaseURL:     c.BaseURL,
		Frameworks:  c.Frameworks,
		Token:       c.Token,
		TokenHeader: c.TokenHeader,
		Timeout:     c.Timeout,
		Headers:     c.Headers,
	}
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if output != "" {
		c.Output = output
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// frameworks reads the framework list. Environment values are comma
// separated; config files use a YAML sequence.
func frameworks(v *viper.Viper) []string {
	if !v.IsSet("opslevel.frameworks") {
		return nil
	}
	if s, ok := v.Get("opslevel.frameworks").(string); ok {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return v.GetStringSlice("opslevel.frameworks")
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
