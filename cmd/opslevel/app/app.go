// Package app provides the application context and dependency management
// for the opslevel CLI. It centralizes configuration, logging, and the
// platform client shared by every command.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/cmd/application"
	"github.com/agentstation/opslevel/internal/cmd/output"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the opslevel application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Platform client (lazy-initialized, singleton)
	mu     sync.RWMutex
	client opslevel.Client
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations and can be
// replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format, falling back to table
// on a terminal and JSON otherwise.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Output))
}

// ServerAddress returns the configured listen host and port for serve.
func (a *App) ServerAddress() (string, int) {
	return a.config.ServerHost, a.config.ServerPort
}

// Client returns the platform client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (opslevel.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := opslevel.NewFromConfig(a.config.ClientConfig(), opslevel.WithLogger(a.logger))
	if err != nil {
		return nil, errors.WrapResource("create", "client", a.config.BaseURL, err)
	}

	a.client = c
	return c, nil
}

// reload replaces the configuration and drops any client built from the
// previous one.
func (a *App) reload(config *Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config = config
	a.client = nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewConfigError("app", "config is nil", nil)
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(c opslevel.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
