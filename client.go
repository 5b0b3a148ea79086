// Package opslevel synchronizes software catalog entities with the OpsLevel
// service maturity platform through the catalog backend's GraphQL proxy.
//
// The client reads maturity reports, exports catalog entities as services and
// reconciles derived service metadata (primary language and framework).
//
// Example usage:
//
//	client, err := opslevel.New(
//	    opslevel.WithBaseURL("https://backstage.example.com"),
//	    opslevel.WithFrameworks("rails", "django", "spring"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	entities, err := catalog.LoadFile("catalog-info.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Export the entity, then reconcile its language and framework
//	result, err := client.ExportEntity(ctx, entities[0])
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.HTMLURL)
//
//	pending := client.UpdateService(ctx, entities[0])
//	update, err := pending.Wait(ctx)
package opslevel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/opslevel/internal/graphql"
	"github.com/agentstation/opslevel/internal/transport"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// ReportReader fetches maturity reports.
type ReportReader interface {
	// GetServiceMaturityByAlias returns the rubric and maturity details of a service.
	GetServiceMaturityByAlias(ctx context.Context, alias string) (*ServiceMaturity, error)

	// GetServiceMaturityByAliasRaw returns the undecoded response data.
	GetServiceMaturityByAliasRaw(ctx context.Context, alias string) (json.RawMessage, error)

	// GetServicesReport returns account wide service counts per level.
	GetServicesReport(ctx context.Context) (*ServicesReport, error)

	// GetServicesReportRaw returns the undecoded response data.
	GetServicesReportRaw(ctx context.Context) (json.RawMessage, error)
}

// Exporter pushes catalog entities to the platform.
type Exporter interface {
	// ExportEntity imports a copy of entity as a service. The entity passed
	// in is not modified.
	ExportEntity(ctx context.Context, entity *catalog.Entity) (*ExportResult, error)
}

// Reconciler updates derived service metadata.
type Reconciler interface {
	// GetServiceLanguages returns the language breakdown of the service's
	// first repository.
	GetServiceLanguages(ctx context.Context, alias string) ([]Language, error)

	// UpdateService starts reconciliation in the background and returns
	// a handle to await it.
	UpdateService(ctx context.Context, entity *catalog.Entity) *PendingUpdate

	// Reconcile runs reconciliation and waits for it.
	Reconcile(ctx context.Context, entity *catalog.Entity) (*ServiceUpdateResult, error)
}

// Client talks to the platform's GraphQL API.
type Client interface {
	ReportReader
	Exporter
	Reconciler

	// Endpoint returns the GraphQL endpoint in use.
	Endpoint() string

	// Frameworks returns a copy of the configured framework names.
	Frameworks() []string
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	exec    *graphql.Executor
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	endpoint, err := o.graphQLEndpoint()
	if err != nil {
		return nil, err
	}

	tOpts := []transport.Option{transport.WithTimeout(o.timeout)}
	if o.httpClient != nil {
		tOpts = append(tOpts, transport.WithBase(o.httpClient.Transport))
		if o.httpClient.Timeout > 0 {
			tOpts = append(tOpts, transport.WithTimeout(o.httpClient.Timeout))
		}
	}
	if o.token != "" {
		var auth transport.Authenticator = &transport.BearerAuth{}
		if o.tokenHeader != "" {
			auth = &transport.HeaderAuth{Header: o.tokenHeader}
		}
		tOpts = append(tOpts, transport.WithAuth(auth, o.token))
	}
	for k, v := range o.headers {
		tOpts = append(tOpts, transport.WithHeader(k, v))
	}
	httpClient := transport.New(tOpts...).HTTPClient()

	c := &client{
		options: o,
		exec:    graphql.New(endpoint, httpClient, o.logger),
	}

	c.logger(context.Background()).Debug().
		Str("endpoint", endpoint).
		Strs("frameworks", o.frameworks).
		Msg("opslevel client created")

	return c, nil
}

// Config mirrors the configuration keys the client reads from a config file.
type Config struct {
	// BaseURL is the catalog backend URL (backend.baseUrl).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Frameworks is the framework name list (opslevel.frameworks). Nil
	// means unset.
	Frameworks []string `mapstructure:"frameworks" yaml:"frameworks"`

	// Token is an optional bearer token for the proxy.
	Token string `mapstructure:"token" yaml:"token"`

	// TokenHeader sends Token in this header rather than as a bearer token.
	TokenHeader string `mapstructure:"token_header" yaml:"token_header"`

	// Timeout bounds each request. Zero keeps the default.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Headers are sent with every request.
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
}

// NewFromConfig creates a client from configuration values. Unset
// frameworks default to a single empty name.
func NewFromConfig(cfg Config, opts ...Option) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.NewConfigError("backend", "base_url is required", nil)
	}

	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithFrameworks(cfg.Frameworks...),
	}
	if cfg.Token != "" {
		base = append(base, WithBearerToken(cfg.Token))
	}
	if cfg.TokenHeader != "" {
		base = append(base, WithTokenHeader(cfg.TokenHeader))
	}
	if cfg.Timeout > 0 {
		base = append(base, WithTimeout(cfg.Timeout))
	}
	for k, v := range cfg.Headers {
		base = append(base, WithHeader(k, v))
	}
	return New(append(base, opts...)...)
}

// Endpoint returns the GraphQL endpoint in use.
func (c *client) Endpoint() string {
	return c.exec.Endpoint()
}

// Frameworks returns a copy of the configured framework names.
func (c *client) Frameworks() []string {
	return append([]string(nil), c.options.frameworks...)
}

// withLogger attaches the configured logger, if any, to ctx.
func (c *client) withLogger(ctx context.Context) context.Context {
	if c.options.logger != nil {
		return logging.WithLogger(ctx, c.options.logger)
	}
	return ctx
}

func (c *client) logger(ctx context.Context) *zerolog.Logger {
	return logging.FromContext(c.withLogger(ctx))
}

// readHeaders are attached to the report queries.
var readHeaders = map[string]string{
	constants.VisibilityHeader: constants.VisibilityInternal,
}
