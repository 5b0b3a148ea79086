package opslevel

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Option configures a Client.
type Option func(*options) error

// options holds the client configuration.
type options struct {
	baseURL     string
	endpoint    string
	frameworks  []string
	httpClient  *http.Client
	timeout     time.Duration
	headers     map[string]string
	token       string
	tokenHeader string
	logger      *zerolog.Logger
}

// defaults returns the default configuration.
func defaults() *options {
	return &options{
		frameworks: []string{""},
		timeout:    constants.DefaultHTTPTimeout,
		headers:    make(map[string]string),
	}
}

// apply applies the given options.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// graphQLEndpoint returns the endpoint requests are posted to.
func (o *options) graphQLEndpoint() (string, error) {
	if o.endpoint != "" {
		return o.endpoint, nil
	}
	if o.baseURL == "" {
		return "", errors.NewConfigError("client", "base URL is required", nil)
	}
	return strings.TrimRight(o.baseURL, "/") + constants.GraphQLProxyPath, nil
}

// WithBaseURL sets the catalog backend URL. The GraphQL proxy path is
// appended to it.
func WithBaseURL(url string) Option {
	return func(o *options) error {
		o.baseURL = url
		return nil
	}
}

// WithEndpoint sets the full GraphQL endpoint, bypassing the proxy layout.
func WithEndpoint(url string) Option {
	return func(o *options) error {
		o.endpoint = url
		return nil
	}
}

// WithFrameworks sets the framework names matched against entity tags.
// A nil list keeps the default of a single empty name.
func WithFrameworks(frameworks ...string) Option {
	return func(o *options) error {
		if frameworks == nil {
			return nil
		}
		o.frameworks = append([]string(nil), frameworks...)
		return nil
	}
}

// WithHTTPClient sets the HTTP client. Its transport is used beneath the
// client's own header and error handling.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) error {
		o.httpClient = client
		return nil
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "must not be negative")
		}
		o.timeout = d
		return nil
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *options) error {
		if key == "" {
			return errors.NewValidationError("header", key, "name is required")
		}
		o.headers[key] = value
		return nil
	}
}

// WithBearerToken authenticates requests with a bearer token.
func WithBearerToken(token string) Option {
	return func(o *options) error {
		o.token = token
		return nil
	}
}

// WithTokenHeader sends the token verbatim in the named header instead of
// the Authorization bearer scheme.
func WithTokenHeader(name string) Option {
	return func(o *options) error {
		if strings.TrimSpace(name) == "" {
			return errors.NewValidationError("tokenHeader", name, "name is required")
		}
		o.tokenHeader = name
		return nil
	}
}

// WithLogger sets the logger used for client events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
