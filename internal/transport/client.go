// Package transport provides the HTTP layer beneath the GraphQL executor:
// authentication, static headers, HTTP/2 and mapping of failed HTTP
// responses onto typed errors.
package transport

import (
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// Client is an http.RoundTripper that decorates requests with credentials and
// static headers and turns unusable responses into *errors.APIError.
type Client struct {
	base       http.RoundTripper
	auth       Authenticator
	credential string
	headers    http.Header
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAuth sets the authenticator and the credential it applies.
func WithAuth(auth Authenticator, credential string) Option {
	return func(c *Client) {
		c.auth = auth
		c.credential = credential
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithTimeout sets the overall request timeout of the http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithBase replaces the underlying round tripper.
func WithBase(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.base = rt
		}
	}
}

// New creates a new transport client.
func New(opts ...Option) *Client {
	c := &Client{
		auth:    &NoAuth{},
		headers: make(http.Header),
		timeout: constants.DefaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = newBaseTransport()
	}
	return c
}

// HTTPClient returns an http.Client that sends through c.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Transport: c, Timeout: c.timeout}
}

// RoundTrip implements http.RoundTripper.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	for key, values := range c.headers {
		if req.Header.Get(key) != "" {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.credential != "" {
		c.auth.Apply(req, c.credential)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	logging.FromContext(req.Context()).Trace().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("http round trip")

	if !failed(resp) {
		return resp, nil
	}
	return nil, responseError(req, resp)
}

// failed reports whether resp cannot carry a GraphQL payload. Client errors
// with a JSON body are passed through since GraphQL servers report query
// errors that way.
func failed(resp *http.Response) bool {
	switch code := resp.StatusCode; {
	case code < http.StatusBadRequest:
		return false
	case code >= http.StatusInternalServerError,
		code == http.StatusUnauthorized,
		code == http.StatusForbidden,
		code == http.StatusTooManyRequests:
		return true
	default:
		return !isJSON(resp.Header.Get("Content-Type"))
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func responseError(req *http.Request, resp *http.Response) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.FromContext(req.Context()).Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &errors.APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Endpoint:   req.URL.Redacted(),
	}
}

func newBaseTransport() http.RoundTripper {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if err := http2.ConfigureTransport(t); err != nil {
		logging.Warn().Err(err).Msg("http2 unavailable, falling back to HTTP/1.1")
	}
	return t
}
