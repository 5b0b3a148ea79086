// Package graphql executes GraphQL documents against the platform proxy and
// maps every failure onto the pkg/errors taxonomy.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"

	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

const (
	errPrefix       = "graphql: "
	nonOKStatusText = "graphql: server returned a non-200 status code: "
)

// Request is a single GraphQL operation.
type Request struct {
	// Operation names the document for logs and errors.
	Operation string
	Query     string
	// Variables are sent as given; omit a key to leave a variable unset.
	Variables map[string]any
	Headers   map[string]string
}

// Executor sends GraphQL requests over HTTP.
type Executor struct {
	client   *graphql.Client
	endpoint string
	logger   *zerolog.Logger
}

// New creates an executor for endpoint. A nil httpClient uses
// http.DefaultClient and a nil logger the package default.
func New(endpoint string, httpClient *http.Client, logger *zerolog.Logger) *Executor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Default()
	}

	client := graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient))
	client.Log = func(s string) {
		// header dumps may carry credentials
		if strings.HasPrefix(s, ">> headers") {
			return
		}
		logger.Trace().Str("endpoint", endpoint).Msg(s)
	}

	return &Executor{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Endpoint returns the URL requests are posted to.
func (e *Executor) Endpoint() string {
	return e.endpoint
}

// Do executes req and decodes the response data into out.
func (e *Executor) Do(ctx context.Context, req Request, out any) error {
	gqlReq := graphql.NewRequest(req.Query)
	for k, v := range req.Variables {
		gqlReq.Var(k, v)
	}
	for k, v := range req.Headers {
		gqlReq.Header.Set(k, v)
	}
	if id := logging.RequestID(ctx); id != "" {
		gqlReq.Header.Set(constants.RequestIDHeader, id)
	}

	logger := logging.FromContext(ctx)
	start := time.Now()
	err := e.client.Run(ctx, gqlReq, out)

	event := logger.Debug().
		Str("operation", req.Operation).
		Dur("duration", time.Since(start))
	if err != nil {
		err = e.classify(req.Operation, err)
		event = event.Err(err)
	}
	event.Msg("graphql request")

	return err
}

// classify converts errors returned by the GraphQL client.
func (e *Executor) classify(op string, err error) error {
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Operation == "" {
			apiErr.Operation = op
		}
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &errors.TimeoutError{Operation: op, Message: err.Error(), Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, errors.ErrCanceled, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &errors.TimeoutError{Operation: op, Message: urlErr.Err.Error(), Err: err}
		}
		return &errors.APIError{
			Operation: op,
			Message:   urlErr.Err.Error(),
			Endpoint:  e.endpoint,
			Err:       err,
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return errors.WrapParse("json", "response", err)
	}

	msg := err.Error()
	if status, ok := strings.CutPrefix(msg, nonOKStatusText); ok {
		code, _ := strconv.Atoi(strings.TrimSpace(status))
		return &errors.APIError{
			Operation:  op,
			StatusCode: code,
			Message:    "response body is not a GraphQL payload",
			Endpoint:   e.endpoint,
			Err:        err,
		}
	}
	if remote, ok := strings.CutPrefix(msg, errPrefix); ok {
		return errors.NewGraphQLError(op, remote)
	}

	return &errors.APIError{Operation: op, Message: msg, Endpoint: e.endpoint, Err: err}
}
