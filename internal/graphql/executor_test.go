package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/opslevel/internal/transport"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

type capturedRequest struct {
	Header http.Header
	Body   struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
}

func newServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestDoDecodesData(t *testing.T) {
	server, captured := newServer(t, http.StatusOK, "application/json",
		`{"data":{"account":{"service":{"name":"svc-a"}}}}`)

	logger := logging.NewTestLogger(t)
	exec := New(server.URL, nil, logger.Logger)

	var out struct {
		Account struct {
			Service struct {
				Name string `json:"name"`
			} `json:"service"`
		} `json:"account"`
	}
	ctx := logging.WithRequestID(context.Background(), "req-42")
	err := exec.Do(ctx, Request{
		Operation: "getServiceLanguage",
		Query:     "query getServiceLanguage($alias: String!) { account { service(alias: $alias) { name } } }",
		Variables: map[string]any{"alias": "svc-a"},
		Headers:   map[string]string{"GraphQL-Visibility": "internal"},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "svc-a", out.Account.Service.Name)
	assert.Equal(t, map[string]any{"alias": "svc-a"}, captured.Body.Variables)
	assert.Contains(t, captured.Body.Query, "getServiceLanguage")
	assert.Equal(t, "internal", captured.Header.Get("GraphQL-Visibility"))
	assert.Equal(t, "req-42", captured.Header.Get("X-Request-ID"))
	assert.Equal(t, server.URL, exec.Endpoint())
}

func TestDoRawMessage(t *testing.T) {
	server, captured := newServer(t, http.StatusOK, "application/json",
		`{"data":{"account":{"servicesReport":{"levelCounts":[]}}}}`)

	var raw json.RawMessage
	err := New(server.URL, nil, nil).Do(context.Background(), Request{Operation: "servicesReport", Query: "query servicesReport { account { servicesReport { levelCounts { serviceCount } } } }"}, &raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"account":{"servicesReport":{"levelCounts":[]}}}`, string(raw))
	assert.Nil(t, captured.Body.Variables)
}

func TestDoErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		contentType  string
		body         string
		viaTransport bool
		check        func(t *testing.T, err error)
	}{
		{
			name:         "graphql errors",
			status:       http.StatusOK,
			contentType:  "application/json",
			body:         `{"data":null,"errors":[{"message":"Field 'x' doesn't exist"}]}`,
			check: func(t *testing.T, err error) {
				var gqlErr *errors.GraphQLError
				require.ErrorAs(t, err, &gqlErr)
				assert.Equal(t, "import", gqlErr.Operation)
				assert.Equal(t, []string{"Field 'x' doesn't exist"}, gqlErr.Messages)
				assert.True(t, errors.IsRemote(err))
			},
		},
		{
			name:        "multiple graphql errors keep the first",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"data":null,"errors":[{"message":"first"},{"message":"second"}]}`,
			check: func(t *testing.T, err error) {
				var gqlErr *errors.GraphQLError
				require.ErrorAs(t, err, &gqlErr)
				assert.Equal(t, []string{"first"}, gqlErr.Messages)
			},
		},
		{
			name:         "malformed body",
			status:       http.StatusOK,
			contentType:  "application/json",
			body:         `not json`,
			check: func(t *testing.T, err error) {
				var parseErr *errors.ParseError
				assert.ErrorAs(t, err, &parseErr)
			},
		},
		{
			name:         "unexpected shape",
			status:       http.StatusOK,
			contentType:  "application/json",
			body:         `{"data":{"account":"nope"}}`,
			check: func(t *testing.T, err error) {
				var parseErr *errors.ParseError
				assert.ErrorAs(t, err, &parseErr)
			},
		},
		{
			name:         "non-200 without payload",
			status:       http.StatusBadRequest,
			contentType:  "text/plain",
			body:         "bad request",
			check: func(t *testing.T, err error) {
				var apiErr *errors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
				assert.Equal(t, "import", apiErr.Operation)
			},
		},
		{
			name:          "proxy unavailable through transport",
			status:        http.StatusServiceUnavailable,
			contentType:   "text/html",
			body:          "<html>down</html>",
			viaTransport: true,
			check: func(t *testing.T, err error) {
				var apiErr *errors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "import", apiErr.Operation)
				assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
				assert.True(t, errors.IsUnavailable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newServer(t, tt.status, tt.contentType, tt.body)
			var httpClient *http.Client
			if tt.viaTransport {
				httpClient = transport.New().HTTPClient()
			}

			var out struct {
				Account struct {
					Name string `json:"name"`
				} `json:"account"`
			}
			err := New(server.URL, httpClient, nil).Do(context.Background(), Request{Operation: "import", Query: "mutation import { x }"}, &out)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDoCanceled(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, "application/json", `{"data":{}}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := New(server.URL, nil, nil).Do(ctx, Request{Operation: "servicesReport", Query: "{}"}, &out)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestDoConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	var out map[string]any
	err := New(endpoint, nil, nil).Do(context.Background(), Request{Operation: "serviceUpdate", Query: "{}"}, &out)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, endpoint, apiErr.Endpoint)
}
