package opslevel_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/pkg/errors"
)

func TestNew(t *testing.T) {
	t.Run("requires a base URL", func(t *testing.T) {
		_, err := opslevel.New()
		var cfgErr *errors.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("appends the proxy path", func(t *testing.T) {
		client, err := opslevel.New(opslevel.WithBaseURL("https://backstage.example.com/"))
		require.NoError(t, err)
		assert.Equal(t, "https://backstage.example.com/api/proxy/opslevel/graphql", client.Endpoint())
	})

	t.Run("endpoint overrides base URL", func(t *testing.T) {
		client, err := opslevel.New(
			opslevel.WithBaseURL("https://backstage.example.com"),
			opslevel.WithEndpoint("https://api.opslevel.com/graphql"),
		)
		require.NoError(t, err)
		assert.Equal(t, "https://api.opslevel.com/graphql", client.Endpoint())
	})

	t.Run("frameworks default to a single empty name", func(t *testing.T) {
		client, err := opslevel.New(opslevel.WithBaseURL("http://localhost"))
		require.NoError(t, err)
		assert.Equal(t, []string{""}, client.Frameworks())
	})

	t.Run("frameworks are copied", func(t *testing.T) {
		frameworks := []string{"rails", "ruby"}
		client, err := opslevel.New(opslevel.WithBaseURL("http://localhost"), opslevel.WithFrameworks(frameworks...))
		require.NoError(t, err)

		frameworks[0] = "changed"
		got := client.Frameworks()
		assert.Equal(t, []string{"rails", "ruby"}, got)

		got[1] = "changed"
		assert.Equal(t, []string{"rails", "ruby"}, client.Frameworks())
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := opslevel.New(opslevel.WithBaseURL("http://localhost"), opslevel.WithTimeout(-time.Second))
		assert.True(t, errors.IsValidationError(err))

		_, err = opslevel.New(opslevel.WithBaseURL("http://localhost"), opslevel.WithHeader("", "x"))
		assert.True(t, errors.IsValidationError(err))

		_, err = opslevel.New(opslevel.WithBaseURL("http://localhost"), opslevel.WithTokenHeader(" "))
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := opslevel.NewFromConfig(opslevel.Config{})
		var cfgErr *errors.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("unset frameworks default", func(t *testing.T) {
		client, err := opslevel.NewFromConfig(opslevel.Config{BaseURL: "http://localhost:7007"})
		require.NoError(t, err)
		assert.Equal(t, []string{""}, client.Frameworks())
		assert.Equal(t, "http://localhost:7007/api/proxy/opslevel/graphql", client.Endpoint())
	})

	t.Run("token and headers are sent", func(t *testing.T) {
		platform := newFakePlatform(t)
		platform.onFixture("servicesReport", "services_report.json")

		client, err := opslevel.NewFromConfig(opslevel.Config{
			BaseURL:    platform.URL(),
			Frameworks: []string{"rails"},
			Token:      "proxy-token",
			Timeout:    5 * time.Second,
			Headers:    map[string]string{"X-Team": "platform"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"rails"}, client.Frameworks())

		_, err = client.GetServicesReport(t.Context())
		require.NoError(t, err)

		calls := platform.callsFor("servicesReport")
		require.Len(t, calls, 1)
		assert.Equal(t, "/api/proxy/opslevel/graphql", calls[0].Path)
		assert.Equal(t, "Bearer proxy-token", calls[0].Header.Get("Authorization"))
		assert.Equal(t, "platform", calls[0].Header.Get("X-Team"))
	})

	t.Run("token in a named header", func(t *testing.T) {
		platform := newFakePlatform(t)
		platform.onFixture("servicesReport", "services_report.json")

		client, err := opslevel.NewFromConfig(opslevel.Config{
			BaseURL:     platform.URL(),
			Token:       "api-token",
			TokenHeader: "X-Api-Key",
		})
		require.NoError(t, err)

		_, err = client.GetServicesReport(t.Context())
		require.NoError(t, err)

		calls := platform.callsFor("servicesReport")
		require.Len(t, calls, 1)
		assert.Equal(t, "api-token", calls[0].Header.Get("X-Api-Key"))
		assert.Empty(t, calls[0].Header.Get("Authorization"))
	})
}

func TestWithHTTPClient(t *testing.T) {
	platform := newFakePlatform(t)
	platform.onFixture("servicesReport", "services_report.json")

	var used bool
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used = true
		return http.DefaultTransport.RoundTrip(r)
	})

	client, err := opslevel.New(
		opslevel.WithBaseURL(platform.URL()),
		opslevel.WithHTTPClient(&http.Client{Transport: base}),
	)
	require.NoError(t, err)

	_, err = client.GetServicesReport(t.Context())
	require.NoError(t, err)
	assert.True(t, used)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
