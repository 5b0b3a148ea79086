package app

import (
	"sync"
	"testing"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/pkg/errors"
)

func newTestApp(t *testing.T, config *Config) *App {
	t.Helper()
	isolate(t)
	app, err := New("v1.0.0", "abc1234", "2026-01-01", "test", WithConfig(config))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// TestApp_Client verifies the client is created once and shared.
func TestApp_Client(t *testing.T) {
	app := newTestApp(t, &Config{BaseURL: "http://backstage.test", Frameworks: []string{"rails"}})

	var (
		wg      sync.WaitGroup
		clients = make([]opslevel.Client, 8)
	)
	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := app.Client()
			if err != nil {
				t.Errorf("Client() failed: %v", err)
			}
			clients[i] = c
		}()
	}
	wg.Wait()

	for i, c := range clients {
		if c != clients[0] {
			t.Errorf("client %d differs from the first", i)
		}
	}
}

// TestApp_ClientRequiresBaseURL verifies a missing base URL is reported.
func TestApp_ClientRequiresBaseURL(t *testing.T) {
	app := newTestApp(t, &Config{})

	_, err := app.Client()
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Client() error = %v, want ConfigError", err)
	}
}

// TestApp_WithConfigNil verifies nil configs are rejected.
func TestApp_WithConfigNil(t *testing.T) {
	isolate(t)
	if _, err := New("dev", "", "", "", WithConfig(nil)); err == nil {
		t.Fatal("New() with nil config succeeded")
	}
}

// TestApp_Accessors verifies version information and server address.
func TestApp_Accessors(t *testing.T) {
	app := newTestApp(t, &Config{Output: "yaml", ServerHost: "0.0.0.0", ServerPort: 9000})

	if app.Version() != "v1.0.0" || app.Commit() != "abc1234" || app.BuiltBy() != "test" {
		t.Errorf("version info = %s %s %s", app.Version(), app.Commit(), app.BuiltBy())
	}
	if app.OutputFormat() != "yaml" {
		t.Errorf("OutputFormat() = %s, want yaml", app.OutputFormat())
	}
	if host, port := app.ServerAddress(); host != "0.0.0.0" || port != 9000 {
		t.Errorf("ServerAddress() = %s:%d", host, port)
	}
}

// TestApp_Execute verifies global flag handling on the root command.
func TestApp_Execute(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		app := newTestApp(t, &Config{})
		if err := app.Execute(t.Context(), []string{"version", "-o", "json", "-q"}); err != nil {
			t.Fatalf("Execute() failed: %v", err)
		}
		if app.Config().Output != "json" || !app.Config().Quiet {
			t.Errorf("flags not applied to config: %+v", app.Config())
		}
	})

	t.Run("invalid output", func(t *testing.T) {
		app := newTestApp(t, &Config{})
		err := app.Execute(t.Context(), []string{"version", "-o", "csv"})
		if !errors.IsValidationError(err) {
			t.Fatalf("Execute() error = %v, want validation error", err)
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		app := newTestApp(t, &Config{})
		err := app.Execute(t.Context(), []string{"version", "--config", "/nonexistent/opslevel.yaml"})
		var cfgErr *errors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Execute() error = %v, want ConfigError", err)
		}
	})

	t.Run("client reloads with config", func(t *testing.T) {
		app := newTestApp(t, &Config{BaseURL: "http://one.test"})
		first, err := app.Client()
		if err != nil {
			t.Fatal(err)
		}
		app.reload(&Config{BaseURL: "http://two.test"})
		second, err := app.Client()
		if err != nil {
			t.Fatal(err)
		}
		if first == second {
			t.Error("Client() returned the client built from the old config")
		}
	})
}
