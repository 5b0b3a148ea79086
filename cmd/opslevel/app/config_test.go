package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
)

// isolate points HOME at an empty directory so a developer's
// ~/.opslevel.yaml does not leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
			os.Unsetenv(env)
		}
	}
}

// TestLoadConfig verifies defaults when nothing is configured.
func TestLoadConfig(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", config.BaseURL)
	}
	if config.Frameworks != nil {
		t.Errorf("Frameworks = %v, want nil", config.Frameworks)
	}
	if config.Timeout != constants.DefaultHTTPTimeout {
		t.Errorf("Timeout = %v, want %v", config.Timeout, constants.DefaultHTTPTimeout)
	}
	if config.ServerPort != constants.DefaultServerPort {
		t.Errorf("ServerPort = %d, want %d", config.ServerPort, constants.DefaultServerPort)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_File verifies an explicit YAML config file.
func TestConfig_File(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "opslevel.yaml")
	content := `backend:
  base_url: https://backstage.example.com
opslevel:
  frameworks:
    - rails
    - django
  timeout: 5s
  headers:
    x-team: platform
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.BaseURL != "https://backstage.example.com" {
		t.Errorf("BaseURL = %q", config.BaseURL)
	}
	if want := []string{"rails", "django"}; !reflect.DeepEqual(config.Frameworks, want) {
		t.Errorf("Frameworks = %v, want %v", config.Frameworks, want)
	}
	if config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", config.Timeout)
	}
	if config.Headers["x-team"] != "platform" {
		t.Errorf("Headers = %v", config.Headers)
	}
	if config.ServerPort != 9000 {
		t.Errorf("ServerPort = %d, want 9000", config.ServerPort)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}

	cc := config.ClientConfig()
	if cc.BaseURL != config.BaseURL || cc.Timeout != config.Timeout {
		t.Errorf("ClientConfig() = %+v", cc)
	}
}

// TestConfig_MissingFile verifies an explicit file must exist.
func TestConfig_MissingFile(t *testing.T) {
	isolate(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("LoadConfig() error = %v, want ConfigError", err)
	}
}

// TestConfig_EnvironmentVariables verifies environment variable loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("BACKEND_BASE_URL", " https://proxy.example.com ")
	t.Setenv("OPSLEVEL_FRAMEWORKS", "rails, django ,spring")
	t.Setenv("OPSLEVEL_OUTPUT", "json")
	t.Setenv("OPSLEVEL_VERBOSE", "true")
	t.Setenv("OPSLEVEL_TIMEOUT", "1m")
	t.Setenv("OPSLEVEL_TOKEN", "secret")
	t.Setenv("OPSLEVEL_TOKEN_HEADER", "X-Api-Key")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.BaseURL != "https://proxy.example.com" {
		t.Errorf("BaseURL = %q", config.BaseURL)
	}
	if want := []string{"rails", "django", "spring"}; !reflect.DeepEqual(config.Frameworks, want) {
		t.Errorf("Frameworks = %v, want %v", config.Frameworks, want)
	}
	if config.Output != "json" {
		t.Errorf("Output = %s, want json", config.Output)
	}
	if !config.Verbose {
		t.Error("OPSLEVEL_VERBOSE not loaded")
	}
	if config.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", config.Timeout)
	}
	cc := config.ClientConfig()
	if cc.Token != "secret" || cc.TokenHeader != "X-Api-Key" {
		t.Errorf("ClientConfig() token = %q header = %q", cc.Token, cc.TokenHeader)
	}
}

// TestConfig_UpdateFromFlags verifies flags take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Output: "yaml", LogLevel: "warn"}

	config.UpdateFromFlags(true, false, true, "json", "")
	if !config.Verbose || !config.NoColor {
		t.Errorf("bool flags not applied: %+v", config)
	}
	if config.Output != "json" {
		t.Errorf("Output = %s, want json", config.Output)
	}
	if config.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want warn", config.LogLevel)
	}
}
