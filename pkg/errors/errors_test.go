package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/opslevel/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "service",
			ID:       "svc-a",
		}
		assert.Equal(t, "service with ID svc-a not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("service", "svc-a")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("metadata.name", "", "is required")
		assert.Equal(t, "validation failed for field metadata.name: is required", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "entity is nil"}
		assert.Equal(t, "validation failed: entity is nil", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		sentinel    error
		matches     bool
		wantMessage string
	}{
		{"rate limited", 429, pkgerrors.ErrRateLimited, true, "status 429"},
		{"unauthorized", 401, pkgerrors.ErrUnauthorized, true, "status 401"},
		{"forbidden", 403, pkgerrors.ErrUnauthorized, true, "status 403"},
		{"bad gateway", 502, pkgerrors.ErrUnavailable, true, "status 502"},
		{"bad request", 400, pkgerrors.ErrUnavailable, false, "status 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("serviceUpdate", tt.status, "boom")
			assert.Equal(t, tt.matches, errors.Is(err, tt.sentinel))
			assert.Contains(t, err.Error(), tt.wantMessage)
			assert.Contains(t, err.Error(), "serviceUpdate")
		})
	}

	t.Run("network failure", func(t *testing.T) {
		base := errors.New("connection refused")
		err := &pkgerrors.APIError{Message: "request failed", Err: base}
		assert.Equal(t, "API error during request: request failed", err.Error())
		assert.Equal(t, base, err.Unwrap())
		assert.False(t, pkgerrors.IsUnavailable(err))
	})
}

func TestGraphQLError(t *testing.T) {
	err := pkgerrors.NewGraphQLError("servicesReport", "field missing", "not allowed")
	assert.Equal(t, "graphql error in servicesReport: field missing; not allowed", err.Error())
	assert.True(t, pkgerrors.IsRemote(err))

	anon := &pkgerrors.GraphQLError{Messages: []string{"oops"}}
	assert.Equal(t, "graphql error: oops", anon.Error())
}

func TestRemoteValidationError(t *testing.T) {
	err := &pkgerrors.RemoteValidationError{Operation: "import", Messages: []string{"alias taken"}}
	assert.Equal(t, "import rejected by platform: alias taken", err.Error())
	assert.True(t, pkgerrors.IsRemote(err))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("client", "base URL is required", nil)
	assert.Equal(t, "configuration error in client: base URL is required", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestSyncError(t *testing.T) {
	t.Run("with step", func(t *testing.T) {
		base := errors.New("API unavailable")
		err := pkgerrors.NewSyncError("component:default/svc-a", "export", base)
		assert.Contains(t, err.Error(), "component:default/svc-a")
		assert.Contains(t, err.Error(), "during export")
		assert.Equal(t, base, err.Unwrap())
	})

	t.Run("without step", func(t *testing.T) {
		err := &pkgerrors.SyncError{EntityRef: "component:default/svc-b", Err: errors.New("x")}
		assert.NotContains(t, err.Error(), "during")
	})
}

func TestParseError(t *testing.T) {
	t.Run("with file and position", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "yaml",
			File:    "catalog-info.yaml",
			Line:    10,
			Column:  5,
			Message: "unexpected token",
		}
		assert.Contains(t, err.Error(), "catalog-info.yaml:10:5")
	})

	t.Run("format only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "json", Message: "syntax error"}
		assert.Equal(t, "json parse error: syntax error", err.Error())
	})

	t.Run("wrap", func(t *testing.T) {
		base := errors.New("EOF")
		wrapped := pkgerrors.WrapParse("json", "response", base)
		parseErr, ok := wrapped.(*pkgerrors.ParseError)
		require.True(t, ok)
		assert.Equal(t, "json", parseErr.Format)
		assert.Equal(t, base, parseErr.Unwrap())
	})
}

func TestTimeoutError(t *testing.T) {
	err := &pkgerrors.TimeoutError{Operation: "getServiceLanguage", Duration: "30s", Message: "deadline exceeded"}
	assert.Contains(t, err.Error(), "after 30s")
	assert.True(t, pkgerrors.IsTimeout(err))

	noDuration := &pkgerrors.TimeoutError{Operation: "import", Message: "deadline exceeded"}
	assert.NotContains(t, noDuration.Error(), "after")
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapValidation("field", nil))
		assert.Nil(t, pkgerrors.WrapIO("read", "file", nil))
		assert.Nil(t, pkgerrors.WrapResource("build", "request", "", nil))
		assert.Nil(t, pkgerrors.WrapParse("json", "", nil))
	})

	t.Run("WrapResource", func(t *testing.T) {
		err := pkgerrors.WrapResource("encode", "entity", "svc-a", errors.New("cycle"))
		resErr, ok := err.(*pkgerrors.ResourceError)
		require.True(t, ok)
		assert.Equal(t, "encode", resErr.Operation)
		assert.Equal(t, "failed to encode entity svc-a: cycle", err.Error())
	})

	t.Run("WrapIO", func(t *testing.T) {
		err := pkgerrors.WrapIO("read", "/tmp/entity.yaml", errors.New("permission denied"))
		ioErr, ok := err.(*pkgerrors.IOError)
		require.True(t, ok)
		assert.Equal(t, "/tmp/entity.yaml", ioErr.Path)
	})
}
