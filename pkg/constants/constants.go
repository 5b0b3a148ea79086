// Package constants provides shared constants used throughout the opslevel codebase.
// This includes the proxy endpoint layout, header and annotation names, timeouts,
// and the limits applied by the CLI and HTTP server.
package constants

import "time"

// Endpoint constants describe where the GraphQL API lives behind the catalog backend.
const (
	// PlatformName is the proxy segment for the maturity platform.
	PlatformName = "opslevel"

	// GraphQLProxyPath is appended to the catalog backend base URL.
	GraphQLProxyPath = "/api/proxy/" + PlatformName + "/graphql"
)

// Header constants
const (
	// VisibilityHeader marks read queries as internal to the platform.
	VisibilityHeader = "GraphQL-Visibility"

	// VisibilityInternal is the value sent with VisibilityHeader.
	VisibilityInternal = "internal"

	// RequestIDHeader carries the request id on server responses.
	RequestIDHeader = "X-Request-ID"
)

// Catalog entity constants
const (
	// FrameworkAnnotation overrides tag based framework detection.
	FrameworkAnnotation = "opslevel.com/framework"

	// TypeTagPrefix prefixes the derived tag added on export.
	TypeTagPrefix = "type:"

	// UndefinedValue is what an absent spec type renders as in the derived tag.
	UndefinedValue = "undefined"

	// ServiceType replaces the entity spec type on export.
	ServiceType = "service"

	// DefaultNamespace is used when an entity carries no namespace.
	DefaultNamespace = "default"

	// DefaultEntityKind fills references given without a kind.
	DefaultEntityKind = "component"
)

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for GraphQL requests
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 5 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 5 * time.Second

	// ReadHeaderTimeout bounds how long the server waits for request headers
	ReadHeaderTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// DefaultSyncConcurrency is how many entities the batch syncer processes at once
	DefaultSyncConcurrency = 4

	// MaxSyncConcurrency caps the --concurrency flag
	MaxSyncConcurrency = 32

	// MaxRequestBodyBytes caps entity payloads accepted by the HTTP server (1 MB)
	MaxRequestBodyBytes = 1 << 20
)

// Server defaults
const (
	// DefaultServerHost is the default listen host
	DefaultServerHost = "localhost"

	// DefaultServerPort is the default listen port
	DefaultServerPort = 8090

	// DefaultPathPrefix is the prefix for versioned API routes
	DefaultPathPrefix = "/api/v1"
)
