// Package handlers provides HTTP request handlers for the opslevel API.
package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/internal/server/response"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/constants"
	"github.com/agentstation/opslevel/pkg/errors"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client       opslevel.Client
	logger       *zerolog.Logger
	version      string
	maxBodyBytes int64
	startTime    time.Time
}

// New creates a new Handlers instance. A non-positive maxBodyBytes uses the
// default request body limit.
func New(client opslevel.Client, logger *zerolog.Logger, version string, maxBodyBytes int64) *Handlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.MaxRequestBodyBytes
	}
	return &Handlers{
		client:       client,
		logger:       logger,
		version:      version,
		maxBodyBytes: maxBodyBytes,
		startTime:    time.Now(),
	}
}

// readEntity decodes the single catalog entity in the request body. YAML
// bodies are accepted when the content type says so.
func (h *Handlers) readEntity(w http.ResponseWriter, r *http.Request) (*catalog.Entity, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w, fmt.Sprintf("entity payloads are limited to %d bytes", tooLarge.Limit))
			return nil, false
		}
		response.BadRequest(w, "Failed to read request body", err.Error())
		return nil, false
	}
	if len(data) == 0 {
		response.BadRequest(w, "Request body is empty", "Send a catalog entity as JSON or YAML")
		return nil, false
	}

	if isYAML(r.Header.Get("Content-Type")) {
		entities, err := catalog.Parse(data)
		if err != nil {
			response.BadRequest(w, "Invalid entity", err.Error())
			return nil, false
		}
		if len(entities) != 1 {
			response.BadRequest(w, "Invalid entity", "expected exactly one entity document")
			return nil, false
		}
		return entities[0], true
	}

	entity, err := catalog.ParseJSON(data)
	if err != nil {
		response.BadRequest(w, "Invalid entity", err.Error())
		return nil, false
	}
	return entity, true
}

func isYAML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return true
	}
	return false
}
