package handlers

import (
	"context"
	"net/http"

	"github.com/agentstation/opslevel"
	"github.com/agentstation/opslevel/internal/server/response"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/errors"
	"github.com/agentstation/opslevel/pkg/logging"
)

// PendingUpdate is the body of a 202 response to an update request.
type PendingUpdate struct {
	Alias     string `json:"alias"`
	EntityRef string `json:"entityRef"`
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

// HandleExport handles POST /api/v1/entities/export.
// Errors the platform reports for the import are part of the returned data.
// @Summary Export entity
// @Description Import a catalog entity into the platform as a service
// @Tags entities
// @Accept json
// @Accept yaml
// @Produce json
// @Success 200 {object} response.Response{data=opslevel.ExportResult}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 413 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/entities/export [post].
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	entity, ok := h.readEntity(w, r)
	if !ok {
		return
	}

	result, err := h.client.ExportEntity(r.Context(), entity)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, result)
}

// HandleUpdate handles POST /api/v1/entities/update.
// Without ?wait=true the update runs after the response is written and the
// handler answers 202.
// @Summary Update service metadata
// @Description Derive language and framework for the entity's service and send them
// @Tags entities
// @Accept json
// @Accept yaml
// @Produce json
// @Param wait query bool false "Wait for the update to finish"
// @Success 200 {object} response.Response{data=opslevel.ServiceUpdateResult}
// @Success 202 {object} response.Response{data=handlers.PendingUpdate}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/entities/update [post].
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	wait, ok := boolQuery(w, r, "wait")
	if !ok {
		return
	}
	entity, ok := h.readEntity(w, r)
	if !ok {
		return
	}

	if wait {
		result, err := h.client.Reconcile(r.Context(), entity)
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		response.OK(w, result)
		return
	}

	// the request context ends with the response
	pending := h.client.UpdateService(context.WithoutCancel(r.Context()), entity)
	if _, err := pending.Result(); err != nil && !errors.Is(err, opslevel.ErrUpdatePending) {
		response.ErrorFromType(w, err)
		return
	}

	response.Accepted(w, PendingUpdate{
		Alias:     entity.Metadata.Name,
		EntityRef: catalog.StringifyEntityRef(entity),
		Status:    "pending",
		RequestID: logging.RequestID(r.Context()),
	})
}
