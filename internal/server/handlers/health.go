package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/opslevel/internal/server/response"
)

// HandleHealth handles GET /health.
// @Summary Health check
// @Description Liveness probe. Does not call the platform.
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":   "healthy",
		"service":  "opslevel-api",
		"version":  h.version,
		"endpoint": h.client.Endpoint(),
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
	})
}
