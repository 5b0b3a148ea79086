package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/opslevel/internal/server/response"
	"github.com/agentstation/opslevel/pkg/logging"
)

// HandleServiceMaturity handles GET /api/v1/services/{alias}/maturity.
// With ?raw=true the platform's response data is returned undecoded.
// @Summary Service maturity
// @Description Rubric and maturity report of one service
// @Tags services
// @Produce json
// @Param alias path string true "Service alias"
// @Param raw query bool false "Return the undecoded response"
// @Success 200 {object} response.Response{data=opslevel.ServiceMaturity}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/services/{alias}/maturity [get].
func (h *Handlers) HandleServiceMaturity(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	raw, ok := boolQuery(w, r, "raw")
	if !ok {
		return
	}
	ctx := logging.WithAlias(r.Context(), alias)

	if raw {
		data, err := h.client.GetServiceMaturityByAliasRaw(ctx, alias)
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		response.OK(w, data)
		return
	}

	maturity, err := h.client.GetServiceMaturityByAlias(ctx, alias)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, maturity)
}

// HandleServicesReport handles GET /api/v1/services/report.
// @Summary Services report
// @Description Account wide service counts per rubric level
// @Tags services
// @Produce json
// @Param raw query bool false "Return the undecoded response"
// @Success 200 {object} response.Response{data=opslevel.ServicesReport}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/services/report [get].
func (h *Handlers) HandleServicesReport(w http.ResponseWriter, r *http.Request) {
	raw, ok := boolQuery(w, r, "raw")
	if !ok {
		return
	}

	if raw {
		data, err := h.client.GetServicesReportRaw(r.Context())
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		response.OK(w, data)
		return
	}

	report, err := h.client.GetServicesReport(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, report)
}

// boolQuery parses an optional boolean query parameter, writing a 400 on
// malformed values.
func boolQuery(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		response.BadRequest(w, "Invalid query parameter", name+" must be a boolean")
		return false, false
	}
	return b, true
}
