package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agentstation/opslevel/internal/server/handlers"
	"github.com/agentstation/opslevel/internal/server/middleware"
	"github.com/agentstation/opslevel/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(s.middleware()...)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Not found", "No route for "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.MethodNotAllowed(w, req.Method)
	})

	h := handlers.New(s.client, s.logger, s.app.Version(), s.config.MaxBodyBytes)
	s.registerRoutes(r, h)
	return r
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/health", h.HandleHealth)

	r.Route(s.config.PathPrefix, func(r chi.Router) {
		r.Get("/services/report", h.HandleServicesReport)
		r.Get("/services/{alias}/maturity", h.HandleServiceMaturity)
		r.Post("/entities/export", h.HandleExport)
		r.Post("/entities/update", h.HandleUpdate)
	})
}

// middleware returns the chain applied to every route, outermost first.
func (s *Server) middleware() []func(http.Handler) http.Handler {
	cfg := s.config

	chain := []func(http.Handler) http.Handler{
		chimw.RealIP,
		middleware.RequestID,
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowedOrigins = cfg.CORSOrigins
		chain = append(chain, middleware.CORS(corsConfig))
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		authConfig.HeaderName = cfg.AuthHeader
		chain = append(chain, middleware.Auth(authConfig, s.logger))
	}

	return chain
}
