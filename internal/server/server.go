package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/worklane/worklane-cli/internal/errors"
	"github.com/worklane/worklane-cli/internal/observability"
	"github.com/worklane/worklane-cli/internal/server/handlers"
	servermw "github.com/worklane/worklane-cli/internal/server/middleware"
)

// Server is the HTTP face of the resolver: health and version probes plus
// the /v1 resolution and cache-admin endpoints.
type Server struct {
	router *chi.Mux
	server *http.Server
	host   string
	port   int
	api    *handlers.ResolveAPI
}

// newRouter assembles the middleware chain and the fallback handlers all
// routes share. Request ids come first so metrics and recovery can
// correlate; recovery is registered last so it wraps the handler itself.
func newRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.ErrorHandler)
	r.Use(servermw.Recovery)

	// Unmatched routes and methods answer with the standard envelope.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	return r
}

// New creates an HTTP server wired to the given resolve API. A nil api
// registers only the health, version, and metrics endpoints.
func New(host string, port int, api *handlers.ResolveAPI) *Server {
	s := &Server{
		router: newRouter(),
		host:   host,
		port:   port,
		api:    api,
	}

	// Handlers route their failures through the shared responder.
	handlers.SetHTTPErrorResponder(HandleError)

	s.registerRoutes()
	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("host", s.host),
		zap.Int("port", s.port),
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router so tests can drive it without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.port
}
