package server

import (
	"context"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/appid"
	"github.com/worklane/worklane-cli/internal/observability"
	"github.com/worklane/worklane-cli/internal/server/handlers"
)

// registerRoutes mounts every endpoint the server exposes.
func (s *Server) registerRoutes() {
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)
	s.router.Get("/version", handlers.VersionHandler)

	// MetricsHandler lives in this package so it can reuse HandleError.
	s.router.Get("/metrics", MetricsHandler)

	if s.api != nil {
		s.router.Route("/v1", func(r chi.Router) {
			r.Post("/resolve", s.api.ResolveHandler)
			r.Post("/resolve/batch", s.api.BatchResolveHandler)
			r.Post("/cache/invalidate", s.api.CacheInvalidateHandler)
			r.Get("/cache/stats", s.api.CacheStatsHandler)
			r.Get("/ratelimit", s.api.RateLimitHandler)
		})
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint mounts the gofulmen signal endpoint when an admin
// token is configured. Without a token the route does not exist.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger

	tokenVar := adminTokenVar()
	adminToken := os.Getenv(tokenVar)
	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + tokenVar + " set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil, // default global manager
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger == nil {
		return
	}
	logger.Info("Admin signal endpoint enabled",
		zap.String("path", "/admin/signal"),
		zap.String("auth", "bearer token"),
		zap.String("rate_limit", "10/min, burst 5"))
	logger.Warn("Admin endpoint enabled; keep this server off the public internet")
}

// adminTokenVar is the identity-prefixed env var holding the admin token.
func adminTokenVar() string {
	prefix := "WORKLANE_"
	if identity, err := appid.Get(context.Background()); err == nil && identity != nil && identity.EnvPrefix != "" {
		prefix = identity.EnvPrefix
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix + "ADMIN_TOKEN"
}
