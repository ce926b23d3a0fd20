package server

import (
	"context"
	"net/http"
	"time"

	"github.com/trailhead/trailhead/pkg/config"
	"github.com/trailhead/trailhead/pkg/health"
	"github.com/trailhead/trailhead/pkg/middleware/logging"
	"github.com/trailhead/trailhead/pkg/middleware/recovery"
	"github.com/trailhead/trailhead/pkg/middleware/requestid"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/observability/metrics"
	"github.com/trailhead/trailhead/pkg/server/router"
	"github.com/trailhead/trailhead/pkg/version"
)

// ManagementServer serves operational endpoints on a separate port:
// liveness, readiness, Prometheus metrics, and build info.
type ManagementServer struct {
	*Server
	healthRegistry  *health.Registry
	metricsRegistry *metrics.Registry
	serviceName     string
}

// NewManagementServer creates the management server with a lighter
// middleware stack than the public API.
func NewManagementServer(
	cfg config.ManagementConfig,
	serviceName string,
	r router.Router,
	log logger.Logger,
	healthRegistry *health.Registry,
	metricsRegistry *metrics.Registry,
) *ManagementServer {
	r.Use(
		requestid.RequestID(),
		logging.WithConfig(log, logging.Config{
			Enabled:              true,
			ExcludedPathPrefixes: []string{"/health", "/ready", "/metrics"},
		}),
		recovery.Recovery(log),
	)

	srv := &ManagementServer{
		Server: NewServer(Config{
			Port:         cfg.Port,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		}, r, log),
		healthRegistry:  healthRegistry,
		metricsRegistry: metricsRegistry,
		serviceName:     serviceName,
	}

	r.GET("/health", srv.handleHealth)
	r.GET("/ready", srv.handleReady)
	r.GET("/metrics", srv.handleMetrics)
	r.GET("/version", srv.handleVersion)

	return srv
}

// handleHealth is the liveness probe. It answers 200 without touching any
// dependency.
func (s *ManagementServer) handleHealth(c router.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "healthy",
	})
}

// handleReady runs the registered checks and answers 503 while any
// dependency is unhealthy.
func (s *ManagementServer) handleReady(c router.Context) error {
	result := s.healthRegistry.Check(c.Request().Context())
	if !result.IsHealthy() {
		return c.JSON(http.StatusServiceUnavailable, result)
	}
	return c.JSON(http.StatusOK, result)
}

// handleMetrics serves Prometheus metrics.
func (s *ManagementServer) handleMetrics(c router.Context) error {
	s.metricsRegistry.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

// handleVersion reports the build metadata stamped at link time.
func (s *ManagementServer) handleVersion(c router.Context) error {
	return c.JSON(http.StatusOK, version.Current(s.serviceName))
}

// Start starts the management server.
func (s *ManagementServer) Start(ctx context.Context) error {
	return s.Server.Start(ctx)
}

// Shutdown gracefully stops the management server.
func (s *ManagementServer) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
