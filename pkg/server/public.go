package server

import (
	"context"

	"github.com/trailhead/trailhead/pkg/auth"
	"github.com/trailhead/trailhead/pkg/config"
	"github.com/trailhead/trailhead/pkg/controller"
	authmiddleware "github.com/trailhead/trailhead/pkg/middleware/auth"
	"github.com/trailhead/trailhead/pkg/middleware/cors"
	"github.com/trailhead/trailhead/pkg/middleware/logging"
	metricsmiddleware "github.com/trailhead/trailhead/pkg/middleware/metrics"
	"github.com/trailhead/trailhead/pkg/middleware/ratelimit"
	"github.com/trailhead/trailhead/pkg/middleware/recovery"
	"github.com/trailhead/trailhead/pkg/middleware/requestid"
	timeoutmiddleware "github.com/trailhead/trailhead/pkg/middleware/timeout"
	"github.com/trailhead/trailhead/pkg/middleware/tracing"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// Controllers bundles the handlers the public API exposes.
type Controllers struct {
	Auth            *controller.AuthController
	Users           *controller.UserController
	Trails          *controller.TrailController
	Trips           *controller.TripController
	Recommendations *controller.RecommendationController
}

// PublicAPIServer is the server carrying application traffic.
type PublicAPIServer struct {
	*Server
	rateLimiter ratelimit.RateLimiter
}

// PublicOptions configures the public server's middleware stack.
type PublicOptions struct {
	HTTP      config.HTTPConfig
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	// TracingEnabled adds the tracing middleware. Requires a configured
	// global tracer provider.
	TracingEnabled bool
}

// NewPublicAPIServer builds the public server: middleware stack first,
// then the /v1 routes.
//
// The stack, outermost first: request ID, CORS, logging, recovery,
// metrics, tracing, timeout, bearer authentication. Rate limiting is
// applied per-route to the authentication endpoints.
func NewPublicAPIServer(
	opts PublicOptions,
	r router.Router,
	tokens *auth.TokenService,
	ctrl Controllers,
	log logger.Logger,
) *PublicAPIServer {
	managementPaths := []string{"/health", "/ready", "/metrics"}

	middlewares := []router.MiddlewareFunc{
		requestid.RequestID(),
	}
	if opts.CORS.Enabled {
		middlewares = append(middlewares, cors.CORS(cors.Config{
			AllowedOrigins:   opts.CORS.AllowedOrigins,
			AllowCredentials: opts.CORS.AllowCredentials,
			MaxAge:           opts.CORS.MaxAge,
		}))
	}
	middlewares = append(middlewares,
		logging.WithConfig(log, logging.Config{
			Enabled:              true,
			ExcludedPathPrefixes: managementPaths,
		}),
		recovery.Recovery(log),
		metricsmiddleware.Metrics(metricsmiddleware.Config{
			ExcludedPathPrefixes: managementPaths,
		}),
	)
	if opts.TracingEnabled {
		middlewares = append(middlewares, tracing.Tracing(tracing.Config{
			TracerName:           "http-server",
			ExcludedPathPrefixes: managementPaths,
		}))
	}
	middlewares = append(middlewares,
		timeoutmiddleware.Timeout(timeoutmiddleware.Config{
			Enabled: true,
			Default: opts.HTTP.RequestTimeout,
		}),
		authmiddleware.Bearer(tokens, log),
	)
	r.Use(middlewares...)

	srv := &PublicAPIServer{
		Server: NewServer(Config{
			Port:         opts.HTTP.Port,
			ReadTimeout:  opts.HTTP.ReadTimeout,
			WriteTimeout: opts.HTTP.WriteTimeout,
			IdleTimeout:  opts.HTTP.IdleTimeout,
		}, r, log),
	}

	var authLimit []router.MiddlewareFunc
	if opts.RateLimit.Enabled {
		srv.rateLimiter = buildRateLimiter(opts.RateLimit, log)
		authLimit = append(authLimit, ratelimit.RateLimit(srv.rateLimiter, ratelimit.Config{}))
	}

	registerRoutes(r, ctrl, authLimit)

	return srv
}

// buildRateLimiter prefers the Redis-backed limiter when a URL is
// configured, falling back to the in-process token bucket.
func buildRateLimiter(cfg config.RateLimitConfig, log logger.Logger) ratelimit.RateLimiter {
	if cfg.RedisURL != "" {
		limiter, err := ratelimit.NewRedisRateLimiter(ratelimit.RedisOptions{
			URL:    cfg.RedisURL,
			Prefix: cfg.RedisPrefix,
		}, cfg.Window, cfg.RequestsPerSecond, cfg.Burst, log)
		if err == nil {
			return limiter
		}
		log.Error("falling back to in-process rate limiter", "error", err)
	}
	return ratelimit.NewTokenBucketLimiter(cfg.RequestsPerSecond, cfg.Burst)
}

func registerRoutes(r router.Router, ctrl Controllers, authLimit []router.MiddlewareFunc) {
	v1 := r.Group("/v1")

	v1.POST("/auth/signup", ctrl.Auth.Signup, authLimit...)
	v1.POST("/auth/login", ctrl.Auth.Login, authLimit...)
	v1.POST("/auth/logout", ctrl.Auth.Logout)
	v1.POST("/auth/refresh", ctrl.Auth.Refresh, authLimit...)

	v1.GET("/users/me", ctrl.Users.GetProfile)
	v1.PUT("/users/me", ctrl.Users.UpdateProfile)
	v1.PUT("/users/me/preferences", ctrl.Users.UpdatePreferences)
	v1.GET("/users/me/statistics", ctrl.Users.GetStatistics)

	v1.GET("/trails", ctrl.Trails.Search)
	v1.POST("/trails", ctrl.Trails.Create)
	v1.GET("/trails/recommendations", ctrl.Trails.Recommendations)
	v1.GET("/trails/:id", ctrl.Trails.Get)
	v1.PUT("/trails/:id", ctrl.Trails.Update)
	v1.DELETE("/trails/:id", ctrl.Trails.Delete)
	v1.POST("/trails/:id/ratings", ctrl.Trails.Rate)

	v1.GET("/trips", ctrl.Trips.List)
	v1.POST("/trips", ctrl.Trips.Create)
	v1.GET("/trips/:id", ctrl.Trips.Get)
	v1.PUT("/trips/:id", ctrl.Trips.Update)
	v1.PUT("/trips/:id/status", ctrl.Trips.UpdateStatus)
	v1.DELETE("/trips/:id", ctrl.Trips.Delete)

	v1.GET("/recommendations", ctrl.Recommendations.List)
	v1.POST("/recommendations", ctrl.Recommendations.Generate)
	v1.DELETE("/recommendations/expired", ctrl.Recommendations.PurgeExpired)
}

// RateLimiter returns the limiter guarding the authentication routes, or
// nil when rate limiting is disabled. Callers use it to register health
// checks against the limiter's backing service.
func (s *PublicAPIServer) RateLimiter() ratelimit.RateLimiter {
	return s.rateLimiter
}

// Start starts the public API server.
func (s *PublicAPIServer) Start(ctx context.Context) error {
	return s.Server.Start(ctx)
}

// Shutdown stops the server and closes the distributed rate limiter when
// one is in use.
func (s *PublicAPIServer) Shutdown(ctx context.Context) error {
	if err := s.Server.Shutdown(ctx); err != nil {
		return err
	}
	if closer, ok := s.rateLimiter.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
