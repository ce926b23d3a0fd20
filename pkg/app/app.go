// Package app wires the service together and runs it. Startup is
// synchronous: every dependency is connected and verified before either
// server accepts a request.
package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/trailhead/trailhead/pkg/auth"
	"github.com/trailhead/trailhead/pkg/config"
	"github.com/trailhead/trailhead/pkg/controller"
	"github.com/trailhead/trailhead/pkg/health"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/observability/metrics"
	"github.com/trailhead/trailhead/pkg/observability/tracing"
	"github.com/trailhead/trailhead/pkg/recommend"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/server"
	gin "github.com/trailhead/trailhead/pkg/server/router/gin"
	"github.com/trailhead/trailhead/pkg/store/document/mongodb"
	"github.com/trailhead/trailhead/pkg/version"
)

// Run starts the service and blocks until the context is cancelled or a
// signal arrives. Initialization order: tracing, store, repositories,
// token service, engine, controllers, servers.
func Run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info := version.Current(cfg.Service.Name)
	log.Info("starting service",
		"service", info.Service,
		"version", info.Version,
		"environment", cfg.Service.Environment,
	)
	if _, ok := info.SemVer(); !ok && info.Version != version.DevelopmentVersion {
		log.Warn("build version is not valid semver", "version", info.Version)
	}

	tracerProvider, err := tracing.NewTracerProvider(ctx, tracing.TracerConfig{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: info.Version,
		Environment:    cfg.Service.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	store, err := mongodb.NewStore(mongodb.Config{
		URL:              cfg.MongoDB.URL,
		Database:         cfg.MongoDB.Database,
		ConnectTimeout:   cfg.MongoDB.ConnectTimeout,
		OperationTimeout: cfg.MongoDB.OperationTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("connect document store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("store close failed", "error", err)
		}
	}()

	users := repository.NewUserRepository(store, log)
	trails := repository.NewTrailRepository(store, log)
	trips := repository.NewTripRepository(store, log)
	recommendations := repository.NewRecommendationRepository(store, log)

	tokens, err := auth.NewTokenService(auth.Config{
		Secret:     cfg.Auth.Secret,
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, log)
	if err != nil {
		return fmt.Errorf("initialize token service: %w", err)
	}

	engine := recommend.NewEngine(trails, log)

	ctrl := server.Controllers{
		Auth:            controller.NewAuthController(users, tokens, log),
		Users:           controller.NewUserController(users, trips, recommendations, log),
		Trails:          controller.NewTrailController(trails, users, engine, log),
		Trips:           controller.NewTripController(trips, log),
		Recommendations: controller.NewRecommendationController(recommendations, trips, users, engine, log),
	}

	metricsRegistry := metrics.NewRegistry()
	healthRegistry := health.NewRegistry()
	healthRegistry.Register(health.NewLivenessChecker("service"))
	healthRegistry.Register(health.NewPingerChecker("mongodb", store, 0))

	publicServer := server.NewPublicAPIServer(server.PublicOptions{
		HTTP:           cfg.HTTP,
		CORS:           cfg.CORS,
		RateLimit:      cfg.RateLimit,
		TracingEnabled: cfg.Tracing.Enabled,
	}, gin.NewRouter(), tokens, ctrl, log)

	// The in-process token bucket has no backing service; only the
	// Redis-backed limiter is pingable.
	if pinger, ok := publicServer.RateLimiter().(health.Pinger); ok {
		healthRegistry.Register(health.NewPingerChecker("redis", pinger, 0))
	}

	errChan := make(chan error, 2)
	go func() {
		errChan <- publicServer.Start(ctx)
	}()

	var managementServer *server.ManagementServer
	if cfg.Management.Enabled {
		managementServer = server.NewManagementServer(
			cfg.Management, cfg.Service.Name, gin.NewRouter(), log,
			healthRegistry, metricsRegistry,
		)
		go func() {
			errChan <- managementServer.Start(ctx)
		}()
	}

	select {
	case err := <-errChan:
		stop()
		return err
	case <-ctx.Done():
	}

	// Context cancelled: each Start call shuts its server down on its own;
	// collect their results.
	var firstErr error
	expected := 1
	if managementServer != nil {
		expected = 2
	}
	for i := 0; i < expected; i++ {
		if err := <-errChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	log.Info("service stopped")
	return firstErr
}
