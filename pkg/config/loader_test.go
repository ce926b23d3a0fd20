package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/trailhead/trailhead/pkg/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRAILHEAD_AUTH_SECRET", testSecret)

	cfg, err := config.NewViperLoader("", "TRAILHEAD").Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Service.Name != "trailhead" {
		t.Errorf("service.name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Port != 8080 || cfg.Management.Port != 8081 {
		t.Errorf("ports = %d/%d", cfg.HTTP.Port, cfg.Management.Port)
	}
	if cfg.MongoDB.URL != "mongodb://localhost:27017" || cfg.MongoDB.Database != "trailhead" {
		t.Errorf("mongodb = %+v", cfg.MongoDB)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute || cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Errorf("auth ttls = %v/%v", cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerSecond != 50 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing must default off")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRAILHEAD_AUTH_SECRET", testSecret)
	t.Setenv("TRAILHEAD_HTTP_PORT", "9090")
	t.Setenv("TRAILHEAD_MONGODB_URL", "mongodb://db.internal:27017")
	t.Setenv("TRAILHEAD_LOG_LEVEL", "debug")
	t.Setenv("TRAILHEAD_SERVICE_ENVIRONMENT", "staging")

	cfg, err := config.NewViperLoader("", "TRAILHEAD").Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("http.port = %d, want the env override", cfg.HTTP.Port)
	}
	if cfg.MongoDB.URL != "mongodb://db.internal:27017" {
		t.Errorf("mongodb.url = %q", cfg.MongoDB.URL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.Service.Environment != "staging" {
		t.Errorf("service.environment = %q", cfg.Service.Environment)
	}
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	if _, err := config.NewViperLoader("", "TRAILHEAD").Load(); err == nil {
		t.Fatal("expected an error without an auth secret")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	t.Setenv("TRAILHEAD_AUTH_SECRET", testSecret)
	if _, err := config.NewViperLoader("/does/not/exist.yaml", "TRAILHEAD").Load(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	loader := config.NewViperLoader("", "TRAILHEAD")

	cfg := config.DefaultConfig()
	cfg.HTTP.Port = 0
	cfg.Management.Port = 0
	cfg.MongoDB.URL = "postgres://localhost"
	cfg.Logging.Level = "verbose"
	cfg.Auth.Secret = "short"
	cfg.Auth.RefreshTTL = cfg.Auth.AccessTTL

	err := loader.Validate(cfg)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"http.port",
		"management.port",
		"mongodb.url",
		"logging.level",
		"auth.secret must be at least 32 bytes",
		"auth.refresh_ttl",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error does not mention %q: %s", want, msg)
		}
	}
}

func TestValidateSamePortConflict(t *testing.T) {
	loader := config.NewViperLoader("", "TRAILHEAD")

	cfg := config.DefaultConfig()
	cfg.Auth.Secret = testSecret
	cfg.Management.Port = cfg.HTTP.Port

	err := loader.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "management.port must differ") {
		t.Fatalf("error = %v", err)
	}
}

func TestValidateAcceptsDefaultsWithSecret(t *testing.T) {
	loader := config.NewViperLoader("", "TRAILHEAD")

	cfg := config.DefaultConfig()
	cfg.Auth.Secret = testSecret
	if err := loader.Validate(cfg); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
}

func TestValidateTracingBounds(t *testing.T) {
	loader := config.NewViperLoader("", "TRAILHEAD")

	cfg := config.DefaultConfig()
	cfg.Auth.Secret = testSecret
	cfg.Tracing.Enabled = true
	cfg.Tracing.Endpoint = ""
	cfg.Tracing.SampleRate = 1.5

	err := loader.Validate(cfg)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "tracing.endpoint") || !strings.Contains(err.Error(), "tracing.sample_rate") {
		t.Errorf("error = %v", err)
	}
}
