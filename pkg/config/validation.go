package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the service cannot start
// with. It collects every problem rather than stopping at the first.
func (l *ViperLoader) Validate(cfg *Config) error {
	var problems []string

	if cfg.Service.Name == "" {
		problems = append(problems, "service.name must not be empty")
	}

	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("http.port must be in [1, 65535], got %d", cfg.HTTP.Port))
	}
	if cfg.Management.Enabled {
		if cfg.Management.Port < 1 || cfg.Management.Port > 65535 {
			problems = append(problems, fmt.Sprintf("management.port must be in [1, 65535], got %d", cfg.Management.Port))
		}
		if cfg.Management.Port == cfg.HTTP.Port {
			problems = append(problems, "management.port must differ from http.port")
		}
	}

	if cfg.MongoDB.URL == "" {
		problems = append(problems, "mongodb.url must not be empty")
	} else if !strings.HasPrefix(cfg.MongoDB.URL, "mongodb://") && !strings.HasPrefix(cfg.MongoDB.URL, "mongodb+srv://") {
		problems = append(problems, "mongodb.url must start with mongodb:// or mongodb+srv://")
	}
	if cfg.MongoDB.Database == "" {
		problems = append(problems, "mongodb.database must not be empty")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be one of debug, info, warn, error, got %q", cfg.Logging.Level))
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be json or console, got %q", cfg.Logging.Format))
	}

	if cfg.Auth.Secret == "" {
		problems = append(problems, "auth.secret must not be empty")
	} else if len(cfg.Auth.Secret) < 32 {
		problems = append(problems, "auth.secret must be at least 32 bytes")
	}
	if cfg.Auth.AccessTTL <= 0 {
		problems = append(problems, "auth.access_ttl must be positive")
	}
	if cfg.Auth.RefreshTTL <= cfg.Auth.AccessTTL {
		problems = append(problems, "auth.refresh_ttl must exceed auth.access_ttl")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			problems = append(problems, "rate_limit.requests_per_second must be positive")
		}
		if cfg.RateLimit.Burst < 0 {
			problems = append(problems, "rate_limit.burst cannot be negative")
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			problems = append(problems, "tracing.endpoint must not be empty when tracing is enabled")
		}
		if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
			problems = append(problems, fmt.Sprintf("tracing.sample_rate must be in [0, 1], got %g", cfg.Tracing.SampleRate))
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
