package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads and validates a Config.
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader on top of spf13/viper.
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a loader. configFile may be empty; envPrefix
// namespaces the environment variables, e.g. "TRAILHEAD".
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{configFile: configFile, envPrefix: envPrefix}
}

// Load resolves configuration with precedence ENV > file > defaults and
// validates the result.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (l *ViperLoader) setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("service.name", defaults.Service.Name)
	v.SetDefault("service.environment", defaults.Service.Environment)

	v.SetDefault("http.port", defaults.HTTP.Port)
	v.SetDefault("http.read_timeout", defaults.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", defaults.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", defaults.HTTP.IdleTimeout)
	v.SetDefault("http.request_timeout", defaults.HTTP.RequestTimeout)

	v.SetDefault("management.enabled", defaults.Management.Enabled)
	v.SetDefault("management.port", defaults.Management.Port)
	v.SetDefault("management.read_timeout", defaults.Management.ReadTimeout)
	v.SetDefault("management.write_timeout", defaults.Management.WriteTimeout)

	v.SetDefault("mongodb.url", defaults.MongoDB.URL)
	v.SetDefault("mongodb.database", defaults.MongoDB.Database)
	v.SetDefault("mongodb.connect_timeout", defaults.MongoDB.ConnectTimeout)
	v.SetDefault("mongodb.operation_timeout", defaults.MongoDB.OperationTimeout)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("auth.issuer", defaults.Auth.Issuer)
	v.SetDefault("auth.access_ttl", defaults.Auth.AccessTTL)
	v.SetDefault("auth.refresh_ttl", defaults.Auth.RefreshTTL)

	v.SetDefault("rate_limit.enabled", defaults.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", defaults.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", defaults.RateLimit.Burst)
	v.SetDefault("rate_limit.window", defaults.RateLimit.Window)
	v.SetDefault("rate_limit.redis_prefix", defaults.RateLimit.RedisPrefix)

	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", defaults.Tracing.Endpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("tracing.insecure", defaults.Tracing.Insecure)

	v.SetDefault("cors.enabled", defaults.CORS.Enabled)
	v.SetDefault("cors.allowed_origins", defaults.CORS.AllowedOrigins)
	v.SetDefault("cors.allow_credentials", defaults.CORS.AllowCredentials)
	v.SetDefault("cors.max_age", defaults.CORS.MaxAge)
}

// bindEnvVars binds every nested key explicitly so viper resolves them
// without AutomaticEnv surprises.
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.env("SERVICE_NAME"))
	v.BindEnv("service.environment", l.env("SERVICE_ENVIRONMENT"), l.env("ENVIRONMENT"))

	v.BindEnv("http.port", l.env("HTTP_PORT"))
	v.BindEnv("http.read_timeout", l.env("HTTP_READ_TIMEOUT"))
	v.BindEnv("http.write_timeout", l.env("HTTP_WRITE_TIMEOUT"))
	v.BindEnv("http.idle_timeout", l.env("HTTP_IDLE_TIMEOUT"))
	v.BindEnv("http.request_timeout", l.env("HTTP_REQUEST_TIMEOUT"))

	v.BindEnv("management.enabled", l.env("MGMT_ENABLED"))
	v.BindEnv("management.port", l.env("MGMT_PORT"))
	v.BindEnv("management.read_timeout", l.env("MGMT_READ_TIMEOUT"))
	v.BindEnv("management.write_timeout", l.env("MGMT_WRITE_TIMEOUT"))

	v.BindEnv("mongodb.url", l.env("MONGODB_URL"))
	v.BindEnv("mongodb.database", l.env("MONGODB_DATABASE"))
	v.BindEnv("mongodb.connect_timeout", l.env("MONGODB_CONNECT_TIMEOUT"))
	v.BindEnv("mongodb.operation_timeout", l.env("MONGODB_OPERATION_TIMEOUT"))

	v.BindEnv("logging.level", l.env("LOG_LEVEL"))
	v.BindEnv("logging.format", l.env("LOG_FORMAT"))

	v.BindEnv("auth.secret", l.env("AUTH_SECRET"))
	v.BindEnv("auth.issuer", l.env("AUTH_ISSUER"))
	v.BindEnv("auth.access_ttl", l.env("AUTH_ACCESS_TTL"))
	v.BindEnv("auth.refresh_ttl", l.env("AUTH_REFRESH_TTL"))

	v.BindEnv("rate_limit.enabled", l.env("RATE_LIMIT_ENABLED"))
	v.BindEnv("rate_limit.requests_per_second", l.env("RATE_LIMIT_RPS"))
	v.BindEnv("rate_limit.burst", l.env("RATE_LIMIT_BURST"))
	v.BindEnv("rate_limit.window", l.env("RATE_LIMIT_WINDOW"))
	v.BindEnv("rate_limit.redis_url", l.env("RATE_LIMIT_REDIS_URL"))
	v.BindEnv("rate_limit.redis_prefix", l.env("RATE_LIMIT_REDIS_PREFIX"))

	v.BindEnv("tracing.enabled", l.env("TRACING_ENABLED"))
	v.BindEnv("tracing.endpoint", l.env("TRACING_ENDPOINT"))
	v.BindEnv("tracing.sample_rate", l.env("TRACING_SAMPLE_RATE"))
	v.BindEnv("tracing.insecure", l.env("TRACING_INSECURE"))

	v.BindEnv("cors.enabled", l.env("CORS_ENABLED"))
	v.BindEnv("cors.allowed_origins", l.env("CORS_ALLOWED_ORIGINS"))
	v.BindEnv("cors.allow_credentials", l.env("CORS_ALLOW_CREDENTIALS"))
	v.BindEnv("cors.max_age", l.env("CORS_MAX_AGE"))
}

func (l *ViperLoader) env(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return strings.ToUpper(l.envPrefix) + "_" + name
}
