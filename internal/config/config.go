package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/brands-faas/pkg/config"
	"github.com/utafrali/brands-faas/pkg/httpclient"
	"github.com/utafrali/brands-faas/pkg/validator"
)

// Config holds all configuration for the local function server.
type Config struct {
	Environment  string `env:"ENVIRONMENT" envDefault:"development" validate:"required"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	FunctionName string `env:"FUNCTION_NAME" envDefault:"brands-list" validate:"required"`

	// HTTP server
	HTTPPort  int    `env:"PORT" envDefault:"3000"`
	StaticDir string `env:"STATIC_DIR" envDefault:"public"`

	// Brands function. Zero leaves the page size unbounded.
	BrandsMaxLimit int `env:"BRANDS_MAX_LIMIT" envDefault:"0" validate:"gte=0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Rate limiting, disabled when RateLimitRPS is zero.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0" validate:"gte=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"0" validate:"gte=0"`

	// Redis list cache
	CacheEnabled    bool   `env:"CACHE_ENABLED" envDefault:"false"`
	RedisHost       string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD" secret:"redis-password"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"60" validate:"gt=0"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0" validate:"gte=0,lte=1"`

	// Pprof is only reachable from these networks.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Base URL of a running gateway, used by the CLI "call" command.
	GatewayURL string `env:"GATEWAY_URL" envDefault:"http://localhost:3000" validate:"required,http_url"`

	// Gateway breaker. A zero failure count or ratio disables that rule.
	BreakerFailures     uint32        `env:"GATEWAY_BREAKER_FAILURES" envDefault:"5"`
	BreakerFailureRatio float64       `env:"GATEWAY_BREAKER_FAILURE_RATIO" envDefault:"0.5" validate:"gte=0,lte=1"`
	BreakerMinRequests  uint32        `env:"GATEWAY_BREAKER_MIN_REQUESTS" envDefault:"10"`
	BreakerWindow       time.Duration `env:"GATEWAY_BREAKER_WINDOW" envDefault:"1m" validate:"gte=0"`
	BreakerCooldown     time.Duration `env:"GATEWAY_BREAKER_COOLDOWN" envDefault:"30s" validate:"gt=0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load brands config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CacheEnabled && (c.RedisPort < 1 || c.RedisPort > 65535) {
		return fmt.Errorf("invalid Redis port: %d", c.RedisPort)
	}
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid brands config: %w", err)
	}
	return nil
}

// CacheTTL returns the list cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// GatewayBreaker returns the breaker settings for calls to GatewayURL.
func (c *Config) GatewayBreaker(name string) httpclient.BreakerConfig {
	return httpclient.BreakerConfig{
		Name:                name,
		ConsecutiveFailures: c.BreakerFailures,
		FailureRatio:        c.BreakerFailureRatio,
		MinRequests:         c.BreakerMinRequests,
		Window:              c.BreakerWindow,
		Cooldown:            c.BreakerCooldown,
		TrialCalls:          1,
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
