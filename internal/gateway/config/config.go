package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ftibo33/storefront/pkg/config"
)

// Config holds all configuration for the API gateway.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"GATEWAY_HTTP_PORT" envDefault:"5000"`

	// Backend service URLs. Empty means the registry default.
	UserServiceURL    string `env:"USER_SERVICE_URL" envDefault:""`
	ProductServiceURL string `env:"PRODUCT_SERVICE_URL" envDefault:""`
	OrderServiceURL   string `env:"ORDER_SERVICE_URL" envDefault:""`

	// Outbound HTTP client for relayed requests
	ClientTimeout time.Duration `env:"GATEWAY_CLIENT_TIMEOUT" envDefault:"15s"`

	// Health aggregation probe timeout, per service
	HealthProbeTimeout time.Duration `env:"GATEWAY_HEALTH_PROBE_TIMEOUT" envDefault:"2s"`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"100"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"200"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CORSAllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,POST,PUT,PATCH,DELETE,OPTIONS" envSeparator:","`
	CORSAllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envDefault:"Content-Type,X-Correlation-ID" envSeparator:","`
	CORSMaxAge         int      `env:"CORS_MAX_AGE" envDefault:"300"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load gateway config: %w", err)
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
	if c.RateLimitRPS < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", c.RateLimitRPS)
	}
	if c.RateLimitBurst < c.RateLimitRPS {
		return fmt.Errorf("RATE_LIMIT_BURST (%d) cannot be lower than RATE_LIMIT_RPS (%d)", c.RateLimitBurst, c.RateLimitRPS)
	}
	if c.ClientTimeout <= 0 {
		return fmt.Errorf("GATEWAY_CLIENT_TIMEOUT must be positive, got %s", c.ClientTimeout)
	}
	if c.HealthProbeTimeout <= 0 {
		return fmt.Errorf("GATEWAY_HEALTH_PROBE_TIMEOUT must be positive, got %s", c.HealthProbeTimeout)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
