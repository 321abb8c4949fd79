package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ftibo33/storefront/pkg/config"
)

// Config holds all configuration for the order service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"ORDER_HTTP_PORT" envDefault:"5003"`

	// Downstream service base URLs. Empty means the registry default.
	UserServiceURL    string `env:"USER_SERVICE_URL" envDefault:""`
	ProductServiceURL string `env:"PRODUCT_SERVICE_URL" envDefault:""`

	// Outbound HTTP client for saga calls. There is deliberately no retry
	// knob: reduce-stock is not idempotent and must never be replayed.
	ClientTimeout time.Duration `env:"ORDER_CLIENT_TIMEOUT" envDefault:"10s"`

	// Circuit breaker for saga calls
	BreakerMinRequests  uint32        `env:"ORDER_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerFailureRatio float64       `env:"ORDER_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerTimeout      time.Duration `env:"ORDER_BREAKER_TIMEOUT" envDefault:"30s"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load order config: %w", err)
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
	if c.ClientTimeout <= 0 {
		return fmt.Errorf("ORDER_CLIENT_TIMEOUT must be positive, got %s", c.ClientTimeout)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS cannot be empty")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
