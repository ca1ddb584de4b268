package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/w24010/delightful/pkg/config"
)

// Catalog backends.
const (
	CatalogBackendMemory   = "memory"
	CatalogBackendPostgres = "postgres"
)

// Geolocation providers.
const (
	GeoProviderClient = "client"
	GeoProviderIP     = "ip"
	GeoProviderNone   = "none"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart and address TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Kafka. An empty list disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Catalog
	CatalogBackend string `env:"CATALOG_BACKEND" envDefault:"memory"`
	CatalogMaxAge  int    `env:"CATALOG_CACHE_MAX_AGE" envDefault:"300"`
	CatalogSeed    bool   `env:"CATALOG_SEED" envDefault:"true"`

	// PostgreSQL, used by the postgres catalog backend
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"delightful"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"delightful"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"delightful"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Queries slower than this are logged at warn.
	SlowQuery time.Duration `env:"POSTGRES_SLOW_QUERY" envDefault:"200ms"`

	// Geolocation
	GeoProvider   string        `env:"GEO_PROVIDER" envDefault:"client"`
	GeoIPEndpoint string        `env:"GEO_IP_ENDPOINT" envDefault:"http://ip-api.com/json"`
	GeoTimeout    time.Duration `env:"GEO_TIMEOUT" envDefault:"10s"`
	GeoMaxAge     time.Duration `env:"GEO_MAX_AGE" envDefault:"5m"`

	// Rate limit of current-location lookups, per session
	LocateRateRPS   float64 `env:"LOCATE_RATE_RPS" envDefault:"1"`
	LocateRateBurst int     `env:"LOCATE_RATE_BURST" envDefault:"5"`

	// Orders
	OrderProcessingDelay time.Duration `env:"ORDER_PROCESSING_DELAY" envDefault:"2s"`
	ProgressTickInterval time.Duration `env:"PROGRESS_TICK_INTERVAL" envDefault:"3s"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Debug and CORS
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
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
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTL)
	}
	if !slices.Contains([]string{CatalogBackendMemory, CatalogBackendPostgres}, c.CatalogBackend) {
		return fmt.Errorf("CATALOG_BACKEND must be memory or postgres, got %q", c.CatalogBackend)
	}
	if !slices.Contains([]string{GeoProviderClient, GeoProviderIP, GeoProviderNone}, c.GeoProvider) {
		return fmt.Errorf("GEO_PROVIDER must be client, ip or none, got %q", c.GeoProvider)
	}
	if c.GeoProvider == GeoProviderIP && c.GeoIPEndpoint == "" {
		return fmt.Errorf("GEO_IP_ENDPOINT is required when GEO_PROVIDER=ip")
	}
	if c.GeoTimeout <= 0 {
		return fmt.Errorf("GEO_TIMEOUT must be positive, got %s", c.GeoTimeout)
	}
	if c.GeoMaxAge < 0 {
		return fmt.Errorf("GEO_MAX_AGE must not be negative, got %s", c.GeoMaxAge)
	}
	if c.LocateRateRPS <= 0 || c.LocateRateBurst < 1 {
		return fmt.Errorf("LOCATE_RATE_RPS and LOCATE_RATE_BURST must be positive")
	}
	if c.OrderProcessingDelay < 0 {
		return fmt.Errorf("ORDER_PROCESSING_DELAY must not be negative, got %s", c.OrderProcessingDelay)
	}
	if c.ProgressTickInterval <= 0 {
		return fmt.Errorf("PROGRESS_TICK_INTERVAL must be positive, got %s", c.ProgressTickInterval)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	return nil
}

// CartTTLDuration returns the cart TTL as a duration.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}
