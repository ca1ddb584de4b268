package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct.
// Fields are mapped with `env` tags and may carry `envDefault` values:
//
//	type Config struct {
//	    HTTPPort int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
//	    TickRate time.Duration `env:"PROGRESS_TICK_INTERVAL" envDefault:"3s"`
//	}
//
// Durations, slices (comma separated) and floats are parsed by caarlos0/env.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
