// Package config loads service configuration from the environment.
// Each storefront service declares a struct with `env` tags and passes
// it to Load; validation of the parsed values stays in the service.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from environment variables according to its `env`
// tags, applying envDefault values for anything unset.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
