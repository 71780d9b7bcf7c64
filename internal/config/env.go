package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "HUDDLE"

// parseEnv overlays cfg with HUDDLE_* variables. Unset variables keep the
// current value.
func parseEnv(cfg *Config) error {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("config: failed to process environment variables: %w", err)
	}
	return nil
}
