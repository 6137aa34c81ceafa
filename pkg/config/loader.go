package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using its `env`
// tags.
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"4000"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWithPrefix is like Load but every tag is looked up with prefix prepended,
// so FOODAPI_HTTP_PORT fills `env:"HTTP_PORT"` when prefix is "FOODAPI_".
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config with prefix %q: %w", prefix, err)
	}
	return nil
}
