package config

import (
	"fmt"

	"combatsim/meta"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config is the process configuration, read from COMBATSIM_* variables.
// Command-line flags override it.
type Config struct {
	LogLevel    string `env:"COMBATSIM_LOG_LEVEL" envDefault:"info"`
	Workers     int    `env:"COMBATSIM_WORKERS"`
	ListenAddr  string `env:"COMBATSIM_LISTEN_ADDR" envDefault:":8080"`
	CatalogPath string `env:"COMBATSIM_CATALOG"`
	OutputDir   string `env:"COMBATSIM_OUTPUT_DIR"`
	Trials      int    `env:"COMBATSIM_TRIALS"`
}

func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.Workers <= 0 {
		c.Workers = meta.GoRoutines
	}
	if _, err := c.Level(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Level parses the configured log level.
func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}
