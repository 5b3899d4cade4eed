package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the engined process configuration.
type Config struct {
	Addr            string        `env:"ENGINE_ADDR" envDefault:":8087"`
	DBPath          string        `env:"ENGINE_DB_PATH" envDefault:"nappbot.db"`
	LogLevel        string        `env:"ENGINE_LOG_LEVEL" envDefault:"info"`
	DecisionTimeout time.Duration `env:"ENGINE_DECISION_TIMEOUT" envDefault:"30s"`
	ReplayWindow    time.Duration `env:"ENGINE_REPLAY_WINDOW" envDefault:"60s"`
	SweepInterval   time.Duration `env:"ENGINE_SWEEP_INTERVAL" envDefault:"1m"`
	StartingBalance int64         `env:"ENGINE_STARTING_BALANCE" envDefault:"1000"`
	ShutdownTimeout time.Duration `env:"ENGINE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DecisionTimeout <= 0 {
		return nil, fmt.Errorf("decision timeout must be positive, got %s", cfg.DecisionTimeout)
	}
	if cfg.ReplayWindow <= 0 {
		return nil, fmt.Errorf("replay window must be positive, got %s", cfg.ReplayWindow)
	}
	return cfg, nil
}
