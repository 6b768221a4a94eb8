package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// Invalid configuration is fatal.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}
	return cfg
}

// Parse builds the configuration from the current environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.NotifyBuffer <= 0 {
		return Config{}, fmt.Errorf("NOTIFY_BUFFER must be positive, got %d", cfg.NotifyBuffer)
	}
	if cfg.SweepInterval <= 0 || cfg.StaleAfter <= 0 {
		return Config{}, fmt.Errorf("SWEEP_INTERVAL and STALE_AFTER must be positive")
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return cfg, nil
}
