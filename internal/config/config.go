// Package config loads host configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds the settings for a splitledger host.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Store selects the user/expense backend: memory or sqlite. Empty lets
	// StoreFor pick one per command.
	Store string `env:"STORE"`

	// DBPath is the SQLite database file, used when Store is sqlite.
	DBPath string `env:"DB_PATH" envDefault:"./data/splitledger.db"`

	// Metrics dumps Prometheus metrics to stdout when the host exits.
	Metrics bool `env:"METRICS" envDefault:"false"`
}

// Load reads an optional dotenv file and then parses the environment.
// A missing dotenv file is not an error; variables already set in the
// environment take precedence over the file.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	return Parse()
}

// Parse loads configuration from environment variables only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Store {
	case "", StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("invalid STORE %q: want %s or %s", c.Store, StoreMemory, StoreSQLite)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// StoreFor returns the backend to use for a CLI command. An explicit STORE
// wins. Otherwise demo runs in memory and every other command uses SQLite,
// since each invocation is a separate process and must see earlier writes.
func (c Config) StoreFor(command string) string {
	if c.Store != "" {
		return c.Store
	}
	if command == "demo" {
		return StoreMemory
	}
	return StoreSQLite
}
