// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads.
type Config struct {
	Port       int           `env:"PORT"          envDefault:"8080"`
	DBDriver   string        `env:"DB_DRIVER"     envDefault:"sqlite"`
	DBDSN      string        `env:"DB_DSN"        envDefault:"./data/sharedpot.db"`
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"     envDefault:"24h"`
	KafkaTopic string        `env:"KAFKA_TOPIC"   envDefault:"sharedpot.transactions"`
	LogLevel   string        `env:"LOG_LEVEL"     envDefault:"info"`

	// KafkaBrokers is a comma-separated list. Empty disables publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// Load reads the given .env files, if they exist, then parses the
// environment. Variables already set win over .env values. With no files,
// ./.env is tried.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return Config{}, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
