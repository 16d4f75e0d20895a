// Package config loads client configuration from a yaml file with
// environment overrides. A .env file in the working directory is honored
// when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the client's runtime configuration.
type Config struct {
	// AuthorityURL is the base URL of the remote authority.
	AuthorityURL string `yaml:"authority_url"`
	// RedisAddr enables the list cache when set.
	RedisAddr string `yaml:"redis_addr"`
	// CacheTTL bounds cached list responses. Zero disables storing.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// LogLevel is a logrus level name; defaults to info.
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from path (optional), then applies environment
// overrides: AUTHORITY_URL, REDIS_ADDR, CACHE_TTL, LOG_LEVEL.
func Load(path string) (Config, error) {
	// Missing .env files are fine; explicit config errors are not.
	_ = godotenv.Load()

	cfg := Config{
		CacheTTL: time.Minute,
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("AUTHORITY_URL"); v != "" {
		cfg.AuthorityURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid CACHE_TTL: %q", v)
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.AuthorityURL == "" {
		return Config{}, errors.New("authority_url is required")
	}
	return cfg, nil
}
