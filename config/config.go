// Package config loads the server's YAML configuration file.
// Only the fields the server currently needs are modeled; flags in
// cmd/server override whatever the file provides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so "30s"/"5m" literals work in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the structure of config.yaml.
type Config struct {
	Addr string `yaml:"addr"`
	DB   string `yaml:"db"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Auth struct {
		RoleCacheTTL Duration `yaml:"role_cache_ttl"`
	} `yaml:"auth"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{
		Addr: ":8080",
		DB:   "site-progress.db",
	}
	c.Auth.RoleCacheTTL = Duration(5 * time.Minute)
	return c
}

// Load parses the YAML configuration file at path, filling unset fields
// from the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if c.Addr == "" {
		c.Addr = Default().Addr
	}
	if c.DB == "" {
		c.DB = Default().DB
	}
	if c.Auth.RoleCacheTTL <= 0 {
		c.Auth.RoleCacheTTL = Default().Auth.RoleCacheTTL
	}
	slog.Info("loaded config", "path", path)
	return c, nil
}
