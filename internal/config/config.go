package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file (optional) and applies
// environment overrides, then validates.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := cfg.parseFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  Duration{Duration: 15 * time.Second},
			WriteTimeout: Duration{Duration: 15 * time.Second},
			IdleTimeout:  Duration{Duration: 60 * time.Second},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Environment: "production",
		},
		KV: KVConfig{
			Backend:           "memory",
			MongoDBDatabase:   "agent_trust",
			MongoDBCollection: "kv",
		},
		Graph: GraphConfig{
			SnapshotKey: "graph:snapshot",
		},
		Payment: PaymentConfig{
			Timeout: Duration{Duration: 30 * time.Second},
		},
		RateLimit: RateLimitConfig{
			HourlyLimit: 100,
			BurstLimit:  300,
			BurstWindow: Duration{Duration: time.Minute},
		},
		Service: ServiceConfig{
			Name:    "agent-trust",
			Version: "dev",
		},
	}
}

func (c *Config) parseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
