package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root service configuration, loaded from YAML with
// TRUST_* environment overrides.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	KV        KVConfig        `yaml:"kv"`
	Graph     GraphConfig     `yaml:"graph"`
	Payment   PaymentConfig   `yaml:"payment"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Service   ServiceConfig   `yaml:"service"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address            string   `yaml:"address"`
	ReadTimeout        Duration `yaml:"read_timeout"`
	WriteTimeout       Duration `yaml:"write_timeout"`
	IdleTimeout        Duration `yaml:"idle_timeout"`
	AdminMetricsAPIKey string   `yaml:"admin_metrics_api_key"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Environment string `yaml:"environment"`
}

// KVConfig selects and parameterizes the key-value backend.
type KVConfig struct {
	// Backend is one of "mongodb", "postgres", "memory".
	Backend           string `yaml:"backend"`
	MongoDBURL        string `yaml:"mongodb_url"`
	MongoDBDatabase   string `yaml:"mongodb_database"`
	MongoDBCollection string `yaml:"mongodb_collection"`
	PostgresURL       string `yaml:"postgres_url"`
}

// GraphConfig names the snapshot key in the KV store.
type GraphConfig struct {
	SnapshotKey string `yaml:"snapshot_key"`
}

// PaymentConfig holds the x402 facilitator binding and the receiving
// addresses advertised in the 402 document.
type PaymentConfig struct {
	FacilitatorURL string   `yaml:"facilitator_url"`
	Timeout        Duration `yaml:"timeout"`

	EVMAsset     string `yaml:"evm_asset"`
	EVMPayTo     string `yaml:"evm_pay_to"`
	SolanaAsset  string `yaml:"solana_asset"`
	SolanaPayTo  string `yaml:"solana_pay_to"`
	SolanaFeePay string `yaml:"solana_fee_payer"`
}

// RateLimitConfig holds quota settings. Bypass is configuration, not
// code, so operators can rotate exempt addresses without a deploy.
type RateLimitConfig struct {
	HourlyLimit int      `yaml:"hourly_limit"`
	Bypass      []string `yaml:"bypass"`
	BurstLimit  int      `yaml:"burst_limit"`
	BurstWindow Duration `yaml:"burst_window"`
}

// ServiceConfig holds identity fields surfaced on the landing page.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Author  string `yaml:"author"`
}

// Duration wraps time.Duration for YAML decoding of strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}
