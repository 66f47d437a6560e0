package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides applies environment variable overrides. Environment
// variables take precedence over YAML. All vars use the TRUST_ prefix.
func (c *Config) applyEnvOverrides() {
	setIfEnv(&c.Server.Address, "TRUST_SERVER_ADDRESS")
	setIfEnv(&c.Server.AdminMetricsAPIKey, "TRUST_ADMIN_METRICS_API_KEY")

	setIfEnv(&c.Logging.Level, "TRUST_LOG_LEVEL")
	setIfEnv(&c.Logging.Format, "TRUST_LOG_FORMAT")
	setIfEnv(&c.Logging.Environment, "TRUST_ENVIRONMENT")

	setIfEnv(&c.KV.Backend, "TRUST_KV_BACKEND")
	setIfEnv(&c.KV.MongoDBURL, "TRUST_KV_MONGODB_URL")
	setIfEnv(&c.KV.MongoDBDatabase, "TRUST_KV_MONGODB_DATABASE")
	setIfEnv(&c.KV.MongoDBCollection, "TRUST_KV_MONGODB_COLLECTION")
	setIfEnv(&c.KV.PostgresURL, "TRUST_KV_POSTGRES_URL")

	setIfEnv(&c.Graph.SnapshotKey, "TRUST_GRAPH_SNAPSHOT_KEY")

	setIfEnv(&c.Payment.FacilitatorURL, "TRUST_FACILITATOR_URL")
	setDurationIfEnv(&c.Payment.Timeout, "TRUST_FACILITATOR_TIMEOUT")
	setIfEnv(&c.Payment.EVMAsset, "TRUST_PAYMENT_EVM_ASSET")
	setIfEnv(&c.Payment.EVMPayTo, "TRUST_PAYMENT_EVM_PAY_TO")
	setIfEnv(&c.Payment.SolanaAsset, "TRUST_PAYMENT_SOLANA_ASSET")
	setIfEnv(&c.Payment.SolanaPayTo, "TRUST_PAYMENT_SOLANA_PAY_TO")
	setIfEnv(&c.Payment.SolanaFeePay, "TRUST_PAYMENT_SOLANA_FEE_PAYER")

	setIntIfEnv(&c.RateLimit.HourlyLimit, "TRUST_RATE_LIMIT_HOURLY")
	setIntIfEnv(&c.RateLimit.BurstLimit, "TRUST_RATE_LIMIT_BURST")
	setDurationIfEnv(&c.RateLimit.BurstWindow, "TRUST_RATE_LIMIT_BURST_WINDOW")
	if v := os.Getenv("TRUST_RATE_LIMIT_BYPASS"); v != "" {
		var bypass []string
		for _, ip := range strings.Split(v, ",") {
			if ip = strings.TrimSpace(ip); ip != "" {
				bypass = append(bypass, ip)
			}
		}
		c.RateLimit.Bypass = bypass
	}

	setIfEnv(&c.Service.Name, "TRUST_SERVICE_NAME")
	setIfEnv(&c.Service.Version, "TRUST_SERVICE_VERSION")
	setIfEnv(&c.Service.Author, "TRUST_SERVICE_AUTHOR")
}

func setIfEnv(dest *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dest = v
	}
}

func setIntIfEnv(dest *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dest = parsed
		}
	}
}

func setDurationIfEnv(dest *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dest = Duration{Duration: parsed}
		}
	}
}
