package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
)

var evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Validate checks the configuration for internal consistency. Payment
// addresses are validated up front so a typo fails the boot, not the
// first paid request.
func (c *Config) Validate() error {
	switch c.KV.Backend {
	case "memory":
	case "mongodb":
		if c.KV.MongoDBURL == "" {
			return fmt.Errorf("kv backend mongodb requires mongodb_url")
		}
	case "postgres":
		if c.KV.PostgresURL == "" {
			return fmt.Errorf("kv backend postgres requires postgres_url")
		}
	default:
		return fmt.Errorf("unknown kv backend %q (want mongodb, postgres, or memory)", c.KV.Backend)
	}

	if c.Graph.SnapshotKey == "" {
		return fmt.Errorf("graph snapshot_key is required")
	}

	if c.Payment.FacilitatorURL != "" {
		if !strings.HasPrefix(c.Payment.FacilitatorURL, "http://") && !strings.HasPrefix(c.Payment.FacilitatorURL, "https://") {
			return fmt.Errorf("facilitator_url must be an http(s) URL")
		}
	}

	if err := validateEVMAddress("evm_asset", c.Payment.EVMAsset); err != nil {
		return err
	}
	if err := validateEVMAddress("evm_pay_to", c.Payment.EVMPayTo); err != nil {
		return err
	}
	if err := validateSolanaAddress("solana_asset", c.Payment.SolanaAsset); err != nil {
		return err
	}
	if err := validateSolanaAddress("solana_pay_to", c.Payment.SolanaPayTo); err != nil {
		return err
	}
	if err := validateSolanaAddress("solana_fee_payer", c.Payment.SolanaFeePay); err != nil {
		return err
	}

	if c.RateLimit.HourlyLimit < 0 {
		return fmt.Errorf("rate limit hourly_limit must be non-negative")
	}

	return nil
}

func validateEVMAddress(field, value string) error {
	if value == "" {
		return nil
	}
	if !evmAddressPattern.MatchString(value) {
		return fmt.Errorf("payment %s is not a valid EVM address", field)
	}
	return nil
}

func validateSolanaAddress(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := solana.PublicKeyFromBase58(value); err != nil {
		return fmt.Errorf("payment %s is not a valid Solana address: %w", field, err)
	}
	return nil
}
