package payment

// x402 protocol constants for the scoring endpoint. Price is a flat
// $0.01 in USDC base units (6 decimals) on either rail.
const (
	X402Version = 2

	SchemeExact = "exact"

	// NetworkEVM is Base mainnet in CAIP-2 form.
	NetworkEVM = "eip155:8453"
	// NetworkSolana is Solana mainnet-beta in CAIP-2 form.
	NetworkSolana = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"

	AmountBaseUnits   = "10000"
	AmountDisplay     = "0.01"
	Currency          = "USDC"
	TokenDecimals     = 6
	MaxTimeoutSeconds = 300
)

// Requirement is one payment option offered in the 402 document.
type Requirement struct {
	Scheme            string         `json:"scheme"`
	Network           string         `json:"network"`
	Amount            string         `json:"amount"`
	Asset             string         `json:"asset"`
	PayTo             string         `json:"payTo"`
	MaxTimeoutSeconds int            `json:"maxTimeoutSeconds"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// Resource describes the paid endpoint inside the 402 document.
type Resource struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// RequirementsDocument is the full 402 body advertising both payment
// options plus discovery metadata for agent bazaars.
type RequirementsDocument struct {
	X402Version int            `json:"x402Version"`
	Accepts     []Requirement  `json:"accepts"`
	Resource    Resource       `json:"resource"`
	Description string         `json:"description"`
	Extensions  map[string]any `json:"extensions"`
}

// Addresses carries the configured on-chain receiving identities.
type Addresses struct {
	EVMAsset     string
	EVMPayTo     string
	SolanaAsset  string
	SolanaPayTo  string
	SolanaFeePay string
}

const serviceDescription = "Trust score for a named agent in the knowledge graph. " +
	"Returns a composite reputation score, tier, recommendation, component breakdown, " +
	"trust neighborhood, and rank."

// BuildRequirements constructs the payment-requirements document for a
// scoring request, echoing the request URL as the protected resource.
func BuildRequirements(requestURL string, addrs Addresses) RequirementsDocument {
	evm := Requirement{
		Scheme:            SchemeExact,
		Network:           NetworkEVM,
		Amount:            AmountBaseUnits,
		Asset:             addrs.EVMAsset,
		PayTo:             addrs.EVMPayTo,
		MaxTimeoutSeconds: MaxTimeoutSeconds,
		Extra: map[string]any{
			"name":    Currency,
			"version": "2",
		},
	}

	solana := Requirement{
		Scheme:            SchemeExact,
		Network:           NetworkSolana,
		Amount:            AmountBaseUnits,
		Asset:             addrs.SolanaAsset,
		PayTo:             addrs.SolanaPayTo,
		MaxTimeoutSeconds: MaxTimeoutSeconds,
		Extra: map[string]any{
			"feePayer": addrs.SolanaFeePay,
			"decimals": TokenDecimals,
		},
	}

	return RequirementsDocument{
		X402Version: X402Version,
		Accepts:     []Requirement{evm, solana},
		Resource: Resource{
			URL:         requestURL,
			Description: serviceDescription,
			MimeType:    "application/json",
		},
		Description: serviceDescription,
		Extensions: map[string]any{
			"bazaar": map[string]any{
				"info": map[string]any{
					"input": map[string]any{
						"entity":  "Orac",
						"context": "optional free-text context to screen",
					},
					"output": map[string]any{
						"trust_score":    0.82,
						"tier":           "established",
						"recommendation": "PROCEED",
					},
				},
				"schema": map[string]any{
					"type":     "object",
					"required": []string{"entity"},
					"properties": map[string]any{
						"entity":  map[string]any{"type": "string", "description": "entity name to score"},
						"context": map[string]any{"type": "string", "description": "optional request context"},
					},
				},
			},
		},
	}
}
