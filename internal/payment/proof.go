package payment

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ProofHeaders lists the accepted payment-proof headers in lookup order.
// When both are present the first wins.
var ProofHeaders = []string{"Payment-Signature", "X-Payment"}

// ProofKind discriminates the payment rail by payload shape. The proof
// itself stays opaque; cryptography is the facilitator's job.
type ProofKind int

const (
	KindEVM ProofKind = iota
	KindSolana
)

// Proof is a decoded payment proof ready for facilitator forwarding.
type Proof struct {
	// Decoded is the full client record, forwarded verbatim as
	// paymentPayload.
	Decoded map[string]any
	Kind    ProofKind
}

// ProofFromRequest extracts the raw proof header, if any.
func ProofFromRequest(r *http.Request) (string, bool) {
	for _, header := range ProofHeaders {
		if value := r.Header.Get(header); value != "" {
			return value, true
		}
	}
	return "", false
}

// DecodeProof base64-decodes and parses a presented proof, classifying
// it by payload shape: a payload.transaction without payload.authorization
// is Solana, anything else is EVM.
func DecodeProof(raw string) (*Proof, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("decode payment header: %w", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse payment header: %w", err)
	}

	kind := KindEVM
	if payload, ok := decoded["payload"].(map[string]any); ok {
		_, hasTransaction := payload["transaction"]
		_, hasAuthorization := payload["authorization"]
		if hasTransaction && !hasAuthorization {
			kind = KindSolana
		}
	}

	return &Proof{Decoded: decoded, Kind: kind}, nil
}

// SelectRequirement picks the offered requirement matching the proof's
// rail, falling back to the first offer when nothing matches.
func SelectRequirement(proof *Proof, accepts []Requirement) Requirement {
	for _, req := range accepts {
		if proof.Kind == KindSolana && strings.HasPrefix(req.Network, "solana:") {
			return req
		}
		if proof.Kind == KindEVM && strings.HasPrefix(req.Network, "eip155:") {
			return req
		}
	}
	return accepts[0]
}
