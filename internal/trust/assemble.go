// Package trust maps composite scores onto tiers and recommendations and
// shapes the scoring response envelope.
package trust

import (
	"github.com/Orac-G/agent-trust/internal/graph"
	"github.com/Orac-G/agent-trust/internal/reputation"
	"github.com/Orac-G/agent-trust/internal/scoring"
	"github.com/Orac-G/agent-trust/internal/screener"
)

// Tier cutoffs; a tier is a total function of the score.
const (
	TierCutoffNew         = 0.20
	TierCutoffEmerging    = 0.40
	TierCutoffEstablished = 0.60
	TierCutoffTrusted     = 0.80
	TierCutoffVerified    = 0.95
)

// Recommendation cutoffs.
const (
	RecommendProceedAt = 0.50
	RecommendCautionAt = 0.25
)

// UnknownEntityScore is reported for entities absent from the graph
// (zeroed outright under a MALICIOUS verdict).
const UnknownEntityScore = 0.05

// Recommendation values.
const (
	RecommendProceed      = "PROCEED"
	RecommendCaution      = "CAUTION"
	RecommendInsufficient = "INSUFFICIENT_DATA"
	RecommendAvoid        = "AVOID"
)

// Tier resolves the tier label for a composite score.
func Tier(score float64) string {
	switch {
	case score < TierCutoffNew:
		return "unknown"
	case score < TierCutoffEmerging:
		return "new"
	case score < TierCutoffEstablished:
		return "emerging"
	case score < TierCutoffTrusted:
		return "established"
	case score < TierCutoffVerified:
		return "trusted"
	default:
		return "verified"
	}
}

// Recommend resolves the action recommendation. A MALICIOUS safety
// verdict vetoes the score outright.
func Recommend(score float64, safety *screener.Result) string {
	if safety != nil && safety.Verdict == screener.VerdictMalicious {
		return RecommendAvoid
	}
	switch {
	case score >= RecommendProceedAt:
		return RecommendProceed
	case score >= RecommendCautionAt:
		return RecommendCaution
	default:
		return RecommendInsufficient
	}
}

// Rank is the entity's 1-based position among all entities by reputation
// descending, ties broken by entity iteration order.
type Rank struct {
	Position int `json:"position"`
	Total    int `json:"total"`
}

// ComputeRank ranks the named entity within the snapshot.
func ComputeRank(name string, snapshot *graph.Snapshot, vector reputation.Vector) Rank {
	position := 1
	own := vector.Score(name)
	seen := false
	for _, entity := range snapshot.Entities {
		if entity.Name == name {
			seen = true
			continue
		}
		score := vector.Score(entity.Name)
		// Strictly higher scores always outrank; ties outrank only from
		// earlier iteration order.
		if score > own || (score == own && !seen) {
			position++
		}
	}
	return Rank{Position: position, Total: len(snapshot.Entities)}
}

// NetworkEdge is one trust-typed relation in the entity's neighborhood.
type NetworkEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Network is the entity's immediate trust neighborhood.
type Network struct {
	TrustedBy []NetworkEdge `json:"trusted_by"`
	Trusts    []NetworkEdge `json:"trusts"`
}

// Neighborhood extracts trust-typed relations touching the entity.
func Neighborhood(name string, snapshot *graph.Snapshot) Network {
	network := Network{TrustedBy: []NetworkEdge{}, Trusts: []NetworkEdge{}}
	for _, rel := range snapshot.Relations {
		if !graph.IsTrustRelation(rel.Relation) {
			continue
		}
		edge := NetworkEdge{Source: rel.Source, Target: rel.Target, Relation: rel.Relation}
		if rel.Target == name {
			network.TrustedBy = append(network.TrustedBy, edge)
		}
		if rel.Source == name {
			network.Trusts = append(network.Trusts, edge)
		}
	}
	return network
}

// PaymentEcho confirms the settled micropayment on every success.
type PaymentEcho struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Payer    string `json:"payer"`
}

// Envelope is the POST /v1/score success body.
type Envelope struct {
	Entity         string             `json:"entity"`
	EntityType     string             `json:"entity_type,omitempty"`
	Found          bool               `json:"found"`
	TrustScore     float64            `json:"trust_score"`
	Tier           string             `json:"tier"`
	Recommendation string             `json:"recommendation"`
	Breakdown      *scoring.Breakdown `json:"breakdown,omitempty"`
	Signals        *scoring.Signals   `json:"signals,omitempty"`
	Rank           *Rank              `json:"rank,omitempty"`
	TrustNetwork   *Network           `json:"trust_network,omitempty"`
	Safety         *screener.Result   `json:"safety"`
	Payment        PaymentEcho        `json:"payment"`
}

// AssembleFound builds the envelope for an entity present in the graph.
func AssembleFound(entity *graph.Entity, snapshot *graph.Snapshot, vector reputation.Vector, result scoring.Result, safety *screener.Result, payer string) Envelope {
	rank := ComputeRank(entity.Name, snapshot, vector)
	network := Neighborhood(entity.Name, snapshot)
	return Envelope{
		Entity:         entity.Name,
		EntityType:     entity.EntityType,
		Found:          true,
		TrustScore:     result.Score,
		Tier:           Tier(result.Score),
		Recommendation: Recommend(result.Score, safety),
		Breakdown:      &result.Breakdown,
		Signals:        &result.Signals,
		Rank:           &rank,
		TrustNetwork:   &network,
		Safety:         safety,
		Payment:        PaymentEcho{Amount: "0.01", Currency: "USDC", Payer: payer},
	}
}

// AssembleUnknown builds the minimal envelope for an entity absent from
// the graph.
func AssembleUnknown(name string, safety *screener.Result, payer string) Envelope {
	score := UnknownEntityScore
	recommendation := RecommendInsufficient
	if safety != nil && safety.Verdict == screener.VerdictMalicious {
		score = 0
		recommendation = RecommendAvoid
	}
	return Envelope{
		Entity:         name,
		Found:          false,
		TrustScore:     score,
		Tier:           "unknown",
		Recommendation: recommendation,
		Safety:         safety,
		Payment:        PaymentEcho{Amount: "0.01", Currency: "USDC", Payer: payer},
	}
}
