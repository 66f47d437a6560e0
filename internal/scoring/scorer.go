// Package scoring combines graph reputation, temporal signals,
// attestation signals, and on-chain-activity signals into a single
// composite trust score with a per-component breakdown.
package scoring

import (
	"math"
	"time"

	"github.com/Orac-G/agent-trust/internal/graph"
	"github.com/Orac-G/agent-trust/internal/reputation"
	"github.com/Orac-G/agent-trust/internal/screener"
)

// Component weights. They sum to 1.0; property tests reference these
// constants directly.
const (
	WeightPagerank     = 0.25
	WeightObservations = 0.15
	WeightAge          = 0.15
	WeightWallet       = 0.20
	WeightAttestation  = 0.10
	WeightRelations    = 0.10
	WeightSafety       = 0.05
)

// Signal shaping constants.
const (
	observationSaturation = 8.0  // active observations for ~63% density
	ageSaturationDays     = 25.0 // entity age for ~63% maturity
	relationSaturation    = 10.0 // relations for full connectedness
)

// Breakdown reports each weighted component, rounded to four decimals.
type Breakdown struct {
	Pagerank           float64 `json:"pagerank"`
	ObservationDensity float64 `json:"observation_density"`
	AgeFactor          float64 `json:"age_factor"`
	WalletActivity     float64 `json:"wallet_activity"`
	AttestationFactor  float64 `json:"attestation_factor"`
	RelationFactor     float64 `json:"relation_factor"`
	SafetyFactor       float64 `json:"safety_factor"`
}

// Signals reports the raw counts the components were derived from.
type Signals struct {
	Observations       int     `json:"observations"`
	AgeDays            float64 `json:"age_days"`
	SignedObservations int     `json:"signed_observations"`
	TrustRelationsIn   int     `json:"trust_relations_in"`
	TrustRelationsOut  int     `json:"trust_relations_out"`
	TotalRelations     int     `json:"total_relations"`
}

// Result is the scorer output for one entity.
type Result struct {
	Score     float64   `json:"trust_score"`
	Breakdown Breakdown `json:"breakdown"`
	Signals   Signals   `json:"signals"`
}

// Score computes the composite trust score for entity at instant now.
// safety is nil when the request carried no context.
func Score(entity *graph.Entity, snapshot *graph.Snapshot, vector reputation.Vector, safety *screener.Result, now time.Time) Result {
	active := 0
	signed := 0
	for _, obs := range entity.Observations {
		if !obs.Active(now) {
			continue
		}
		active++
		if obs.Signed() {
			signed++
		}
	}

	ageDays := now.Sub(entity.Created).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}

	trustIn, trustOut, total := 0, 0, 0
	for _, rel := range snapshot.Relations {
		isSource := rel.Source == entity.Name
		isTarget := rel.Target == entity.Name
		if !isSource && !isTarget {
			continue
		}
		total++
		if graph.IsTrustRelation(rel.Relation) {
			if isTarget {
				trustIn++
			}
			if isSource {
				trustOut++
			}
		}
	}

	pagerank := vector.Score(entity.Name)
	obsDensity := 1 - math.Exp(-float64(active)/observationSaturation)
	ageFactor := 1 - math.Exp(-ageDays/ageSaturationDays)
	wallet := walletActivity(entity, now)

	attestation := 0.0
	if signed > 0 {
		attestation = math.Min(1, 0.5+0.1*float64(signed))
	}

	relations := math.Min(1, float64(total)/relationSaturation)
	safetyFactor := safetyComponent(safety)

	composite := WeightPagerank*pagerank +
		WeightObservations*obsDensity +
		WeightAge*ageFactor +
		WeightWallet*wallet +
		WeightAttestation*attestation +
		WeightRelations*relations +
		WeightSafety*safetyFactor

	return Result{
		Score: round4(composite),
		Breakdown: Breakdown{
			Pagerank:           round4(pagerank),
			ObservationDensity: round4(obsDensity),
			AgeFactor:          round4(ageFactor),
			WalletActivity:     round4(wallet),
			AttestationFactor:  round4(attestation),
			RelationFactor:     round4(relations),
			SafetyFactor:       round4(safetyFactor),
		},
		Signals: Signals{
			Observations:       active,
			AgeDays:            round4(ageDays),
			SignedObservations: signed,
			TrustRelationsIn:   trustIn,
			TrustRelationsOut:  trustOut,
			TotalRelations:     total,
		},
	}
}

// safetyComponent weights the composite; the MALICIOUS verdict also
// hard-vetoes the recommendation downstream. The double coupling is
// intentional and covered by tests.
func safetyComponent(safety *screener.Result) float64 {
	if safety == nil {
		return 1.0
	}
	switch safety.Verdict {
	case screener.VerdictMalicious:
		return 0.0
	case screener.VerdictSuspicious:
		return 0.3
	default:
		return 1.0
	}
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
