package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/Orac-G/agent-trust/internal/graph"
	"github.com/Orac-G/agent-trust/internal/reputation"
	"github.com/Orac-G/agent-trust/internal/screener"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightPagerank + WeightObservations + WeightAge +
		WeightWallet + WeightAttestation + WeightRelations + WeightSafety
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weights sum to %v, want 1.0", sum)
	}
}

func TestScoreZeroSignalEntity(t *testing.T) {
	now := time.Now()
	entity := &graph.Entity{Name: "fresh", Created: now}
	snapshot := &graph.Snapshot{Entities: []graph.Entity{*entity}}
	vector := reputation.Vector{"fresh": 0.5}

	result := Score(entity, snapshot, vector, nil, now)

	b := result.Breakdown
	if b.Pagerank != 0.5 {
		t.Errorf("pagerank = %v, want 0.5", b.Pagerank)
	}
	for name, value := range map[string]float64{
		"observation_density": b.ObservationDensity,
		"age_factor":          b.AgeFactor,
		"wallet_activity":     b.WalletActivity,
		"attestation_factor":  b.AttestationFactor,
		"relation_factor":     b.RelationFactor,
	} {
		if value != 0 {
			t.Errorf("%s = %v, want 0 for a zero-signal entity", name, value)
		}
	}
	if b.SafetyFactor != 1.0 {
		t.Errorf("safety_factor = %v, want 1.0 without context", b.SafetyFactor)
	}

	want := WeightPagerank*0.5 + WeightSafety*1.0
	if math.Abs(result.Score-want) > 5e-4 {
		t.Errorf("score = %v, want ~%v", result.Score, want)
	}
}

func TestScoreCompositeMatchesBreakdown(t *testing.T) {
	now := time.Now()
	created := now.Add(-40 * 24 * time.Hour)
	sig := &graph.Signature{SignatureHex: "ab12"}
	entity := &graph.Entity{
		Name:    "orac",
		Created: created,
		Observations: []graph.Observation{
			{Text: "shipped the v2 scorer"},
			{Text: "audited by an external firm", Signature: sig},
			{Text: "on-chain activity: 120 transactions this month"},
		},
	}
	snapshot := &graph.Snapshot{
		Entities: []graph.Entity{*entity, {Name: "peer"}},
		Relations: []graph.Relation{
			{Source: "peer", Target: "orac", Relation: "trusts"},
			{Source: "orac", Target: "peer", Relation: "uses"},
			{Source: "orac", Target: "peer", Relation: "mentions"},
		},
	}
	vector := reputation.Vector{"orac": 0.9, "peer": 0.1}

	result := Score(entity, snapshot, vector, nil, now)

	b := result.Breakdown
	composite := WeightPagerank*b.Pagerank +
		WeightObservations*b.ObservationDensity +
		WeightAge*b.AgeFactor +
		WeightWallet*b.WalletActivity +
		WeightAttestation*b.AttestationFactor +
		WeightRelations*b.RelationFactor +
		WeightSafety*b.SafetyFactor
	if math.Abs(result.Score-composite) > 5e-4 {
		t.Errorf("score %v drifts from weighted breakdown %v", result.Score, composite)
	}

	s := result.Signals
	if s.Observations != 3 || s.SignedObservations != 1 {
		t.Errorf("observation signals = %+v", s)
	}
	if s.TrustRelationsIn != 1 || s.TrustRelationsOut != 1 || s.TotalRelations != 3 {
		t.Errorf("relation signals = %+v", s)
	}
	if math.Abs(s.AgeDays-40) > 0.01 {
		t.Errorf("age_days = %v, want ~40", s.AgeDays)
	}
}

func TestScoreExpiredObservationsExcluded(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	entity := &graph.Entity{
		Name:    "stale",
		Created: now.Add(-24 * time.Hour),
		Observations: []graph.Observation{
			{Text: "still valid"},
			{Text: "lapsed attestation", ExpiresAt: &past, Signature: &graph.Signature{SignatureHex: "cd"}},
		},
	}
	snapshot := &graph.Snapshot{Entities: []graph.Entity{*entity}}

	result := Score(entity, snapshot, reputation.Vector{}, nil, now)
	if result.Signals.Observations != 1 {
		t.Errorf("active observations = %d, want 1", result.Signals.Observations)
	}
	if result.Signals.SignedObservations != 0 {
		t.Errorf("expired signed observation counted: %+v", result.Signals)
	}
	if result.Breakdown.AttestationFactor != 0 {
		t.Errorf("attestation_factor = %v, want 0", result.Breakdown.AttestationFactor)
	}
}

func TestScoreFutureCreatedClampsAge(t *testing.T) {
	now := time.Now()
	entity := &graph.Entity{Name: "timeskew", Created: now.Add(48 * time.Hour)}
	snapshot := &graph.Snapshot{Entities: []graph.Entity{*entity}}

	result := Score(entity, snapshot, reputation.Vector{}, nil, now)
	if result.Signals.AgeDays != 0 {
		t.Errorf("age_days = %v, want 0 for future created", result.Signals.AgeDays)
	}
	if result.Breakdown.AgeFactor != 0 {
		t.Errorf("age_factor = %v, want 0", result.Breakdown.AgeFactor)
	}
}

func TestSafetyComponentVerdicts(t *testing.T) {
	cases := []struct {
		name   string
		safety *screener.Result
		want   float64
	}{
		{"no context", nil, 1.0},
		{"clean", &screener.Result{Verdict: screener.VerdictClean}, 1.0},
		{"suspicious", &screener.Result{Verdict: screener.VerdictSuspicious}, 0.3},
		{"malicious", &screener.Result{Verdict: screener.VerdictMalicious}, 0.0},
	}
	for _, tc := range cases {
		if got := safetyComponent(tc.safety); got != tc.want {
			t.Errorf("%s: safetyComponent = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestScoreAttestationSaturates(t *testing.T) {
	now := time.Now()
	sig := &graph.Signature{SignatureHex: "ee"}
	observations := make([]graph.Observation, 0, 8)
	for i := 0; i < 8; i++ {
		observations = append(observations, graph.Observation{Text: "signed claim", Signature: sig})
	}
	entity := &graph.Entity{Name: "attested", Created: now.Add(-time.Hour), Observations: observations}
	snapshot := &graph.Snapshot{Entities: []graph.Entity{*entity}}

	result := Score(entity, snapshot, reputation.Vector{}, nil, now)
	if result.Breakdown.AttestationFactor != 1.0 {
		t.Errorf("attestation_factor = %v, want saturated 1.0", result.Breakdown.AttestationFactor)
	}
}
