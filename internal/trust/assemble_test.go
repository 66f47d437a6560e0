package trust

import (
	"testing"
	"time"

	"github.com/Orac-G/agent-trust/internal/graph"
	"github.com/Orac-G/agent-trust/internal/reputation"
	"github.com/Orac-G/agent-trust/internal/scoring"
	"github.com/Orac-G/agent-trust/internal/screener"
)

func TestTierCutoffs(t *testing.T) {
	cases := []struct {
		score float64
		tier  string
	}{
		{0.0, "unknown"},
		{0.19, "unknown"},
		{0.20, "new"},
		{0.39, "new"},
		{0.40, "emerging"},
		{0.59, "emerging"},
		{0.60, "established"},
		{0.79, "established"},
		{0.80, "trusted"},
		{0.94, "trusted"},
		{0.95, "verified"},
		{1.0, "verified"},
	}
	for _, tc := range cases {
		if got := Tier(tc.score); got != tc.tier {
			t.Errorf("Tier(%v) = %s, want %s", tc.score, got, tc.tier)
		}
	}
}

func TestRecommendThresholds(t *testing.T) {
	cases := []struct {
		score  float64
		safety *screener.Result
		want   string
	}{
		{0.80, nil, RecommendProceed},
		{0.50, nil, RecommendProceed},
		{0.49, nil, RecommendCaution},
		{0.25, nil, RecommendCaution},
		{0.24, nil, RecommendInsufficient},
		{0.0, nil, RecommendInsufficient},
		{0.50, &screener.Result{Verdict: screener.VerdictSuspicious}, RecommendProceed},
		{0.99, &screener.Result{Verdict: screener.VerdictMalicious}, RecommendAvoid},
		{0.0, &screener.Result{Verdict: screener.VerdictMalicious}, RecommendAvoid},
	}
	for _, tc := range cases {
		if got := Recommend(tc.score, tc.safety); got != tc.want {
			t.Errorf("Recommend(%v, %v) = %s, want %s", tc.score, tc.safety, got, tc.want)
		}
	}
}

func rankSnapshot(names ...string) *graph.Snapshot {
	entities := make([]graph.Entity, 0, len(names))
	for _, name := range names {
		entities = append(entities, graph.Entity{Name: name})
	}
	return &graph.Snapshot{Entities: entities}
}

func TestComputeRankOrdering(t *testing.T) {
	snapshot := rankSnapshot("a", "b", "c")
	vector := reputation.Vector{"a": 0.9, "b": 0.5, "c": 0.1}

	if rank := ComputeRank("a", snapshot, vector); rank.Position != 1 || rank.Total != 3 {
		t.Errorf("a rank = %+v, want 1/3", rank)
	}
	if rank := ComputeRank("b", snapshot, vector); rank.Position != 2 {
		t.Errorf("b rank = %+v, want position 2", rank)
	}
	if rank := ComputeRank("c", snapshot, vector); rank.Position != 3 {
		t.Errorf("c rank = %+v, want position 3", rank)
	}
}

func TestComputeRankTiesBreakByIterationOrder(t *testing.T) {
	snapshot := rankSnapshot("first", "second", "third")
	vector := reputation.Vector{"first": 0.5, "second": 0.5, "third": 0.5}

	if rank := ComputeRank("first", snapshot, vector); rank.Position != 1 {
		t.Errorf("first rank = %+v, want position 1", rank)
	}
	if rank := ComputeRank("second", snapshot, vector); rank.Position != 2 {
		t.Errorf("second rank = %+v, want position 2", rank)
	}
	if rank := ComputeRank("third", snapshot, vector); rank.Position != 3 {
		t.Errorf("third rank = %+v, want position 3", rank)
	}
}

func TestComputeRankLaterHigherScoreOutranks(t *testing.T) {
	snapshot := rankSnapshot("early", "late")
	vector := reputation.Vector{"early": 0.3, "late": 0.8}
	if rank := ComputeRank("early", snapshot, vector); rank.Position != 2 {
		t.Errorf("early rank = %+v, want position 2 behind later higher score", rank)
	}
}

func TestNeighborhoodFiltersTrustEdges(t *testing.T) {
	snapshot := &graph.Snapshot{
		Relations: []graph.Relation{
			{Source: "peer", Target: "orac", Relation: "trusts"},
			{Source: "orac", Target: "lib", Relation: "uses"},
			{Source: "orac", Target: "other", Relation: "mentions"},
			{Source: "stranger", Target: "elsewhere", Relation: "trusts"},
		},
	}
	network := Neighborhood("orac", snapshot)

	if len(network.TrustedBy) != 1 || network.TrustedBy[0].Source != "peer" {
		t.Errorf("trusted_by = %+v", network.TrustedBy)
	}
	if len(network.Trusts) != 1 || network.Trusts[0].Relation != "uses" {
		t.Errorf("trusts = %+v", network.Trusts)
	}
}

func TestNeighborhoodEmptySlicesNotNil(t *testing.T) {
	network := Neighborhood("loner", &graph.Snapshot{})
	if network.TrustedBy == nil || network.Trusts == nil {
		t.Error("neighborhood slices must marshal as [], not null")
	}
}

func TestAssembleFoundEnvelope(t *testing.T) {
	now := time.Now()
	entity := &graph.Entity{Name: "orac", EntityType: "agent", Created: now.Add(-72 * time.Hour)}
	snapshot := &graph.Snapshot{Entities: []graph.Entity{*entity}}
	vector := reputation.Vector{"orac": 0.5}
	result := scoring.Score(entity, snapshot, vector, nil, now)

	envelope := AssembleFound(entity, snapshot, vector, result, nil, "0xabc")

	if !envelope.Found || envelope.Entity != "orac" || envelope.EntityType != "agent" {
		t.Errorf("envelope identity fields: %+v", envelope)
	}
	if envelope.Breakdown == nil || envelope.Signals == nil || envelope.Rank == nil || envelope.TrustNetwork == nil {
		t.Error("found envelope must carry breakdown, signals, rank, and trust_network")
	}
	if envelope.Safety != nil {
		t.Error("safety must be nil when no context was screened")
	}
	if envelope.Payment.Amount != "0.01" || envelope.Payment.Currency != "USDC" || envelope.Payment.Payer != "0xabc" {
		t.Errorf("payment echo = %+v", envelope.Payment)
	}
	if envelope.Tier != Tier(result.Score) {
		t.Errorf("tier %s does not match score %v", envelope.Tier, result.Score)
	}
}

func TestAssembleUnknownEnvelope(t *testing.T) {
	envelope := AssembleUnknown("ghost", nil, "payer1")
	if envelope.Found {
		t.Error("unknown entity must report found=false")
	}
	if envelope.TrustScore != UnknownEntityScore {
		t.Errorf("trust_score = %v, want %v", envelope.TrustScore, UnknownEntityScore)
	}
	if envelope.Tier != "unknown" || envelope.Recommendation != RecommendInsufficient {
		t.Errorf("envelope = %+v", envelope)
	}
	if envelope.Breakdown != nil || envelope.Signals != nil || envelope.Rank != nil || envelope.TrustNetwork != nil {
		t.Error("unknown envelope must omit graph-derived sections")
	}
}

func TestAssembleUnknownMaliciousContextZeroes(t *testing.T) {
	safety := &screener.Result{Verdict: screener.VerdictMalicious, RiskScore: 70}
	envelope := AssembleUnknown("ghost", safety, "payer1")
	if envelope.TrustScore != 0 {
		t.Errorf("trust_score = %v, want 0 under MALICIOUS verdict", envelope.TrustScore)
	}
	if envelope.Recommendation != RecommendAvoid {
		t.Errorf("recommendation = %s, want AVOID", envelope.Recommendation)
	}
}
