package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/Orac-G/agent-trust/internal/graph"
)

func entityWith(texts ...string) *graph.Entity {
	observations := make([]graph.Observation, 0, len(texts))
	for _, text := range texts {
		observations = append(observations, graph.Observation{Text: text})
	}
	return &graph.Entity{Name: "wallet-test", Observations: observations}
}

func TestWalletActivityNoSignals(t *testing.T) {
	if got := walletActivity(entityWith("shipped a release"), time.Now()); got != 0 {
		t.Errorf("walletActivity = %v, want 0", got)
	}
}

func TestWalletActivityTransactionCount(t *testing.T) {
	entity := entityWith("on-chain activity: 50 transactions in the last quarter")
	got := walletActivity(entity, time.Now())
	want := (1 - math.Exp(-1)) * 0.7
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("walletActivity = %v, want %v", got, want)
	}
}

func TestWalletActivityBalancePresence(t *testing.T) {
	entity := entityWith("on-chain snapshot: ETH balance 1.2")
	if got := walletActivity(entity, time.Now()); got != 0.15 {
		t.Errorf("walletActivity = %v, want 0.15 for balance presence", got)
	}

	entity = entityWith("on-chain snapshot: USDC balance 500")
	if got := walletActivity(entity, time.Now()); got != 0.15 {
		t.Errorf("walletActivity = %v, want 0.15 for USDC balance", got)
	}
}

func TestWalletActivityHistoryCapped(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entity := entityWith("first on-chain transaction: 2020-01-15")
	got := walletActivity(entity, now)
	if got != 0.15 {
		t.Errorf("walletActivity = %v, want history capped at 0.15", got)
	}
}

func TestWalletActivityHistoryPartial(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	firstTx := now.Add(-73 * 24 * time.Hour)
	entity := entityWith("first on-chain transaction: " + firstTx.Format("2006-01-02"))
	got := walletActivity(entity, now)
	// 73 days over the 730-day window, below the 0.15 cap
	if math.Abs(got-0.1) > 2e-3 {
		t.Errorf("walletActivity = %v, want ~0.1 for 73 days of history", got)
	}
}

func TestWalletActivityFutureFirstTransaction(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entity := entityWith("first on-chain transaction: 2030-01-01")
	if got := walletActivity(entity, now); got != 0 {
		t.Errorf("walletActivity = %v, want 0 for a future date", got)
	}
}

func TestWalletActivityMalformedCountIgnored(t *testing.T) {
	entity := entityWith("on-chain activity: many transactions")
	if got := walletActivity(entity, time.Now()); got != 0 {
		t.Errorf("walletActivity = %v, want 0 for unparseable count", got)
	}
}

func TestWalletActivityAllSignalsClamped(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entity := entityWith(
		"on-chain activity: 100000 transactions",
		"on-chain snapshot: USDC balance 9000",
		"first on-chain transaction: 2018-06-01",
	)
	got := walletActivity(entity, now)
	want := 0.7 + 0.15 + 0.15
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("walletActivity = %v, want ~%v", got, want)
	}
	if got > 1 {
		t.Errorf("walletActivity = %v exceeds clamp", got)
	}
}

func TestWalletActivityExpiredObservationIgnored(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	entity := &graph.Entity{
		Name: "lapsed",
		Observations: []graph.Observation{
			{Text: "on-chain activity: 500 transactions", ExpiresAt: &past},
		},
	}
	if got := walletActivity(entity, now); got != 0 {
		t.Errorf("walletActivity = %v, want 0 for expired evidence", got)
	}
}
