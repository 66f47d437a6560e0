package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Orac-G/agent-trust/internal/graph"
)

// Wallet-activity parsing is defensive by design: observation text comes
// from upstream enumeration tools, and a malformed line contributes zero
// rather than failing the request.
var (
	txCountPattern = regexp.MustCompile(`(\d+) transactions`)
	txDatePattern  = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
)

const (
	txCountSaturation = 50.0
	txCountShare      = 0.7
	balanceShare      = 0.15
	historyShare      = 0.15
	historyFullDays   = 730.0
)

// walletActivity extracts the on-chain-activity subcomponent from the
// entity's active observation texts. Result is clamped to [0,1].
func walletActivity(entity *graph.Entity, now time.Time) float64 {
	activity := 0.0

	if text, ok := firstActiveText(entity, now, func(t string) bool {
		return strings.Contains(t, "on-chain activity:") && strings.Contains(t, "transactions")
	}); ok {
		if m := txCountPattern.FindStringSubmatch(text); m != nil {
			if txCount, err := strconv.Atoi(m[1]); err == nil {
				activity += (1 - math.Exp(-float64(txCount)/txCountSaturation)) * txCountShare
			}
		}
	}

	if _, ok := firstActiveText(entity, now, func(t string) bool {
		return strings.Contains(t, "on-chain") &&
			(strings.Contains(t, "ETH balance") || strings.Contains(t, "USDC balance"))
	}); ok {
		activity += balanceShare
	}

	if text, ok := firstActiveText(entity, now, func(t string) bool {
		return strings.Contains(t, "first on-chain transaction:")
	}); ok {
		if m := txDatePattern.FindStringSubmatch(text); m != nil {
			if firstTx, err := time.Parse("2006-01-02", m[1]); err == nil {
				days := now.Sub(firstTx).Hours() / 24
				if days < 0 {
					days = 0
				}
				activity += math.Min(historyShare, days/historyFullDays)
			}
		}
	}

	return math.Min(1, math.Max(0, activity))
}

// firstActiveText returns the first active observation text matching the
// predicate.
func firstActiveText(entity *graph.Entity, now time.Time, match func(string) bool) (string, bool) {
	for _, obs := range entity.Observations {
		if obs.Active(now) && match(obs.Text) {
			return obs.Text, true
		}
	}
	return "", false
}
