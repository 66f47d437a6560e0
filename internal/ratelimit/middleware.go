// Package ratelimit enforces the per-IP hourly quota on the paid scoring
// endpoint, backed by counters in the shared KV store, plus a
// transport-level burst limiter for the whole router.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/Orac-G/agent-trust/internal/kv"
	"github.com/Orac-G/agent-trust/internal/logger"
	"github.com/Orac-G/agent-trust/internal/metrics"
)

// Hourly quota defaults. The window expires 3600s after its first
// increment, not on a wall-clock boundary.
const (
	DefaultHourlyLimit = 100
	WindowSeconds      = 3600
	counterPrefix      = "ratelimit:"
)

// Config holds rate limiting configuration.
type Config struct {
	// HourlyLimit is the per-IP permit count per rolling hour.
	HourlyLimit int

	// Bypass lists client IPs exempt from the hourly quota. This is
	// configuration, not code: operators maintain it without a deploy.
	Bypass []string

	// BurstLimit/BurstWindow guard the router as a whole against spikes
	// before any KV round-trip happens.
	BurstLimit  int
	BurstWindow time.Duration

	Metrics *metrics.Metrics
}

// DefaultConfig returns the reference limits.
func DefaultConfig() Config {
	return Config{
		HourlyLimit: DefaultHourlyLimit,
		BurstLimit:  300,
		BurstWindow: time.Minute,
	}
}

type limitResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// Hourly returns middleware enforcing the KV-backed per-IP quota.
// The permit is consumed before any downstream work, so a client that
// exhausts its quota never reaches the payment facilitator — and an
// upstream outage after the increment does not refund the permit.
func Hourly(store kv.Store, cfg Config) func(http.Handler) http.Handler {
	limit := cfg.HourlyLimit
	if limit <= 0 {
		limit = DefaultHourlyLimit
	}
	bypass := make(map[string]bool, len(cfg.Bypass))
	for _, ip := range cfg.Bypass {
		bypass[ip] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := logger.ClientIP(r)
			if bypass[ip] {
				next.ServeHTTP(w, r)
				return
			}

			count, err := store.Incr(r.Context(), counterPrefix+ip, WindowSeconds*time.Second)
			if err != nil {
				// A broken counter store must not take the service down.
				logger.FromContext(r.Context()).Warn().Err(err).Msg("ratelimit.counter_unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				if cfg.Metrics != nil {
					cfg.Metrics.ObserveRateLimit("hourly")
				}
				writeLimitExceeded(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Burst returns the router-wide httprate limiter.
func Burst(cfg Config) func(http.Handler) http.Handler {
	limit := cfg.BurstLimit
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := cfg.BurstWindow
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return logger.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Metrics != nil {
				cfg.Metrics.ObserveRateLimit("burst")
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(limitResponse{
				Error:             "Rate limit exceeded",
				RetryAfterSeconds: int(window.Seconds()),
			})
		}),
	)
}

func writeLimitExceeded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", WindowSeconds))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(limitResponse{
		Error:             "Rate limit exceeded",
		RetryAfterSeconds: WindowSeconds,
	})
}
