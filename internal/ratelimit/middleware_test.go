package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Orac-G/agent-trust/internal/kv"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(ip string) *http.Request {
	r := httptest.NewRequest("POST", "/v1/score", nil)
	r.RemoteAddr = ip + ":54321"
	return r
}

func TestHourlyAllowsUpToLimit(t *testing.T) {
	store := kv.NewMemoryStore()
	calls := 0
	handler := Hourly(store, Config{HourlyLimit: 3})(okHandler(&calls))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
	}
	if calls != 3 {
		t.Errorf("downstream calls = %d, want 3", calls)
	}
}

func TestHourlyRejectsOverLimit(t *testing.T) {
	store := kv.NewMemoryStore()
	calls := 0
	handler := Hourly(store, Config{HourlyLimit: 2})(okHandler(&calls))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("203.0.113.7"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if calls != 2 {
		t.Errorf("downstream reached %d times, want 2", calls)
	}
	if got := rec.Header().Get("Retry-After"); got != "3600" {
		t.Errorf("Retry-After = %q, want 3600", got)
	}

	var body limitResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Rate limit exceeded" || body.RetryAfterSeconds != 3600 {
		t.Errorf("body = %+v", body)
	}
}

func TestHourlyTracksPerIP(t *testing.T) {
	store := kv.NewMemoryStore()
	calls := 0
	handler := Hourly(store, Config{HourlyLimit: 1})(okHandler(&calls))

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("203.0.113.7"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("198.51.100.9"))
	if rec.Code != http.StatusOK {
		t.Errorf("second IP blocked: status %d", rec.Code)
	}
}

func TestHourlyWindowResets(t *testing.T) {
	store := kv.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	calls := 0
	handler := Hourly(store, Config{HourlyLimit: 1})(okHandler(&calls))

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("203.0.113.7"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside the window, got %d", rec.Code)
	}

	now = now.Add(time.Hour + time.Second)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
	if rec.Code != http.StatusOK {
		t.Errorf("expected fresh window, got %d", rec.Code)
	}
}

func TestHourlyBypassList(t *testing.T) {
	store := kv.NewMemoryStore()
	calls := 0
	handler := Hourly(store, Config{HourlyLimit: 1, Bypass: []string{"203.0.113.7"}})(okHandler(&calls))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
		if rec.Code != http.StatusOK {
			t.Fatalf("bypassed IP limited on request %d", i+1)
		}
	}
	if _, err := store.Get(context.Background(), "ratelimit:203.0.113.7"); !errors.Is(err, kv.ErrNotFound) {
		t.Error("bypassed IP must not consume counters")
	}
}

type failingStore struct {
	kv.Store
}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("backend down")
}

func TestHourlyFailsOpenOnCounterError(t *testing.T) {
	calls := 0
	handler := Hourly(failingStore{}, Config{HourlyLimit: 1})(okHandler(&calls))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
	if rec.Code != http.StatusOK || calls != 1 {
		t.Errorf("counter outage must fail open: status %d, calls %d", rec.Code, calls)
	}
}

func TestBurstDisabledWithoutLimit(t *testing.T) {
	calls := 0
	handler := Burst(Config{})(okHandler(&calls))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
	if rec.Code != http.StatusOK {
		t.Errorf("zero burst limit must pass through, got %d", rec.Code)
	}
}

func TestBurstLimits(t *testing.T) {
	calls := 0
	handler := Burst(Config{BurstLimit: 2, BurstWindow: time.Minute})(okHandler(&calls))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("203.0.113.7"))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.7"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 over burst limit", rec.Code)
	}
}
