package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// maxReasonLength bounds how much facilitator body leaks into client
// reasons.
const maxReasonLength = 200

// FacilitatorRequest is the body POSTed to /verify and /settle. The same
// body is sent to both endpoints.
type FacilitatorRequest struct {
	X402Version         int            `json:"x402Version"`
	PaymentPayload      map[string]any `json:"paymentPayload"`
	PaymentRequirements Requirement    `json:"paymentRequirements"`
}

// VerifyResponse is the facilitator's /verify result.
type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	Payer         string `json:"payer,omitempty"`
	InvalidReason string `json:"invalidReason,omitempty"`
}

// StatusError reports a non-2xx facilitator response. Its message is the
// client-facing reason, so the body is truncated here.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return e.Op + ": " + Truncate(e.Body, maxReasonLength)
}

// Truncate caps s at n characters.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// FacilitatorClient talks to the remote payment facilitator. Calls run
// through a circuit breaker so a wedged facilitator sheds load fast
// instead of pinning every request on its timeout.
type FacilitatorClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewFacilitatorClient creates a client with the given per-call timeout.
// The timeout must stay within the requirement's maxTimeoutSeconds; the
// constructor clamps it.
func NewFacilitatorClient(baseURL string, timeout time.Duration) *FacilitatorClient {
	if timeout <= 0 || timeout > MaxTimeoutSeconds*time.Second {
		timeout = 30 * time.Second
	}
	return &FacilitatorClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "facilitator",
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Verify checks the payment proof against the selected requirement.
func (c *FacilitatorClient) Verify(ctx context.Context, req FacilitatorRequest) (*VerifyResponse, error) {
	body, err := c.post(ctx, "Verify", "/verify", req)
	if err != nil {
		return nil, err
	}

	var verify VerifyResponse
	if err := json.Unmarshal(body, &verify); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &verify, nil
}

// Settle executes the verified payment, returning the facilitator's
// opaque settlement envelope.
func (c *FacilitatorClient) Settle(ctx context.Context, req FacilitatorRequest) (json.RawMessage, error) {
	body, err := c.post(ctx, "Settle", "/settle", req)
	if err != nil {
		return nil, err
	}

	// The envelope is opaque but must at least be JSON.
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("decode settle response: %w", err)
	}
	return json.RawMessage(body), nil
}

func (c *FacilitatorClient) post(ctx context.Context, op, path string, req FacilitatorRequest) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal facilitator request: %w", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
