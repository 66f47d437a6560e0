// Package payment implements the x402 gate for the scoring endpoint:
// requirement-document construction, proof decoding, and the strict
// verify-then-settle protocol against the remote facilitator.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Orac-G/agent-trust/internal/logger"
	"github.com/Orac-G/agent-trust/internal/metrics"
)

// AuthError is a client-facing payment failure. It always maps to a 402.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// Authorization is a settled payment. Settlement carries the
// facilitator's opaque envelope for the X-PAYMENT-RESPONSE echo.
type Authorization struct {
	Payer      string
	Settlement json.RawMessage
}

// Gate verifies and settles presented payment proofs.
type Gate struct {
	addrs       Addresses
	facilitator *FacilitatorClient
	metrics     *metrics.Metrics
}

// NewGate wires the payment gate.
func NewGate(addrs Addresses, facilitator *FacilitatorClient, collector *metrics.Metrics) *Gate {
	return &Gate{addrs: addrs, facilitator: facilitator, metrics: collector}
}

// Requirements builds the 402 document for the given request URL.
func (g *Gate) Requirements(requestURL string) RequirementsDocument {
	return BuildRequirements(requestURL, g.addrs)
}

func railLabel(kind ProofKind) string {
	if kind == KindSolana {
		return "solana"
	}
	return "evm"
}

// Authorize runs the two-phase protocol on a presented proof. Ordering
// is strict: verify before settle, settle before any side-effectful
// response. A settle failure is a payment failure, never a partial
// result.
func (g *Gate) Authorize(ctx context.Context, rawProof, requestURL string) (*Authorization, *AuthError) {
	log := logger.FromContext(ctx)
	start := time.Now()

	proof, err := DecodeProof(rawProof)
	if err != nil {
		g.observeFailure("unknown", "decode")
		return nil, &AuthError{Reason: "payment_error: " + err.Error()}
	}
	rail := railLabel(proof.Kind)

	document := BuildRequirements(requestURL, g.addrs)
	requirement := SelectRequirement(proof, document.Accepts)

	request := FacilitatorRequest{
		X402Version:         X402Version,
		PaymentPayload:      proof.Decoded,
		PaymentRequirements: requirement,
	}

	verify, err := g.facilitator.Verify(ctx, request)
	if err != nil {
		g.observeFailure(rail, "verify")
		log.Warn().Err(err).Str("rail", rail).Msg("payment.verify_failed")
		return nil, authErrorFrom(err)
	}
	if !verify.IsValid {
		g.observeFailure(rail, "verify_rejected")
		reason := verify.InvalidReason
		if reason == "" {
			reason = "payment rejected by facilitator"
		}
		log.Warn().Str("rail", rail).Str("reason", reason).Msg("payment.verify_rejected")
		return nil, &AuthError{Reason: reason}
	}

	settlement, err := g.facilitator.Settle(ctx, request)
	if err != nil {
		g.observeFailure(rail, "settle")
		log.Warn().Err(err).Str("rail", rail).Msg("payment.settle_failed")
		return nil, authErrorFrom(err)
	}

	if g.metrics != nil {
		g.metrics.ObservePaymentSuccess(rail, time.Since(start))
	}
	log.Info().
		Str("rail", rail).
		Str("payer", logger.TruncateAddress(verify.Payer)).
		Dur("duration", time.Since(start)).
		Msg("payment.settled")

	return &Authorization{Payer: verify.Payer, Settlement: settlement}, nil
}

// authErrorFrom maps facilitator errors to client reasons: non-2xx
// responses keep their "Verify: "/"Settle: " prefix with a truncated
// body, anything else becomes a payment_error.
func authErrorFrom(err error) *AuthError {
	var status *StatusError
	if errors.As(err, &status) {
		return &AuthError{Reason: status.Error()}
	}
	return &AuthError{Reason: "payment_error: " + err.Error()}
}

func (g *Gate) observeFailure(rail, stage string) {
	if g.metrics != nil {
		g.metrics.ObservePaymentFailure(rail, stage)
	}
}
