package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/Orac-G/agent-trust/internal/graph"
	"github.com/Orac-G/agent-trust/internal/logger"
	"github.com/Orac-G/agent-trust/internal/payment"
	"github.com/Orac-G/agent-trust/internal/scoring"
	"github.com/Orac-G/agent-trust/internal/screener"
	"github.com/Orac-G/agent-trust/internal/trust"
)

type scoreRequest struct {
	Entity  string `json:"entity"`
	Context string `json:"context,omitempty"`
}

// score is the paid scoring endpoint. Order is fixed: payment settles
// before anything side-effectful, and a settle failure yields a 402,
// never a partial result.
func (h *handlers) score(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())
	requestURL := fullRequestURL(r)

	rawProof, ok := payment.ProofFromRequest(r)
	if !ok {
		h.observe("payment_required", 0, start)
		writeJSON(w, http.StatusPaymentRequired, h.gate.Requirements(requestURL))
		return
	}

	auth, authErr := h.gate.Authorize(r.Context(), rawProof, requestURL)
	if authErr != nil {
		h.observe("payment_failed", 0, start)
		writePaymentFailed(w, authErr.Reason)
		return
	}

	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil || req.Entity == "" {
		h.observe("bad_request", 0, start)
		writeError(w, http.StatusBadRequest, "Missing required field: entity")
		return
	}

	snapshot, err := h.loader.Load(r.Context())
	if err != nil {
		if !errors.Is(err, graph.ErrUnavailable) {
			log.Error().Err(err).Msg("score.graph_load_failed")
		}
		// The rate-limit permit stays consumed: clients must not flood
		// on an upstream outage.
		h.observe("graph_unavailable", 0, start)
		writeError(w, http.StatusServiceUnavailable, "knowledge graph unavailable")
		return
	}

	var safety *screener.Result
	if req.Context != "" {
		result := screener.Screen(req.Context)
		safety = &result
		if h.metrics != nil {
			h.metrics.ObserveScreenerVerdict(string(result.Verdict))
		}
	}

	vector := h.reputation.Vector(r.Context(), snapshot)

	var envelope trust.Envelope
	if entity, found := snapshot.Entity(req.Entity); found {
		result := scoring.Score(entity, snapshot, vector, safety, time.Now())
		envelope = trust.AssembleFound(entity, snapshot, vector, result, safety, auth.Payer)
	} else {
		envelope = trust.AssembleUnknown(req.Entity, safety, auth.Payer)
	}

	log.Info().
		Str("entity", req.Entity).
		Bool("found", envelope.Found).
		Float64("trust_score", envelope.TrustScore).
		Str("tier", envelope.Tier).
		Str("recommendation", envelope.Recommendation).
		Msg("score.completed")

	h.observe("success", envelope.TrustScore, start)
	addSettlementHeaders(w, auth.Settlement)
	writeJSON(w, http.StatusOK, envelope)
}

func (h *handlers) observe(outcome string, score float64, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveScore(outcome, score, time.Since(start))
	}
}

// fullRequestURL reconstructs the request URL for the payment document's
// resource echo.
func fullRequestURL(r *http.Request) string {
	scheme := "https"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
