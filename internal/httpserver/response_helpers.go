package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON payload. CORS headers ride on every response,
// including error envelopes, so browser agents can read them.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

// writeError writes a plain `{error}` envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writePaymentFailed writes the 402 envelope for a rejected proof.
func writePaymentFailed(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusPaymentRequired, map[string]any{
		"error":  "Payment failed",
		"reason": reason,
	})
}

// addSettlementHeaders marks the payment as confirmed and echoes the
// facilitator's settlement envelope, base64-encoded, per x402 practice.
func addSettlementHeaders(w http.ResponseWriter, settlement json.RawMessage) {
	w.Header().Set("X-Payment-Confirmed", "true")
	if len(settlement) > 0 {
		w.Header().Set("X-PAYMENT-RESPONSE", base64.StdEncoding.EncodeToString(settlement))
	}
}

// decodeJSON decodes a JSON request body into the destination struct.
func decodeJSON(r *http.Request, dest any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}
