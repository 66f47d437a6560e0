package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Orac-G/agent-trust/internal/payment"
)

// root serves the service description. JSON is returned only when the
// client explicitly prefers it and does not also accept HTML; everything
// else gets the landing page.
func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	wantsJSON := strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
	if wantsJSON {
		h.rootJSON(w, r)
		return
	}
	h.rootHTML(w, r)
}

func (h *handlers) rootJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     h.cfg.Service.Name,
		"version":     h.cfg.Service.Version,
		"description": "Paid trust scoring for agents in the shared knowledge graph",
		"pricing": map[string]any{
			"amount":   payment.AmountDisplay,
			"currency": payment.Currency,
			"networks": []string{payment.NetworkEVM, payment.NetworkSolana},
			"protocol": "x402",
		},
		"endpoints": map[string]any{
			"POST /v1/score": "score an entity; body {entity, context?}; payment required",
			"GET /health":    "service and graph health",
		},
		"tiers": map[string]string{
			"unknown":     "score < 0.20",
			"new":         "0.20 - 0.40",
			"emerging":    "0.40 - 0.60",
			"established": "0.60 - 0.80",
			"trusted":     "0.80 - 0.95",
			"verified":    "0.95 and above",
		},
		"data_source": "agent knowledge graph snapshot (key: " + h.cfg.Graph.SnapshotKey + ")",
		"author":      h.cfg.Service.Author,
	})
}

func (h *handlers) rootHTML(w http.ResponseWriter, r *http.Request) {
	name := h.cfg.Service.Name
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%[1]s</title>
<meta property="og:title" content="%[1]s">
<meta property="og:description" content="Trust scores for software agents. $0.01 per query over x402.">
<meta property="og:type" content="website">
</head>
<body>
<h1>%[1]s</h1>
<p>Composite trust scores for agents in the shared knowledge graph.
One query costs $0.01 in USDC, paid per request over the x402 protocol
on Base or Solana.</p>
<p><code>POST /v1/score</code> with body <code>{"entity": "...", "context": "..."}</code>.
The first unpaid call returns the payment requirements.</p>
</body>
</html>
`, name)
}
