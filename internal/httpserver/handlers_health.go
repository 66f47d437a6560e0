package httpserver

import (
	"net/http"
	"time"
)

// health reports service status and the size of the current graph
// snapshot.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.loader.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "degraded",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"graph": map[string]int{
			"entities":  len(snapshot.Entities),
			"relations": len(snapshot.Relations),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
