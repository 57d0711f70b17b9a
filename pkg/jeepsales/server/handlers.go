package server

import (
	"encoding/json"
	"net/http"
)

// FetchJeeps defines a GET handler to fetch jeeps by optional model and trim
func (h *httpServer) FetchJeeps(w http.ResponseWriter, r *http.Request) {
	vars := r.URL.Query()
	model := vars.Get("model")
	trim := vars.Get("trim")

	jeeps, err := h.svc.FetchJeeps(r.Context(), model, trim)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jeeps)
}

// Health reports whether the database answers a ping
func (h *httpServer) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.log.ErrorContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *httpServer) routeNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, errRouteNotFound)
}

func (h *httpServer) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, errMethodNotAllowed)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
