package handlers

import (
	"net/http"
)

// HealthHandler reports process liveness. It does not call the backend.
type HealthHandler struct{}

// Handle implements GET /healthz.
func (HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "leandrose-bff",
	})
}
