package handlers

import (
	"net/http"
)

// CandidatureHandler exposes candidature details.
type CandidatureHandler struct {
	Backend  ConvocationBackend
	Teardown Teardown
}

// Convocation handles GET /api/candidatures/{id}/convocation.
func (h CandidatureHandler) Convocation(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	conv, err := h.Backend.ConvocationFor(ctx, s, id)
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, conv)
}
