package handlers

import (
	"log/slog"
	"net/http"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/ententes"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// EntenteHandler exposes agreement listing and mutations.
type EntenteHandler struct {
	Backend  EntenteBackend
	Teardown Teardown
}

type ententeList struct {
	Items []ententes.Row     `json:"items"`
	Sort  ententes.SortState `json:"sort"`
	Term  string             `json:"term,omitempty"`
	Error string             `json:"error,omitempty"`
}

type profAssignmentRequest struct {
	ProfID int64 `json:"profId"`
}

// List handles GET /api/ententes. Fetch failures other than 401 leave the
// list empty with an inline error.
func (h EntenteHandler) List(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	term, ok := parseTerm(w, r, query)
	if !ok {
		return
	}
	h.respondList(w, r, s, term, parseSort(query))
}

// Sign handles POST /api/ententes/{id}/sign and answers with the refetched list.
func (h EntenteHandler) Sign(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	if err := h.Backend.SignEntente(ctx, s, id); err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	logging.FromContext(ctx).Info("entente signed", slog.Int64("entente_id", id))

	query := r.URL.Query()
	term, ok := parseTerm(w, r, query)
	if !ok {
		return
	}
	h.respondList(w, r, s, term, parseSort(query))
}

// Create handles POST /api/ententes.
func (h EntenteHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req gateway.NewEntente
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	created, err := h.Backend.CreateEntente(ctx, s, req)
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, created)
}

// Profs handles GET /api/profs.
func (h EntenteHandler) Profs(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	profs, err := h.Backend.Profs(ctx, s)
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	if profs == nil {
		profs = []models.Prof{}
	}
	respondJSON(ctx, w, http.StatusOK, profs)
}

// AssignProf handles PUT /api/ententes/{id}/prof.
func (h EntenteHandler) AssignProf(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req profAssignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	if err := h.Backend.AssignProf(ctx, s, id, req.ProfID); err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h EntenteHandler) respondList(w http.ResponseWriter, r *http.Request, s session.Session, term *ententes.Term, sortState ententes.SortState) {
	ctx := r.Context()
	resp := ententeList{Sort: sortState}
	if term != nil {
		resp.Term = term.String()
	}

	list, err := h.Backend.Ententes(ctx, s)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			h.Teardown.respondError(ctx, w, err)
			return
		}
		logging.FromContext(ctx).Warn("entente list failed", slog.Any("error", err))
		resp.Items = []ententes.Row{}
		resp.Error = gateway.UserMessage(err)
		respondJSON(ctx, w, http.StatusOK, resp)
		return
	}

	resp.Items = ententes.List(list, s.Role, term, sortState)
	respondJSON(ctx, w, http.StatusOK, resp)
}
