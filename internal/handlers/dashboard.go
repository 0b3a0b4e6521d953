package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/dashboard"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/ententes"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

// DashboardHandler serves the role dashboards.
type DashboardHandler struct {
	Dashboards Dashboards
	Teardown   Teardown
}

// Open handles GET /api/dashboard?section=&term=&sort=&dir=&toggle=&listing=.
func (h DashboardHandler) Open(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	query := r.URL.Query()
	term, ok := parseTerm(w, r, query)
	if !ok {
		return
	}

	view, err := h.Dashboards.Open(ctx, s, dashboard.Request{
		Section: query.Get("section"),
		Term:    term,
		Sort:    parseSort(query),
		Listing: models.OfferListing(strings.ToLower(query.Get("listing"))),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logging.FromContext(ctx).Debug("dashboard load abandoned")
			return
		}
		h.Teardown.respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// parseSort reads sort/dir and applies a column-header click from toggle.
func parseSort(query url.Values) ententes.SortState {
	state := ententes.ParseSort(query.Get("sort"), query.Get("dir"))
	if toggle := strings.TrimSpace(query.Get("toggle")); toggle != "" {
		state = state.Toggle(toggle)
	}
	return state
}

func parseTerm(w http.ResponseWriter, r *http.Request, query url.Values) (*ententes.Term, bool) {
	raw := strings.TrimSpace(query.Get("term"))
	if raw == "" {
		return nil, true
	}
	term, err := ententes.ParseTerm(raw)
	if err != nil {
		respondJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: map[string]string{"term": "format"}})
		return nil, false
	}
	return &term, true
}
