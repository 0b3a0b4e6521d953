package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// Document kinds that can be previewed.
const (
	PreviewCV      = "cv"
	PreviewMyCV    = "my-cv"
	PreviewOffer   = "offer"
	PreviewEntente = "entente"
)

// PreviewHandler opens and revokes PDF previews.
type PreviewHandler struct {
	Documents DocumentBackend
	Previews  Previews
	Teardown  Teardown
}

type previewRequest struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// Create handles POST /api/previews {kind, id}.
func (h PreviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	key, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	blob, err := h.fetch(r, s, req)
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}

	p, err := h.Previews.Open(ctx, key, blob)
	if err != nil {
		logging.FromContext(ctx).Error("open preview failed", slog.Any("error", err))
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "unable to open preview"})
		return
	}
	respondJSON(ctx, w, http.StatusCreated, p)
}

// Revoke handles DELETE /api/previews/{id}.
func (h PreviewHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	key, _, ok := currentSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if err := h.Previews.Revoke(ctx, key, r.PathValue("id")); err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Serve handles GET /previews/{id} for previews held by the BFF.
func (h PreviewHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blob, err := h.Previews.Content(ctx, r.PathValue("id"))
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if blob.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", blob.Filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}

func (h PreviewHandler) fetch(r *http.Request, s session.Session, req previewRequest) (gateway.Blob, error) {
	ctx := r.Context()
	if req.Kind != PreviewMyCV && req.ID <= 0 {
		return gateway.Blob{}, &gateway.Error{Kind: gateway.KindValidation, Message: "invalid id", Fields: map[string]string{"id": "gt"}}
	}

	switch req.Kind {
	case PreviewCV:
		return h.Documents.CVPDF(ctx, s, req.ID)
	case PreviewMyCV:
		return h.Documents.MyCVPDF(ctx, s)
	case PreviewOffer:
		return h.Documents.OfferPDF(ctx, s, req.ID)
	case PreviewEntente:
		return h.Documents.EntentePDF(ctx, s, req.ID)
	default:
		return gateway.Blob{}, &gateway.Error{Kind: gateway.KindValidation, Message: fmt.Sprintf("unknown preview kind %q", req.Kind), Fields: map[string]string{"kind": "oneof"}}
	}
}
