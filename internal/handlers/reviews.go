package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// maxUploadBytes bounds a CV upload.
const maxUploadBytes = 10 << 20

// ReviewHandler exposes CV and offer review plus student applications.
type ReviewHandler struct {
	Backend  ReviewBackend
	Teardown Teardown
}

type rejectRequest struct {
	Comment string `json:"comment"`
}

// ApproveCV handles POST /api/cvs/{id}/approve.
func (h ReviewHandler) ApproveCV(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "cv approved", func(id int64) error {
		_, s, _ := session.FromContext(r.Context())
		return h.Backend.ApproveCV(r.Context(), s, id)
	})
}

// RejectCV handles POST /api/cvs/{id}/reject with body {"comment": "..."}.
func (h ReviewHandler) RejectCV(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	h.mutateWithBody(w, r, &req, "cv rejected", func(id int64) error {
		_, s, _ := session.FromContext(r.Context())
		return h.Backend.RejectCV(r.Context(), s, id, req.Comment)
	})
}

// ApproveOffer handles POST /api/offers/{id}/approve.
func (h ReviewHandler) ApproveOffer(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "offer approved", func(id int64) error {
		_, s, _ := session.FromContext(r.Context())
		return h.Backend.ApproveOffer(r.Context(), s, id)
	})
}

// RejectOffer handles POST /api/offers/{id}/reject with body {"comment": "..."}.
func (h ReviewHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	h.mutateWithBody(w, r, &req, "offer rejected", func(id int64) error {
		_, s, _ := session.FromContext(r.Context())
		return h.Backend.RejectOffer(r.Context(), s, id, req.Comment)
	})
}

// Apply handles POST /api/offers/{id}/apply. Students whose CV is not
// approved are refused before the backend is called.
func (h ReviewHandler) Apply(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	var status models.CVStatus
	cv, err := h.Backend.MyCV(ctx, s)
	switch {
	case err == nil:
		status = cv.Status
	case gateway.StatusOf(err) == http.StatusNotFound:
	default:
		h.Teardown.respondError(ctx, w, err)
		return
	}

	candidature, err := h.Backend.Apply(ctx, s, id, status)
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, candidature)
}

// UploadCV handles POST /api/cv with a multipart pdfFile field.
func (h ReviewHandler) UploadCV(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<10)
	file, header, err := r.FormFile("pdfFile")
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondJSON(ctx, w, status, errorResponse{Error: "a PDF file is required in field pdfFile"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "unable to read uploaded file"})
		return
	}

	cv, err := h.Backend.UploadCV(ctx, s, gateway.Upload{Filename: header.Filename, Data: data})
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, cv)
}

func (h ReviewHandler) mutate(w http.ResponseWriter, r *http.Request, event string, call func(id int64) error) {
	if _, _, ok := currentSession(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.finish(w, r, event, id, call(id))
}

func (h ReviewHandler) mutateWithBody(w http.ResponseWriter, r *http.Request, body any, event string, call func(id int64) error) {
	if _, _, ok := currentSession(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if !decodeJSON(w, r, body) {
		return
	}
	h.finish(w, r, event, id, call(id))
}

func (h ReviewHandler) finish(w http.ResponseWriter, r *http.Request, event string, id int64, err error) {
	ctx := r.Context()
	if err != nil {
		h.Teardown.respondError(ctx, w, err)
		return
	}
	logging.FromContext(ctx).Info(event, slog.Int64("id", id))
	respondJSON(ctx, w, http.StatusOK, map[string]any{"id": id, "status": "ok"})
}
