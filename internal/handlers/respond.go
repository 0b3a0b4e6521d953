package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/preview"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/routing"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// Teardown ends a tab: its session and every preview it opened.
type Teardown struct {
	Sessions SessionManager
	Previews Previews
}

// End clears the tab. Missing sessions are not an error.
func (t Teardown) End(ctx context.Context, key string) error {
	var errs []error
	if t.Previews != nil {
		errs = append(errs, t.Previews.RevokeOwner(ctx, key))
	}
	if t.Sessions != nil {
		errs = append(errs, t.Sessions.Clear(ctx, key))
	}
	return errors.Join(errs...)
}

type errorResponse struct {
	Error    string            `json:"error"`
	Redirect string            `json:"redirect,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Data     json.RawMessage   `json:"data,omitempty"`
}

// respondError translates a gateway failure. A 401 clears the tab and
// redirects to login; a 403 stays inline and keeps the session.
func (t Teardown) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := logging.FromContext(ctx)

	var gwErr *gateway.Error
	switch {
	case gateway.IsUnauthorized(err):
		if key, _, ok := session.FromContext(ctx); ok {
			if endErr := t.End(ctx, key); endErr != nil {
				logger.Error("clear session after 401", slog.Any("error", endErr))
			}
		}
		respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "Your session has expired. Please sign in again.", Redirect: routing.LoginRoute})
	case errors.As(err, &gwErr) && gwErr.Kind == gateway.KindValidation:
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: gwErr.Message, Fields: gwErr.Fields})
	case errors.As(err, &gwErr) && gwErr.Kind == gateway.KindNetwork:
		respondJSON(ctx, w, http.StatusBadGateway, errorResponse{Error: "The server could not be reached."})
	case errors.As(err, &gwErr) && gwErr.Status >= http.StatusInternalServerError:
		respondJSON(ctx, w, http.StatusBadGateway, errorResponse{Error: gwErr.Message})
	case errors.As(err, &gwErr):
		respondJSON(ctx, w, gwErr.Status, errorResponse{Error: gwErr.Message, Data: gwErr.Data})
	case errors.Is(err, gateway.ErrNoConvocation), errors.Is(err, preview.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, preview.ErrRevoked):
		respondJSON(ctx, w, http.StatusGone, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		logger.Debug("request canceled by client")
	default:
		logger.Error("unexpected handler error", slog.Any("error", err))
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// currentSession returns the session placed on the context by middleware.RequireSession.
func currentSession(w http.ResponseWriter, r *http.Request) (string, session.Session, bool) {
	key, s, ok := session.FromContext(r.Context())
	if !ok {
		respondJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "missing tab session", Redirect: routing.LoginRoute})
	}
	return key, s, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logging.FromContext(r.Context()).Warn("invalid request payload", slog.Any("error", err))
		respondJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	logger := logging.FromContext(ctx)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response body", slog.Int("status", status), slog.Any("error", err))
		return
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", slog.Int("status", status), slog.Any("response", payload))
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", slog.Int("status", status), slog.Any("response", payload))
	}
}
