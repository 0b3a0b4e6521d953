package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/routing"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// AuthHandler implements login, logout and session introspection.
type AuthHandler struct {
	Backend  AuthBackend
	Sessions SessionManager
	Teardown Teardown
	Limiter  RateLimiter
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	TabKey   string       `json:"tabKey"`
	Role     models.Role  `json:"role"`
	Redirect string       `json:"redirect"`
	User     *models.User `json:"user,omitempty"`
}

type sessionResponse struct {
	Role     models.Role `json:"role"`
	Email    string      `json:"email,omitempty"`
	UserID   string      `json:"userId,omitempty"`
	Redirect string      `json:"redirect"`
}

// Login handles POST /api/login. A failed profile lookup still logs the
// user in and routes to the generic dashboard.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Backend == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable", slog.Bool("hasBackend", h.Backend != nil), slog.Bool("hasSessions", h.Sessions != nil))
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		respondJSON(ctx, w, http.StatusTooManyRequests, errorResponse{Error: "too many login attempts, try again later"})
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.Backend.Login(ctx, gateway.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		logger.Warn("login rejected", slog.Int("status", gateway.StatusOf(err)), slog.Any("error", err))
		if gateway.IsUnauthorized(err) {
			respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
			return
		}
		h.Teardown.respondError(ctx, w, err)
		return
	}

	s := session.Session{AccessToken: tokens.AccessToken, TokenType: tokens.TokenType}
	key, err := h.Sessions.Start(ctx, s)
	if err != nil {
		logger.Error("failed to start tab session", slog.Any("error", err))
		if errors.Is(err, session.ErrMissingToken) {
			respondJSON(ctx, w, http.StatusBadGateway, errorResponse{Error: "login response did not contain a token"})
			return
		}
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "failed to create session"})
		return
	}

	res := routing.Resolve(ctx, h.Backend, s)
	if res.Err != nil {
		logger.Warn("role resolution failed, routing to fallback dashboard", slog.Any("error", res.Err))
	}
	if err := h.Sessions.Set(ctx, key, res.Session); err != nil {
		logger.Error("failed to store resolved session", slog.Any("error", err))
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "failed to create session"})
		return
	}

	logger.Info("login succeeded", slog.String("role", string(res.Role)), slog.String("redirect", res.Route))
	respondJSON(ctx, w, http.StatusOK, loginResponse{
		TabKey:   key,
		Role:     res.Role,
		Redirect: res.Route,
		User:     res.User,
	})
}

// Logout handles POST /api/logout, the only explicit teardown path.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	key, _, ok := currentSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.Teardown.End(ctx, key); err != nil {
		logging.FromContext(ctx).Error("logout teardown failed", slog.Any("error", err))
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "failed to clear session"})
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"redirect": routing.LoginRoute})
}

// Session handles GET /api/session. The token never leaves the BFF.
func (h AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r)
	if !ok {
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, sessionResponse{
		Role:     s.Role,
		Email:    s.Email,
		UserID:   s.UserID,
		Redirect: routing.RouteForRole(string(s.Role)),
	})
}
