package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/routing"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// TabSessionHeader carries the opaque per-tab key.
const TabSessionHeader = "X-Tab-Session"

// SessionLookup resolves a tab key.
type SessionLookup interface {
	Get(ctx context.Context, key string) (session.Session, error)
}

// TabReleaser frees per-tab resources once the tab's session is gone.
type TabReleaser interface {
	RevokeOwner(ctx context.Context, owner string) error
}

// RequireSession rejects requests without a live tab session and puts the
// session on the request context. When a key no longer maps to a session
// (idle expiry, eviction), release frees whatever the tab still holds.
// release may be nil.
func RequireSession(sessions SessionLookup, release TabReleaser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			key := strings.TrimSpace(r.Header.Get(TabSessionHeader))
			if key == "" {
				writeLoginRedirect(w, "missing tab session")
				return
			}

			s, err := sessions.Get(ctx, key)
			if err != nil {
				if errors.Is(err, session.ErrSessionNotFound) {
					if release != nil {
						if relErr := release.RevokeOwner(ctx, key); relErr != nil {
							logger.Warn("release expired tab", slog.Any("error", relErr))
						}
					}
					writeLoginRedirect(w, "session expired")
					return
				}
				logger.Error("session lookup failed", slog.Any("error", err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "session store unavailable"})
				return
			}

			logger = logger.With(slog.String("role", string(s.Role)))
			if s.UserID != "" {
				logger = logger.With(slog.String("user_id", s.UserID))
			}
			ctx = logging.WithLogger(ctx, logger)
			ctx = session.WithSession(ctx, key, s)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeLoginRedirect(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "redirect": routing.LoginRoute})
}
