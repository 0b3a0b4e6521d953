package routing

import (
	"context"
	"strconv"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

const (
	// FallbackRoute is used whenever the role cannot be resolved.
	FallbackRoute = "/dashboard"
	// LoginRoute is where clients are sent after their session is cleared.
	LoginRoute = "/login"
)

var dashboards = map[models.Role]string{
	models.RoleStudent:      "/dashboard/student",
	models.RoleEmployeur:    "/dashboard/employeur",
	models.RoleGestionnaire: "/dashboard/gestionnaire",
	models.RoleProf:         "/dashboard/prof",
}

// RouteForRole maps a role name to its dashboard path.
func RouteForRole(role string) string {
	if route, ok := dashboards[models.ParseRole(role)]; ok {
		return route
	}
	return FallbackRoute
}

// UserFetcher loads the authenticated user's profile.
type UserFetcher interface {
	Me(ctx context.Context, s session.Session) (models.User, error)
}

// Resolution is the outcome of post-login role resolution.
type Resolution struct {
	Route   string
	Role    models.Role
	User    *models.User
	Session session.Session
	// Err is set when the profile lookup failed; the route degrades to FallbackRoute.
	Err error
}

// Resolve looks up the user behind s and picks its dashboard. A failed lookup
// never fails the login: the token is kept and the route falls back.
func Resolve(ctx context.Context, users UserFetcher, s session.Session) Resolution {
	if users == nil {
		s.Role = models.RoleUnknown
		return Resolution{Route: FallbackRoute, Role: models.RoleUnknown, Session: s}
	}

	user, err := users.Me(ctx, s)
	if err != nil {
		s.Role = models.RoleUnknown
		return Resolution{Route: FallbackRoute, Role: models.RoleUnknown, Session: s, Err: err}
	}

	s.Role = models.ParseRole(user.Role)
	s.Email = user.Email
	if user.ID != 0 {
		s.UserID = strconv.FormatInt(user.ID, 10)
	}

	return Resolution{
		Route:   RouteForRole(user.Role),
		Role:    s.Role,
		User:    &user,
		Session: s,
	}
}
