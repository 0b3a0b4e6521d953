package handlers

import (
	"net/http"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Backend      Backend
	Sessions     SessionManager
	Dashboards   Dashboards
	Previews     Previews
	LoginLimiter RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Everything
// under /api except login requires an X-Tab-Session header.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	teardown := Teardown{Sessions: deps.Sessions, Previews: deps.Previews}

	health := HealthHandler{}
	auth := AuthHandler{Backend: deps.Backend, Sessions: deps.Sessions, Teardown: teardown, Limiter: deps.LoginLimiter}
	dash := DashboardHandler{Dashboards: deps.Dashboards, Teardown: teardown}
	agreements := EntenteHandler{Backend: deps.Backend, Teardown: teardown}
	reviews := ReviewHandler{Backend: deps.Backend, Teardown: teardown}
	candidatures := CandidatureHandler{Backend: deps.Backend, Teardown: teardown}
	previews := PreviewHandler{Documents: deps.Backend, Previews: deps.Previews, Teardown: teardown}

	mux.HandleFunc("GET /healthz", health.Handle)
	mux.HandleFunc("POST /api/login", auth.Login)
	mux.HandleFunc("GET /previews/{id}", previews.Serve)

	authed := func(pattern string, h http.HandlerFunc) {
		if deps.Sessions == nil {
			mux.HandleFunc(pattern, h)
			return
		}
		mux.Handle(pattern, middleware.RequireSession(deps.Sessions, deps.Previews)(h))
	}

	authed("POST /api/logout", auth.Logout)
	authed("GET /api/session", auth.Session)
	authed("GET /api/dashboard", dash.Open)

	authed("GET /api/ententes", agreements.List)
	authed("POST /api/ententes", agreements.Create)
	authed("POST /api/ententes/{id}/sign", agreements.Sign)
	authed("PUT /api/ententes/{id}/prof", agreements.AssignProf)
	authed("GET /api/profs", agreements.Profs)

	authed("POST /api/cvs/{id}/approve", reviews.ApproveCV)
	authed("POST /api/cvs/{id}/reject", reviews.RejectCV)
	authed("POST /api/cv", reviews.UploadCV)
	authed("POST /api/offers/{id}/approve", reviews.ApproveOffer)
	authed("POST /api/offers/{id}/reject", reviews.RejectOffer)
	authed("POST /api/offers/{id}/apply", reviews.Apply)

	authed("GET /api/candidatures/{id}/convocation", candidatures.Convocation)

	authed("POST /api/previews", previews.Create)
	authed("DELETE /api/previews/{id}", previews.Revoke)
}
