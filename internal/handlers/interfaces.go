package handlers

import (
	"context"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/dashboard"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/preview"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// SessionManager holds the tab sessions.
type SessionManager interface {
	Start(ctx context.Context, s session.Session) (string, error)
	Get(ctx context.Context, key string) (session.Session, error)
	Set(ctx context.Context, key string, s session.Session) error
	Clear(ctx context.Context, key string) error
}

// AuthBackend authenticates against the remote backend.
type AuthBackend interface {
	Login(ctx context.Context, creds gateway.Credentials) (models.LoginResponse, error)
	Me(ctx context.Context, s session.Session) (models.User, error)
}

// EntenteBackend covers agreement listing, creation and signing.
type EntenteBackend interface {
	Ententes(ctx context.Context, s session.Session) ([]models.Entente, error)
	SignEntente(ctx context.Context, s session.Session, id int64) error
	CreateEntente(ctx context.Context, s session.Session, req gateway.NewEntente) (models.Entente, error)
	Profs(ctx context.Context, s session.Session) ([]models.Prof, error)
	AssignProf(ctx context.Context, s session.Session, ententeID, profID int64) error
}

// ReviewBackend covers CV and offer review plus student applications.
type ReviewBackend interface {
	ApproveCV(ctx context.Context, s session.Session, id int64) error
	RejectCV(ctx context.Context, s session.Session, id int64, comment string) error
	MyCV(ctx context.Context, s session.Session) (models.CV, error)
	UploadCV(ctx context.Context, s session.Session, upload gateway.Upload) (models.CV, error)
	ApproveOffer(ctx context.Context, s session.Session, id int64) error
	RejectOffer(ctx context.Context, s session.Session, id int64, comment string) error
	Apply(ctx context.Context, s session.Session, offerID int64, cvStatus models.CVStatus) (models.Candidature, error)
}

// ConvocationBackend finds interview invitations.
type ConvocationBackend interface {
	ConvocationFor(ctx context.Context, s session.Session, candidatureID int64) (models.Convocation, error)
}

// DocumentBackend downloads PDFs.
type DocumentBackend interface {
	CVPDF(ctx context.Context, s session.Session, id int64) (gateway.Blob, error)
	MyCVPDF(ctx context.Context, s session.Session) (gateway.Blob, error)
	OfferPDF(ctx context.Context, s session.Session, id int64) (gateway.Blob, error)
	EntentePDF(ctx context.Context, s session.Session, id int64) (gateway.Blob, error)
}

// Backend is everything the BFF calls on the remote backend.
type Backend interface {
	AuthBackend
	EntenteBackend
	ReviewBackend
	ConvocationBackend
	DocumentBackend
	dashboard.Backend
}

// Dashboards opens dashboard sections.
type Dashboards interface {
	Open(ctx context.Context, s session.Session, req dashboard.Request) (dashboard.View, error)
}

// Previews brokers PDF object URLs.
type Previews interface {
	Open(ctx context.Context, owner string, blob gateway.Blob) (preview.Preview, error)
	Revoke(ctx context.Context, owner, id string) error
	RevokeOwner(ctx context.Context, owner string) error
	Content(ctx context.Context, id string) (gateway.Blob, error)
}

var _ Backend = (*gateway.Client)(nil)
