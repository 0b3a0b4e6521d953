package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/ententes"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

type stubBackend struct {
	cv           models.CV
	cvErr        error
	pendingCVs   []models.CV
	offers       []models.InternshipOffer
	candidatures []models.Candidature
	ententes     []models.Entente
	ententesErr  error
	offersErr    error
	beforeReturn func(ctx context.Context)

	calls atomic.Int32
}

func (s *stubBackend) hit(ctx context.Context) {
	s.calls.Add(1)
	if s.beforeReturn != nil {
		s.beforeReturn(ctx)
	}
}

func (s *stubBackend) MyCV(ctx context.Context, _ session.Session) (models.CV, error) {
	s.hit(ctx)
	return s.cv, s.cvErr
}

func (s *stubBackend) PendingCVs(ctx context.Context, _ session.Session) ([]models.CV, error) {
	s.hit(ctx)
	return s.pendingCVs, nil
}

func (s *stubBackend) Offers(ctx context.Context, _ session.Session, _ models.OfferListing) ([]models.InternshipOffer, error) {
	s.hit(ctx)
	return s.offers, s.offersErr
}

func (s *stubBackend) PublishedOffers(ctx context.Context, _ session.Session) ([]models.InternshipOffer, error) {
	s.hit(ctx)
	return s.offers, s.offersErr
}

func (s *stubBackend) EmployerOffers(ctx context.Context, _ session.Session) ([]models.InternshipOffer, error) {
	s.hit(ctx)
	return s.offers, s.offersErr
}

func (s *stubBackend) Candidatures(ctx context.Context, _ session.Session) ([]models.Candidature, error) {
	s.hit(ctx)
	return s.candidatures, nil
}

func (s *stubBackend) Convocations(ctx context.Context, _ session.Session) ([]models.Convocation, error) {
	s.hit(ctx)
	return nil, nil
}

func (s *stubBackend) Ententes(ctx context.Context, _ session.Session) ([]models.Entente, error) {
	s.hit(ctx)
	return s.ententes, s.ententesErr
}

func ts(v string) *models.Timestamp {
	t, err := models.ParseTimestamp(v)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestSelectSection(t *testing.T) {
	if got := SelectSection(models.RoleGestionnaire, "Ententes"); got != SectionEntentes {
		t.Fatalf("expected query section to win, got %q", got)
	}
	if got := SelectSection(models.RoleGestionnaire, "convocations"); got != SectionCVs {
		t.Fatalf("expected default section for invalid query, got %q", got)
	}
	if got := SelectSection(models.RoleProf, ""); got != SectionEntentes {
		t.Fatalf("expected prof default to be ententes, got %q", got)
	}
	if got := SelectSection(models.RoleUnknown, "cv"); got != "" {
		t.Fatalf("expected no section for unknown role, got %q", got)
	}
}

func TestOpenManagerLoadsCountsAndSection(t *testing.T) {
	backend := &stubBackend{
		pendingCVs: []models.CV{{ID: 1}, {ID: 2}},
		offers:     []models.InternshipOffer{{ID: 9}},
		ententes: []models.Entente{
			{ID: 1, Statut: models.EntenteStatusEnAttenteSignature, DateSignatureEmployeur: ts("2025-01-01"), DateSignatureEtudiant: ts("2025-01-02")},
			{ID: 2, Statut: models.EntenteStatusEnAttenteSignature, DateSignatureEmployeur: ts("2025-01-01")},
		},
	}
	svc := NewService(backend)

	view, err := svc.Open(context.Background(), session.Session{Role: models.RoleGestionnaire}, Request{Section: "cvs"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if view.Counts == nil {
		t.Fatalf("expected manager counts")
	}
	if view.Counts.PendingCVs != 2 || view.Counts.PendingOffers != 1 || view.Counts.AwaitingManager != 1 {
		t.Fatalf("unexpected counts: %+v", *view.Counts)
	}
	cvs, ok := view.Items.([]models.CV)
	if !ok || len(cvs) != 2 {
		t.Fatalf("expected pending CVs in items, got %#v", view.Items)
	}
	if got := backend.calls.Load(); got != 4 {
		t.Fatalf("expected 3 count requests plus 1 list request, got %d", got)
	}
}

func TestOpenSurfacesInlineErrorWithEmptyList(t *testing.T) {
	backend := &stubBackend{ententesErr: &gateway.Error{Kind: gateway.KindHTTP, Status: http.StatusForbidden, Message: "Forbidden"}}
	svc := NewService(backend)

	view, err := svc.Open(context.Background(), session.Session{Role: models.RoleProf}, Request{})
	if err != nil {
		t.Fatalf("expected inline error, got %v", err)
	}
	if view.Error != "Forbidden" {
		t.Fatalf("expected Forbidden message, got %q", view.Error)
	}
	items, ok := view.Items.([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty list, got %#v", view.Items)
	}
}

func TestOpenPropagatesUnauthorized(t *testing.T) {
	backend := &stubBackend{ententesErr: &gateway.Error{Kind: gateway.KindHTTP, Status: http.StatusUnauthorized}}
	svc := NewService(backend)

	_, err := svc.Open(context.Background(), session.Session{Role: models.RoleEmployeur}, Request{Section: "ententes"})
	if !gateway.IsUnauthorized(err) {
		t.Fatalf("expected 401 to propagate, got %v", err)
	}
}

func TestOpenDiscardsResultsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := &stubBackend{
		ententes:     []models.Entente{{ID: 1, Statut: models.EntenteStatusValidee}},
		beforeReturn: func(context.Context) { cancel() },
	}
	svc := NewService(backend)

	view, err := svc.Open(ctx, session.Session{Role: models.RoleProf}, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if view.Items != nil {
		t.Fatalf("expected no items to be written after cancellation, got %#v", view.Items)
	}
}

func TestOpenStudentOffersGatesApplyOnApprovedCV(t *testing.T) {
	term, err := ententes.ParseTerm("winter 2025")
	if err != nil {
		t.Fatalf("parse term: %v", err)
	}
	backend := &stubBackend{
		cv: models.CV{ID: 3, Status: models.CVStatusPending},
		offers: []models.InternshipOffer{
			{ID: 1, SchoolTerm: "WINTER 2025"},
			{ID: 2, SchoolTerm: "SUMMER 2025"},
		},
	}
	svc := NewService(backend)

	view, err := svc.Open(context.Background(), session.Session{Role: models.RoleStudent}, Request{Section: "offers", Term: &term})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if view.CanApply {
		t.Fatalf("expected apply to be blocked while CV is pending")
	}
	offers := view.Items.([]models.InternshipOffer)
	if len(offers) != 1 || offers[0].ID != 1 {
		t.Fatalf("expected term filter to keep offer 1, got %+v", offers)
	}
	if view.Term != "WINTER 2025" {
		t.Fatalf("expected normalized term, got %q", view.Term)
	}

	backend.cv.Status = models.CVStatusApproved
	view, err = svc.Open(context.Background(), session.Session{Role: models.RoleStudent}, Request{Section: "offers"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if !view.CanApply {
		t.Fatalf("expected apply to be allowed with an approved CV")
	}
}

func TestOpenStudentWithoutCV(t *testing.T) {
	backend := &stubBackend{cvErr: &gateway.Error{Kind: gateway.KindHTTP, Status: http.StatusNotFound}}
	svc := NewService(backend)

	view, err := svc.Open(context.Background(), session.Session{Role: models.RoleStudent}, Request{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if view.Section != SectionCV || view.CV != nil || view.Error != "" {
		t.Fatalf("expected empty cv section, got %+v", view)
	}
}

func TestOpenEntentesAreSortedForViewer(t *testing.T) {
	backend := &stubBackend{ententes: []models.Entente{
		{ID: 1, Statut: models.EntenteStatusBrouillon, DateCreation: ts("2025-01-01")},
		{ID: 2, Statut: models.EntenteStatusBrouillon, DateCreation: ts("2025-03-01")},
	}}
	svc := NewService(backend)

	view, err := svc.Open(context.Background(), session.Session{Role: models.RoleEmployeur}, Request{Section: "ententes"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	rows := view.Items.([]ententes.Row)
	if len(rows) != 2 || rows[0].ID != 2 {
		t.Fatalf("expected newest entente first, got %+v", rows)
	}
	if view.Sort != ententes.DefaultSort() {
		t.Fatalf("expected default sort, got %+v", view.Sort)
	}
}
