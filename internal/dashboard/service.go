package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/ententes"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// Backend is the slice of the resource gateways the dashboards read from.
type Backend interface {
	MyCV(ctx context.Context, s session.Session) (models.CV, error)
	PendingCVs(ctx context.Context, s session.Session) ([]models.CV, error)
	Offers(ctx context.Context, s session.Session, listing models.OfferListing) ([]models.InternshipOffer, error)
	PublishedOffers(ctx context.Context, s session.Session) ([]models.InternshipOffer, error)
	EmployerOffers(ctx context.Context, s session.Session) ([]models.InternshipOffer, error)
	Candidatures(ctx context.Context, s session.Session) ([]models.Candidature, error)
	Convocations(ctx context.Context, s session.Session) ([]models.Convocation, error)
	Ententes(ctx context.Context, s session.Session) ([]models.Entente, error)
}

// Request carries the shell state taken from the URL.
type Request struct {
	Section string
	Term    *ententes.Term
	Sort    ententes.SortState
	Listing models.OfferListing
}

// Counts are the manager header badges.
type Counts struct {
	PendingCVs      int `json:"pendingCvs"`
	PendingOffers   int `json:"pendingOffers"`
	AwaitingManager int `json:"awaitingManager"`
}

// View is one rendered dashboard section.
type View struct {
	Role     models.Role        `json:"role"`
	Section  Section            `json:"section"`
	Sections []Section          `json:"sections"`
	Term     string             `json:"term,omitempty"`
	Sort     ententes.SortState `json:"sort"`
	Listing  string             `json:"listing,omitempty"`
	Counts   *Counts            `json:"counts,omitempty"`
	Items    any                `json:"items"`
	CV       *models.CV         `json:"cv,omitempty"`
	CanApply bool               `json:"canApply,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Service opens dashboard sections. Every Open issues its own backend requests.
type Service struct {
	backend Backend
}

// NewService constructs a Service over backend.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Load runs fetch under ctx and discards its result when ctx ended first.
func Load[T any](ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	v, err := fetch(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		var zero T
		return zero, ctxErr
	}
	return v, err
}

// Open loads exactly the selected section. A 401 and context cancellation
// are returned as errors; any other failure is reported in View.Error with
// an empty list.
func (s *Service) Open(ctx context.Context, sess session.Session, req Request) (View, error) {
	view := View{
		Role:     sess.Role,
		Section:  SelectSection(sess.Role, req.Section),
		Sections: Sections(sess.Role),
		Sort:     req.Sort,
		Items:    []any{},
	}
	if view.Sort.Field == "" {
		view.Sort = ententes.DefaultSort()
	}
	if req.Term != nil {
		view.Term = req.Term.String()
	}
	if view.Section == "" {
		return view, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var counts *Counts
	if sess.Role == models.RoleGestionnaire {
		g.Go(func() error {
			c, err := s.counts(gctx, sess)
			if err != nil {
				return err
			}
			counts = c
			return nil
		})
	}

	var loadErr error
	g.Go(func() error {
		loadErr = s.loadSection(gctx, sess, req, &view)
		if gateway.IsUnauthorized(loadErr) {
			return loadErr
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return View{}, err
	}
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	view.Counts = counts

	if loadErr != nil {
		if errors.Is(loadErr, context.Canceled) || errors.Is(loadErr, context.DeadlineExceeded) {
			return View{}, loadErr
		}
		logging.FromContext(ctx).Warn("dashboard section failed",
			slog.String("section", string(view.Section)),
			slog.Any("error", loadErr),
		)
		view.Items = []any{}
		view.CV = nil
		view.CanApply = false
		view.Error = gateway.UserMessage(loadErr)
	}
	return view, nil
}

func (s *Service) loadSection(ctx context.Context, sess session.Session, req Request, view *View) error {
	switch view.Section {
	case SectionCV:
		cv, err := s.myCV(ctx, sess)
		if err != nil {
			return err
		}
		view.CV = cv
	case SectionCVs:
		cvs, err := Load(ctx, func(ctx context.Context) ([]models.CV, error) { return s.backend.PendingCVs(ctx, sess) })
		if err != nil {
			return err
		}
		view.Items = nonNil(cvs)
	case SectionOffers:
		return s.loadOffers(ctx, sess, req, view)
	case SectionCandidatures:
		list, err := Load(ctx, func(ctx context.Context) ([]models.Candidature, error) { return s.backend.Candidatures(ctx, sess) })
		if err != nil {
			return err
		}
		view.Items = nonNil(ententes.FilterCandidaturesByTerm(list, req.Term))
	case SectionConvocations:
		list, err := Load(ctx, func(ctx context.Context) ([]models.Convocation, error) { return s.backend.Convocations(ctx, sess) })
		if err != nil {
			return err
		}
		view.Items = nonNil(list)
	case SectionEntentes:
		list, err := Load(ctx, func(ctx context.Context) ([]models.Entente, error) { return s.backend.Ententes(ctx, sess) })
		if err != nil {
			return err
		}
		view.Items = ententes.List(list, sess.Role, req.Term, view.Sort)
	}
	return nil
}

func (s *Service) loadOffers(ctx context.Context, sess session.Session, req Request, view *View) error {
	var (
		offers []models.InternshipOffer
		err    error
	)
	switch sess.Role {
	case models.RoleGestionnaire:
		listing := req.Listing
		if listing == "" {
			listing = models.OfferListingPending
		}
		view.Listing = string(listing)
		offers, err = Load(ctx, func(ctx context.Context) ([]models.InternshipOffer, error) {
			return s.backend.Offers(ctx, sess, listing)
		})
	case models.RoleEmployeur:
		offers, err = Load(ctx, func(ctx context.Context) ([]models.InternshipOffer, error) { return s.backend.EmployerOffers(ctx, sess) })
	default:
		offers, err = Load(ctx, func(ctx context.Context) ([]models.InternshipOffer, error) { return s.backend.PublishedOffers(ctx, sess) })
		if err == nil {
			var cv *models.CV
			cv, err = s.myCV(ctx, sess)
			view.CV = cv
			view.CanApply = cv != nil && cv.Status == models.CVStatusApproved
		}
	}
	if err != nil {
		return err
	}
	view.Items = nonNil(ententes.FilterOffersByTerm(offers, req.Term))
	return nil
}

// myCV treats a 404 as "no CV uploaded yet".
func (s *Service) myCV(ctx context.Context, sess session.Session) (*models.CV, error) {
	cv, err := Load(ctx, func(ctx context.Context) (models.CV, error) { return s.backend.MyCV(ctx, sess) })
	if err != nil {
		if gateway.StatusOf(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if cv.ID == 0 && cv.Status == "" {
		return nil, nil
	}
	return &cv, nil
}

// counts loads the manager header. Only a 401 aborts the dashboard; other
// failures leave the header empty.
func (s *Service) counts(ctx context.Context, sess session.Session) (*Counts, error) {
	var c Counts
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cvs, err := Load(gctx, func(ctx context.Context) ([]models.CV, error) { return s.backend.PendingCVs(ctx, sess) })
		c.PendingCVs = len(cvs)
		return err
	})
	g.Go(func() error {
		offers, err := Load(gctx, func(ctx context.Context) ([]models.InternshipOffer, error) {
			return s.backend.Offers(ctx, sess, models.OfferListingPending)
		})
		c.PendingOffers = len(offers)
		return err
	})
	g.Go(func() error {
		list, err := Load(gctx, func(ctx context.Context) ([]models.Entente, error) { return s.backend.Ententes(ctx, sess) })
		for _, e := range list {
			if ententes.DeriveStatus(e, models.RoleGestionnaire).Badge == ententes.BadgeAwaitingYourSignature {
				c.AwaitingManager++
			}
		}
		return err
	})

	if err := g.Wait(); err != nil {
		if gateway.IsUnauthorized(err) {
			return nil, err
		}
		logging.FromContext(ctx).Warn("dashboard counts failed", slog.Any("error", err))
		return nil, nil
	}
	return &c, nil
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
