package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// Offers lists the manager's offers in one review queue.
func (c *Client) Offers(ctx context.Context, s session.Session, listing models.OfferListing) ([]models.InternshipOffer, error) {
	switch listing {
	case models.OfferListingPending, models.OfferListingApproved, models.OfferListingRejected:
	default:
		return nil, invalid("listing", "oneof", fmt.Sprintf("unknown offer listing %q", listing))
	}

	var offers []models.InternshipOffer
	if err := c.getJSON(ctx, &s, "/gestionnaire/offers/"+string(listing), &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// ApproveOffer publishes a pending offer.
func (c *Client) ApproveOffer(ctx context.Context, s session.Session, id int64) error {
	return c.sendJSON(ctx, &s, http.MethodPost, fmt.Sprintf("/gestionnaire/offers/%d/approve", id), nil, nil)
}

// RejectOffer rejects a pending offer with a mandatory comment.
func (c *Client) RejectOffer(ctx context.Context, s session.Session, id int64, comment string) error {
	body := Rejection{Comment: strings.TrimSpace(comment)}
	if err := c.check(body); err != nil {
		return err
	}
	return c.sendJSON(ctx, &s, http.MethodPost, fmt.Sprintf("/gestionnaire/offers/%d/reject", id), body, nil)
}

// OfferPDF downloads the offer document.
func (c *Client) OfferPDF(ctx context.Context, s session.Session, id int64) (Blob, error) {
	prefix, err := rolePrefix(s, models.RoleGestionnaire, models.RoleStudent, models.RoleEmployeur)
	if err != nil {
		return Blob{}, err
	}
	return c.getBlob(ctx, &s, fmt.Sprintf("%s/offers/%d/pdf", prefix, id))
}

// PublishedOffers lists offers a student may apply to.
func (c *Client) PublishedOffers(ctx context.Context, s session.Session) ([]models.InternshipOffer, error) {
	var offers []models.InternshipOffer
	if err := c.getJSON(ctx, &s, "/student/offers", &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// EmployerOffers lists the offers authored by the employer.
func (c *Client) EmployerOffers(ctx context.Context, s session.Session) ([]models.InternshipOffer, error) {
	var offers []models.InternshipOffer
	if err := c.getJSON(ctx, &s, "/employeur/offers", &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// Apply submits a candidature. Students without an approved CV are refused client-side.
func (c *Client) Apply(ctx context.Context, s session.Session, offerID int64, cvStatus models.CVStatus) (models.Candidature, error) {
	if cvStatus != models.CVStatusApproved {
		return models.Candidature{}, invalid("cv", "approved", "an approved CV is required to apply")
	}

	var candidature models.Candidature
	if err := c.sendJSON(ctx, &s, http.MethodPost, fmt.Sprintf("/student/offers/%d/apply", offerID), nil, &candidature); err != nil {
		return models.Candidature{}, err
	}
	return candidature, nil
}
