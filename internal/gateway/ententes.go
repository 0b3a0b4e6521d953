package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// NewEntente is the body of POST /gestionnaire/ententes.
type NewEntente struct {
	CandidatureID int64  `json:"candidatureId" validate:"required,gt=0"`
	DateDebut     string `json:"dateDebut" validate:"required,datetime=2006-01-02"`
	Duree         int    `json:"duree" validate:"required,gt=0"`
	Lieu          string `json:"lieu" validate:"required"`
	Remuneration  string `json:"remuneration,omitempty"`
	Missions      string `json:"missions" validate:"required"`
}

type profAssignment struct {
	ProfID int64 `json:"profId" validate:"required,gt=0"`
}

// Ententes lists the agreements visible to the session's role.
func (c *Client) Ententes(ctx context.Context, s session.Session) ([]models.Entente, error) {
	prefix, err := rolePrefix(s, models.RoleStudent, models.RoleEmployeur, models.RoleGestionnaire, models.RoleProf)
	if err != nil {
		return nil, err
	}

	var list []models.Entente
	if err := c.getJSON(ctx, &s, prefix+"/ententes", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SignEntente signs on behalf of the session's party. The endpoint is chosen by role.
func (c *Client) SignEntente(ctx context.Context, s session.Session, id int64) error {
	prefix, err := rolePrefix(s, models.RoleStudent, models.RoleEmployeur, models.RoleGestionnaire)
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, &s, http.MethodPost, fmt.Sprintf("%s/ententes/%d/signer", prefix, id), nil, nil)
}

// EntentePDF downloads the agreement document.
func (c *Client) EntentePDF(ctx context.Context, s session.Session, id int64) (Blob, error) {
	prefix, err := rolePrefix(s, models.RoleStudent, models.RoleEmployeur, models.RoleGestionnaire, models.RoleProf)
	if err != nil {
		return Blob{}, err
	}
	return c.getBlob(ctx, &s, fmt.Sprintf("%s/ententes/%d/pdf", prefix, id))
}

// CreateEntente drafts an agreement from an accepted candidature.
func (c *Client) CreateEntente(ctx context.Context, s session.Session, req NewEntente) (models.Entente, error) {
	if err := c.check(req); err != nil {
		return models.Entente{}, err
	}

	var created models.Entente
	if err := c.sendJSON(ctx, &s, http.MethodPost, "/gestionnaire/ententes", req, &created); err != nil {
		return models.Entente{}, err
	}
	return created, nil
}

// Profs lists the professors that can be attributed.
func (c *Client) Profs(ctx context.Context, s session.Session) ([]models.Prof, error) {
	var profs []models.Prof
	if err := c.getJSON(ctx, &s, "/gestionnaire/profs", &profs); err != nil {
		return nil, err
	}
	return profs, nil
}

// AssignProf attributes a professor to a validated agreement.
func (c *Client) AssignProf(ctx context.Context, s session.Session, ententeID, profID int64) error {
	body := profAssignment{ProfID: profID}
	if err := c.check(body); err != nil {
		return err
	}
	return c.sendJSON(ctx, &s, http.MethodPut, fmt.Sprintf("/gestionnaire/ententes/%d/prof", ententeID), body, nil)
}
