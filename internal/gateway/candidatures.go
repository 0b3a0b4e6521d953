package gateway

import (
	"context"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// Candidatures lists the candidatures visible to the session's role.
func (c *Client) Candidatures(ctx context.Context, s session.Session) ([]models.Candidature, error) {
	path := ""
	switch s.Role {
	case models.RoleStudent:
		path = "/student/candidatures"
	case models.RoleEmployeur:
		path = "/employeur/candidatures"
	case models.RoleGestionnaire:
		path = "/gestionnaire/candidatures/accepted"
	default:
		_, err := rolePrefix(s, models.RoleStudent, models.RoleEmployeur, models.RoleGestionnaire)
		return nil, err
	}

	var list []models.Candidature
	if err := c.getJSON(ctx, &s, path, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Convocations lists the student's interview invitations.
func (c *Client) Convocations(ctx context.Context, s session.Session) ([]models.Convocation, error) {
	var list []models.Convocation
	if err := c.getJSON(ctx, &s, "/student/convocations", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ConvocationFor finds the invitation attached to a candidature.
func (c *Client) ConvocationFor(ctx context.Context, s session.Session, candidatureID int64) (models.Convocation, error) {
	list, err := c.Convocations(ctx, s)
	if err != nil {
		return models.Convocation{}, err
	}
	for _, conv := range list {
		if conv.CandidatureID == candidatureID {
			return conv, nil
		}
	}
	return models.Convocation{}, ErrNoConvocation
}
