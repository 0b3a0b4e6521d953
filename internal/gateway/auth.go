package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// Credentials is the body of POST /user/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (models.LoginResponse, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := c.check(creds); err != nil {
		return models.LoginResponse{}, err
	}

	var resp models.LoginResponse
	if err := c.sendJSON(ctx, nil, http.MethodPost, "/user/login", creds, &resp); err != nil {
		return models.LoginResponse{}, err
	}
	return resp, nil
}

// Me returns the profile of the session's user.
func (c *Client) Me(ctx context.Context, s session.Session) (models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, &s, "/user/me", &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
