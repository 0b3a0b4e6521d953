package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

var (
	// ErrSessionNotFound indicates the tab key does not map to a live session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMissingToken indicates an attempt to start a session without an access token.
	ErrMissingToken = errors.New("access token must be provided")
)

// Session is the tab-scoped authentication state forwarded to the backend.
// The JSON names match the keys the web client keeps in sessionStorage.
type Session struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	Email       string      `json:"email,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	Role        models.Role `json:"role"`
}

// AuthHeader returns the Authorization header value for backend requests.
// Some backend responses carry a non-Bearer token type; those tokens are
// forwarded unprefixed.
func (s Session) AuthHeader() (string, bool) {
	if s.AccessToken == "" {
		return "", false
	}
	if strings.HasPrefix(strings.ToUpper(s.TokenType), "BEARER") {
		return "Bearer " + s.AccessToken, true
	}
	return s.AccessToken, true
}

// Store persists sessions under their tab key.
type Store interface {
	Save(ctx context.Context, key string, session Session, ttl time.Duration) error
	Find(ctx context.Context, key string) (Session, error)
	// Touch pushes the idle deadline of key forward by ttl.
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Manager owns the lifecycle of tab sessions.
type Manager struct {
	idleTTL time.Duration
	store   Store
}

// NewManager constructs a Manager. A zero idleTTL keeps sessions until Clear.
func NewManager(store Store, idleTTL time.Duration) *Manager {
	if store == nil {
		panic("session: store must not be nil")
	}
	if idleTTL < 0 {
		idleTTL = 0
	}
	return &Manager{idleTTL: idleTTL, store: store}
}

// Start stores a freshly authenticated session and returns the tab key that identifies it.
func (m *Manager) Start(ctx context.Context, s Session) (string, error) {
	if s.AccessToken == "" {
		return "", ErrMissingToken
	}
	if s.Role == "" {
		s.Role = models.RoleUnknown
	}

	key, err := randomKey()
	if err != nil {
		return "", err
	}
	if err := m.store.Save(ctx, key, s, m.idleTTL); err != nil {
		return "", err
	}
	return key, nil
}

// Get returns the session stored for key and marks the tab as active.
func (m *Manager) Get(ctx context.Context, key string) (Session, error) {
	if key == "" {
		return Session{}, ErrSessionNotFound
	}
	s, err := m.store.Find(ctx, key)
	if err != nil {
		return Session{}, err
	}
	if m.idleTTL > 0 {
		if err := m.store.Touch(ctx, key, m.idleTTL); err != nil {
			return Session{}, err
		}
	}
	return s, nil
}

// Set replaces the session stored for an existing key.
func (m *Manager) Set(ctx context.Context, key string, s Session) error {
	if key == "" {
		return ErrSessionNotFound
	}
	if _, err := m.store.Find(ctx, key); err != nil {
		return err
	}
	return m.store.Save(ctx, key, s, m.idleTTL)
}

// AuthHeader resolves the Authorization header value for the tab.
func (m *Manager) AuthHeader(ctx context.Context, key string) (string, bool) {
	s, err := m.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return s.AuthHeader()
}

// Clear wipes every value held for the tab. Missing sessions are not an error.
func (m *Manager) Clear(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := m.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

func randomKey() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
