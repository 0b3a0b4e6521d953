package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

func TestSessionAuthHeader(t *testing.T) {
	cases := []struct {
		name      string
		session   Session
		want      string
		wantFound bool
	}{
		{name: "bearer lower case", session: Session{AccessToken: "abc", TokenType: "bearer"}, want: "Bearer abc", wantFound: true},
		{name: "bearer upper case", session: Session{AccessToken: "abc", TokenType: "BEARER"}, want: "Bearer abc", wantFound: true},
		{name: "bearer prefix", session: Session{AccessToken: "abc", TokenType: "BearerJWT"}, want: "Bearer abc", wantFound: true},
		{name: "custom type", session: Session{AccessToken: "abc", TokenType: "custom"}, want: "abc", wantFound: true},
		{name: "empty type", session: Session{AccessToken: "abc"}, want: "abc", wantFound: true},
		{name: "no token", session: Session{TokenType: "BEARER"}, want: "", wantFound: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.session.AuthHeader()
			if got != tc.want || ok != tc.wantFound {
				t.Fatalf("expected (%q, %v) got (%q, %v)", tc.want, tc.wantFound, got, ok)
			}
		})
	}
}

func TestManagerStartGetClear(t *testing.T) {
	store := NewInMemoryStore()
	manager := NewManager(store, 0)
	ctx := context.Background()

	key, err := manager.Start(ctx, Session{AccessToken: "abc", TokenType: "BEARER"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if key == "" {
		t.Fatal("expected a tab key")
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Role != models.RoleUnknown {
		t.Fatalf("expected role to default to UNKNOWN got %q", got.Role)
	}

	got.Role = models.RoleGestionnaire
	got.Email = "manager@example.com"
	if err := manager.Set(ctx, key, got); err != nil {
		t.Fatalf("set: %v", err)
	}

	header, ok := manager.AuthHeader(ctx, key)
	if !ok || header != "Bearer abc" {
		t.Fatalf("unexpected auth header %q (%v)", header, ok)
	}

	if err := manager.Clear(ctx, key); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Has(key) {
		t.Fatal("expected session to be wiped")
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}
	if _, ok := manager.AuthHeader(ctx, key); ok {
		t.Fatal("expected no auth header after clear")
	}
	if err := manager.Clear(ctx, key); err != nil {
		t.Fatalf("second clear should be a no-op, got %v", err)
	}
}

func TestManagerTabsAreIsolated(t *testing.T) {
	manager := NewManager(NewInMemoryStore(), 0)
	ctx := context.Background()

	first, err := manager.Start(ctx, Session{AccessToken: "one", TokenType: "BEARER"})
	if err != nil {
		t.Fatalf("start first: %v", err)
	}
	second, err := manager.Start(ctx, Session{AccessToken: "two", TokenType: "BEARER"})
	if err != nil {
		t.Fatalf("start second: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tab keys")
	}

	if err := manager.Clear(ctx, first); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := manager.Get(ctx, second); err != nil {
		t.Fatalf("expected second tab to survive, got %v", err)
	}
}

func TestManagerValidation(t *testing.T) {
	manager := NewManager(NewInMemoryStore(), 0)
	ctx := context.Background()

	if _, err := manager.Start(ctx, Session{TokenType: "BEARER"}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken got %v", err)
	}
	if err := manager.Set(ctx, "missing", Session{AccessToken: "x"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}
	if _, err := manager.Get(ctx, ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for empty key got %v", err)
	}
}

func TestInMemoryStoreIdleEviction(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	if err := store.Save(ctx, "tab", Session{AccessToken: "abc"}, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Find(ctx, "tab"); err != nil {
		t.Fatalf("find before expiry: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Find(ctx, "tab"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected idle session to be evicted got %v", err)
	}
	if store.Has("tab") {
		t.Fatal("expected evicted entry to be removed")
	}
}

func TestManagerGetSlidesIdleDeadline(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	manager := NewManager(store, 10*time.Minute)

	ctx := context.Background()
	key, err := manager.Start(ctx, Session{AccessToken: "abc", TokenType: "Bearer"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 3; i++ {
		now = now.Add(8 * time.Minute)
		if _, err := manager.Get(ctx, key); err != nil {
			t.Fatalf("expected active tab to survive read %d: %v", i, err)
		}
	}

	now = now.Add(11 * time.Minute)
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected idle tab to be evicted got %v", err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithSession(context.Background(), "tab-1", Session{AccessToken: "abc", Role: models.RoleStudent})

	key, s, ok := FromContext(ctx)
	if !ok || key != "tab-1" || s.Role != models.RoleStudent {
		t.Fatalf("unexpected context session: %q %+v %v", key, s, ok)
	}

	if _, _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no session on bare context")
	}
}

func TestInMemoryStoreEvictionKeepsConcurrentSave(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	armed := false
	store.WithNowFunc(func() time.Time {
		if armed {
			armed = false
			if err := store.Save(ctx, "tab", Session{AccessToken: "fresh"}, time.Hour); err != nil {
				t.Errorf("save during find: %v", err)
			}
		}
		return now
	})

	if err := store.Save(ctx, "tab", Session{AccessToken: "stale"}, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(2 * time.Minute)
	armed = true

	if _, err := store.Find(ctx, "tab"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected stale read to miss, got %v", err)
	}
	got, err := store.Find(ctx, "tab")
	if err != nil {
		t.Fatalf("expected session saved during eviction to survive, got %v", err)
	}
	if got.AccessToken != "fresh" {
		t.Fatalf("expected fresh session got %+v", got)
	}
}

func TestInMemoryStorePurgeExpired(t *testing.T) {
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryStore().WithNowFunc(func() time.Time { return now })
	ctx := context.Background()

	for key, ttl := range map[string]time.Duration{"closed": time.Minute, "active": time.Hour, "pinned": 0} {
		if err := store.Save(ctx, key, Session{AccessToken: key}, ttl); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}
	now = now.Add(5 * time.Minute)

	removed, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 || store.Has("closed") {
		t.Fatalf("expected only the idle tab to be purged, removed=%d", removed)
	}
	if !store.Has("active") || !store.Has("pinned") {
		t.Fatalf("expected live tabs to remain")
	}
}
