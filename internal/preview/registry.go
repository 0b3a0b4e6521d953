// Package preview brokers short-lived object URLs for PDF blobs downloaded
// through the gateways. Each preview is revoked exactly once.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
)

var (
	// ErrNotFound is returned for unknown previews or previews owned by another tab.
	ErrNotFound = errors.New("preview not found")
	// ErrRevoked is returned when a preview has already been released.
	ErrRevoked = errors.New("preview already revoked")
)

// BlobStore persists preview content.
type BlobStore interface {
	// Put stores the blob under key. A non-empty URL means the content is
	// served directly by the store; otherwise the BFF serves it.
	Put(ctx context.Context, key string, blob gateway.Blob) (string, error)
	Get(ctx context.Context, key string) (gateway.Blob, error)
	Delete(ctx context.Context, key string) error
}

// Preview is the handle returned to the browser.
type Preview struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type entry struct {
	owner    string
	key      string
	openedAt time.Time
	revoked  bool
}

// Registry tracks open previews per tab.
type Registry struct {
	mu      sync.Mutex
	store   BlobStore
	baseURL string
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry
}

// NewRegistry constructs a registry. baseURL prefixes the BFF-served preview path.
func NewRegistry(store BlobStore, baseURL string) *Registry {
	if store == nil {
		panic("preview: nil blob store")
	}
	return &Registry{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// WithTTL bounds the lifetime of every preview. Previews older than ttl are
// released by PurgeExpired even when their tab never comes back. Zero keeps
// previews until they are revoked.
func (r *Registry) WithTTL(ttl time.Duration) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttl = max(ttl, 0)
	return r
}

// WithNowFunc overrides the clock.
func (r *Registry) WithNowFunc(now func() time.Time) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// Open stores blob and returns its object URL.
func (r *Registry) Open(ctx context.Context, owner string, blob gateway.Blob) (Preview, error) {
	if owner == "" {
		return Preview{}, fmt.Errorf("open preview: owner is required")
	}
	if len(blob.Data) == 0 {
		return Preview{}, fmt.Errorf("open preview: empty blob")
	}

	id := uuid.NewString()
	key := "previews/" + id
	if name := path.Base(blob.Filename); name != "." && name != "/" && name != "" {
		key += "/" + name
	}

	publicURL, err := r.store.Put(ctx, key, blob)
	if err != nil {
		return Preview{}, fmt.Errorf("store preview: %w", err)
	}

	r.mu.Lock()
	r.entries[id] = &entry{owner: owner, key: key, openedAt: r.now()}
	r.mu.Unlock()

	location := publicURL
	if location == "" {
		location = r.baseURL + "/" + id
	}
	logging.FromContext(ctx).Debug("preview opened", slog.String("preview_id", id), slog.Int("bytes", len(blob.Data)))
	return Preview{ID: id, URL: location}, nil
}

// Revoke releases the preview. The stored blob is deleted exactly once.
func (r *Registry) Revoke(ctx context.Context, owner, id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.owner != owner {
		r.mu.Unlock()
		return ErrNotFound
	}
	if e.revoked {
		r.mu.Unlock()
		return ErrRevoked
	}
	e.revoked = true
	key := e.key
	r.mu.Unlock()

	if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		// The blob is still stored; leave the preview open so the caller can retry.
		r.mu.Lock()
		e.revoked = false
		r.mu.Unlock()
		return fmt.Errorf("delete preview %s: %w", id, err)
	}
	return nil
}

// RevokeOwner releases every open preview of a tab and forgets its tombstones.
func (r *Registry) RevokeOwner(ctx context.Context, owner string) error {
	r.mu.Lock()
	var keys []string
	for id, e := range r.entries {
		if e.owner != owner {
			continue
		}
		if !e.revoked {
			keys = append(keys, e.key)
		}
		delete(r.entries, id)
	}
	r.mu.Unlock()

	return r.deleteAll(ctx, keys)
}

// PurgeExpired releases previews opened more than ttl ago, together with old
// tombstones, and reports how many were dropped.
func (r *Registry) PurgeExpired(ctx context.Context) (int, error) {
	r.mu.Lock()
	if r.ttl <= 0 {
		r.mu.Unlock()
		return 0, nil
	}
	cutoff := r.now().Add(-r.ttl)
	var keys []string
	dropped := 0
	for id, e := range r.entries {
		if e.openedAt.After(cutoff) {
			continue
		}
		if !e.revoked {
			keys = append(keys, e.key)
		}
		delete(r.entries, id)
		dropped++
	}
	r.mu.Unlock()

	if len(keys) > 0 {
		logging.FromContext(ctx).Debug("releasing expired previews", slog.Int("count", len(keys)))
	}
	return dropped, r.deleteAll(ctx, keys)
}

func (r *Registry) deleteAll(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Content returns the bytes of an open preview.
func (r *Registry) Content(ctx context.Context, id string) (gateway.Blob, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return gateway.Blob{}, ErrNotFound
	}
	if e.revoked {
		r.mu.Unlock()
		return gateway.Blob{}, ErrRevoked
	}
	key := e.key
	r.mu.Unlock()

	return r.store.Get(ctx, key)
}

// OpenCount reports how many previews are currently held for owner.
func (r *Registry) OpenCount(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.owner == owner && !e.revoked {
			n++
		}
	}
	return n
}
