package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/config"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/dashboard"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/db"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/handlers"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/middleware"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/preview"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/repositories"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/session"
)

// loginLimiterTTL is how long an idle client entry is kept by the login limiter.
const loginLimiterTTL = 10 * time.Minute

type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type previewPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type dependencies struct {
	handlers.Dependencies
	purger        sessionPurger
	previewPurger previewPurger
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, cfg config.Config) (dependencies, func(context.Context) error, error) {
	var closers []func(context.Context) error
	cleanup := func(ctx context.Context) error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i](ctx))
		}
		return errors.Join(errs...)
	}

	var deps dependencies

	var store session.Store
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return dependencies{}, nil, err
		}
		closers = append(closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		pgStore := repositories.NewPostgresSessionStore(pool)
		store = pgStore
		deps.purger = pgStore
	case config.SessionStoreRedis:
		client, err := repositories.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return dependencies{}, nil, err
		}
		closers = append(closers, func(context.Context) error {
			return client.Close()
		})
		store = repositories.NewRedisSessionStore(client)
	case config.SessionStoreMemory, "":
		memStore := session.NewInMemoryStore()
		store = memStore
		deps.purger = memStore
	default:
		return dependencies{}, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}

	var blobs preview.BlobStore
	switch cfg.PreviewStore {
	case config.PreviewStoreS3:
		s3Store, err := preview.NewS3Store(ctx, cfg.ObjectStore)
		if err != nil {
			_ = cleanup(ctx)
			return dependencies{}, nil, err
		}
		blobs = s3Store
	case config.PreviewStoreMemory, "":
		blobs = preview.NewMemoryStore()
	default:
		_ = cleanup(ctx)
		return dependencies{}, nil, fmt.Errorf("unknown preview store %q", cfg.PreviewStore)
	}

	previews := preview.NewRegistry(blobs, cfg.PreviewBaseURL).WithTTL(cfg.PreviewTTL)
	if cfg.PreviewTTL > 0 {
		deps.previewPurger = previews
	}
	client := gateway.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.BackendTimeout})

	deps.Dependencies = handlers.Dependencies{
		Backend:    client,
		Sessions:   session.NewManager(store, cfg.SessionIdleTTL),
		Dashboards: dashboard.NewService(client),
		Previews:   previews,
	}
	if cfg.LoginRateLimit > 0 {
		deps.LoginLimiter = middleware.NewIPRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, cfg.LoginRateBurst, loginLimiterTTL)
	}

	return deps, cleanup, nil
}
