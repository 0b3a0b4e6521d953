package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/config"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/db"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/handlers"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/httpserver"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/logging"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/middleware"
)

// sessionPurgeInterval controls how often expired sessions are swept.
const sessionPurgeInterval = 10 * time.Minute

// previewPurgeInterval controls how often abandoned previews are released.
const previewPurgeInterval = time.Minute

// Run bootstraps the leandrose BFF.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or migrate")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps, cleanup, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		if err := cleanup(cleanupCtx); err != nil {
			logger.Error("release dependencies", slog.Any("error", err))
		}
	}()

	if deps.purger != nil {
		go purgeSessions(ctx, logger, deps.purger)
	}
	if deps.previewPurger != nil {
		go purgePreviews(ctx, logger, deps.previewPurger)
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.Dependencies)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server",
		slog.Int("port", cfg.AppPort),
		slog.String("backend", cfg.BackendURL),
		slog.String("sessionStore", cfg.SessionStore),
		slog.String("previewStore", cfg.PreviewStore),
	)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancelShutdown()

	return srv.Shutdown(shutdownCtx)
}

func purgeSessions(ctx context.Context, logger *slog.Logger, purger sessionPurger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := purger.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired sessions", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Info("purged expired sessions", slog.Int64("removed", removed))
			}
		}
	}
}

func purgePreviews(ctx context.Context, logger *slog.Logger, purger previewPurger) {
	ticker := time.NewTicker(previewPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := purger.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired previews", slog.Any("error", err))
				continue
			}
			if released > 0 {
				logger.Info("released expired previews", slog.Int("released", released))
			}
		}
	}
}

func runMigrations(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("LEANDROSE_DATABASE_URL is required to run migrations")
	}

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	migrationDir := cfg.MigrationDir
	if !filepath.IsAbs(migrationDir) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		migrationDir = filepath.Join(wd, migrationDir)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return db.Migrate(ctx, pool, migrationDir, command, os.Stdout)
}
