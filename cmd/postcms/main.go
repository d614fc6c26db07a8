// Package main is the entry point for the postcms API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postcms/internal/auth"
	"postcms/internal/cache"
	"postcms/internal/config"
	"postcms/internal/database"
	"postcms/internal/handlers"
	"postcms/internal/logging"
	"postcms/internal/middleware"
	"postcms/internal/router"
	"postcms/internal/service"
	"postcms/internal/session"
	"postcms/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, flush := logging.New(os.Stdout, logging.Options{
		Env:       cfg.Env,
		SentryDSN: cfg.SentryDSN,
		Release:   version,
	})
	defer flush()
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"version", version,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		return err
	}

	// Seed the development admin account (no-op if users exist).
	if cfg.IsDev() {
		if err := database.Seed(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}

	// Connect to Valkey (access token store).
	valkeyClient, err := cache.ConnectValkey(context.Background(),
		cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	tokens := session.NewStore(valkeyClient, cfg.TokenTTL, !cfg.IsDev())

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)

	authSvc := auth.NewService(userStore, tokens, "postcms")
	postSvc := service.NewPostService(postStore, categoryStore, cfg.SlugMaxRetries)
	categorySvc := service.NewCategoryService(categoryStore, cfg.SlugMaxRetries)

	var loginLimiter *middleware.RateLimiter
	if cfg.LoginRateLimit > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
		defer loginLimiter.Stop()
	}

	r := router.New(authSvc, loginLimiter, router.Handlers{
		Auth:       handlers.NewAuth(authSvc, tokens),
		Posts:      handlers.NewPosts(postSvc),
		Categories: handlers.NewCategories(categorySvc),
		Health: handlers.NewHealth(map[string]handlers.CheckFunc{
			"postgres": db.PingContext,
			"valkey": func(ctx context.Context) error {
				return valkeyClient.Ping(ctx).Err()
			},
		}),
	})

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
