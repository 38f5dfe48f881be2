// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-catalog/internal/access"
	"github.com/olegiv/ocms-catalog/internal/cache"
	"github.com/olegiv/ocms-catalog/internal/config"
	"github.com/olegiv/ocms-catalog/internal/handler"
	"github.com/olegiv/ocms-catalog/internal/handler/api"
	"github.com/olegiv/ocms-catalog/internal/logging"
	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/scheduler"
	"github.com/olegiv/ocms-catalog/internal/store"
	"github.com/olegiv/ocms-catalog/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "catalog - localized product, service and news backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_DB_PATH                SQLite database path (default: ./data/catalog.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_DB_DRIVER              sqlite (pure Go) or sqlite3 (cgo) (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_SERVER_PORT            Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_ENV                    Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_LOCALES                Accepted locales (default: fa,en,ar)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_ADMIN_TOKEN            Bearer token for write routes (required in production, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_COMMENT_DELETE_POLICY  orphan|cascade (default: orphan)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_REDIS_URL              Redis URL for shared access decisions (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime})
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logLevel := logging.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	locales, err := cfg.LocaleSet()
	if err != nil {
		return fmt.Errorf("building locale set: %w", err)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath, "driver", cfg.DBDriver)
	dbCfg := store.DefaultDBConfig()
	dbCfg.Driver = cfg.DBDriver
	dbCfg.BusyTimeout = cfg.DBBusyTimeout
	dbCfg.MaxOpenConns = cfg.DBMaxOpenConns
	db, err := store.NewDBWithConfig(cfg.DBPath, dbCfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	st, err := store.New(db, store.Options{
		Locales:       locales,
		CommentPolicy: cfg.CommentPolicy(),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	// No entity operation may run against an unverified schema.
	ctx := context.Background()
	slog.Info("running database migrations")
	if err := st.Schema.Ensure(ctx); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	slog.Info("database ready", "locales", cfg.Locales, "comment_policy", cfg.CommentPolicy())

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, st.Events))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	if cfg.DoSeed {
		if err := store.Seed(ctx, st); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Access decisions are cached; Redis shares them across instances.
	decisionCache, backend, err := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.AccessCacheTTL,
		MaxEntries:      cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = decisionCache.Close() }()
	slog.Info("cache initialized", "backend", backend)

	gate := access.NewCachedGate(
		access.NewSQLGate(db, st.Schema, cfg.GatedKinds()),
		decisionCache,
		cfg.AccessCacheTTL,
	)

	sched := scheduler.New(st, st.Events, scheduler.Config{
		Schedule:       cfg.MaintenanceSchedule,
		EventRetention: cfg.EventRetention,
	}, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Create router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Peer)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	healthHandler := handler.NewHealthHandler(st, st.Schema.Ready, cfg.UploadsDir, cfg.AdminToken, versionInfo.Version).
		WithCache(decisionCache)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	apiHandler := api.NewHandler(api.Config{
		Store:          st,
		Gate:           gate,
		Registry:       gate,
		UploadsDir:     cfg.UploadsDir,
		UploadMaxBytes: cfg.UploadMaxBytes,
		Version:        versionInfo.Version,
		Logger:         logger,
	})
	trusted, err := cfg.TrustedPrefixes()
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	apiHandler.Mount(r, api.RouteConfig{
		AdminToken:     cfg.AdminToken,
		CallerHeader:   cfg.CallerHeader,
		TrustedProxies: trusted,
		CommentLimiter: middleware.NewIPRateLimiter(cfg.CommentRateLimit, cfg.CommentRateBurst),
	})
	slog.Info("REST API v1 mounted at /api/v1", "gated", cfg.GatedKinds())

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version, "commit", versionInfo.GitCommit)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Flush the WAL before the database is closed.
	if err := st.Checkpoint(shutdownCtx); err != nil {
		slog.Warn("final checkpoint failed", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
