// Package main is the entry point for the AppForge API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"appforge/internal/cache"
	"appforge/internal/config"
	"appforge/internal/database"
	"appforge/internal/generator"
	"appforge/internal/handlers"
	"appforge/internal/router"
	"appforge/internal/seed"
	"appforge/internal/store"
)

func main() {
	// Structured logger — outputs text with debug level in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := seed.Run(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey when caching is enabled. The server runs without
	// it; generate calls then recompute their artifacts every time.
	var valkeyClient *redis.Client
	if cfg.CacheEnabled {
		valkeyClient, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
	} else {
		slog.Warn("cache disabled — artifact sets recomputed on every generate")
	}
	artifactCache := cache.NewArtifactCache(valkeyClient, cache.DefaultArtifactTTL)

	// Initialize data stores.
	menuStore := store.NewMenuStore(db)
	featureStore := store.NewFeatureStore(db)
	packageStore := store.NewPackageStore(db)
	entryStore := store.NewSchemaEntryStore(db)
	fieldStore := store.NewFieldStore(db)
	layoutStore := store.NewLayoutStore(db)

	// Create handler groups with their dependencies.
	menuHandlers := handlers.NewMenus(menuStore)
	featureHandlers := handlers.NewFeatures(featureStore)
	packageHandlers := handlers.NewPackages(packageStore)
	schemaHandlers := handlers.NewSchema(entryStore, fieldStore, layoutStore, artifactCache)
	fieldHandlers := handlers.NewFields(fieldStore)
	layoutHandlers := handlers.NewLayouts(layoutStore)
	generateHandlers := handlers.NewGenerate(schemaHandlers, entryStore, menuStore, generator.New(), artifactCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(menuHandlers, featureHandlers, packageHandlers, schemaHandlers, fieldHandlers, layoutHandlers, generateHandlers)

	// Create the HTTP server with sensible timeouts. Generation fans out
	// several artifact builders but stays well under these bounds.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
