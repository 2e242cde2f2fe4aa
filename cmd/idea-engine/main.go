package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ideaforge/idea-engine/internal/achievements"
	"github.com/ideaforge/idea-engine/internal/api"
	"github.com/ideaforge/idea-engine/internal/auth"
	"github.com/ideaforge/idea-engine/internal/cache"
	"github.com/ideaforge/idea-engine/internal/catalog"
	"github.com/ideaforge/idea-engine/internal/config"
	"github.com/ideaforge/idea-engine/internal/ledger"
	"github.com/ideaforge/idea-engine/internal/stats"
	"github.com/ideaforge/idea-engine/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting idea-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	loc, err := time.LoadLocation(cfg.Catalog.Timezone)
	if err != nil {
		slog.Error("failed to load timezone", "timezone", cfg.Catalog.Timezone, "error", err)
		os.Exit(1)
	}

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN: cfg.Database.DSN,
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("database connected successfully")

	// Sync the static badge table so user_badges rows always have a
	// parent to reference
	for _, badge := range achievements.Badges {
		if err := repo.UpsertBadge(initCtx, &badge); err != nil {
			slog.Error("failed to sync badge", "badge_id", badge.ID, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("badge definitions synced", "count", len(achievements.Badges))

	// Connect to Redis
	c, err := cache.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer c.Close()
	slog.Info("redis connected successfully")

	// Load the idea catalog
	loader := catalog.NewLoader()
	if err := loader.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Warn("failed to load catalog from dir", "dir", cfg.Catalog.Dir, "error", err)
	}
	slog.Info("idea catalog loaded", "ideas", loader.Len())

	// Build the achievement engine over the static definitions
	engine, err := achievements.NewEngine(achievements.All, loc)
	if err != nil {
		slog.Error("invalid achievement definitions", "error", err)
		os.Exit(1)
	}

	svc := ledger.NewService(repo, engine, c)

	// Create context with cancellation for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the stats refresher
	refresher := stats.NewRefresher(repo, c, cfg.Stats.Interval)
	refresher.Start(ctx)

	// Setup HTTP server
	verifier := auth.NewVerifier(cfg.Auth.Secret)
	server := api.NewServer(cfg.Server, loader, svc, repo, c, verifier)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("idea-engine stopped")
}
