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

	"github.com/Subhash2005/equi-bridge/internal/api"
	"github.com/Subhash2005/equi-bridge/internal/catalog"
	"github.com/Subhash2005/equi-bridge/internal/config"
	"github.com/Subhash2005/equi-bridge/internal/invest"
	"github.com/Subhash2005/equi-bridge/internal/platform"
	"github.com/Subhash2005/equi-bridge/internal/session"
	"github.com/Subhash2005/equi-bridge/internal/storage"
)

func main() {
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

	slog.Info("starting equi-bridge",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

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
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("database connected successfully")

	// Initialize session store
	sessions, err := session.NewStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Session.TTL)
	if err != nil {
		slog.Error("failed to connect to session store", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()
	slog.Info("session store connected successfully")

	// Load the catalog and seed the database when it is empty
	loader := catalog.NewLoader()
	if err := loader.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Warn("failed to load catalog from dir", "dir", cfg.Catalog.Dir, "error", err)
	}
	if err := loader.Seed(initCtx, repo); err != nil {
		slog.Error("failed to seed catalog data", "error", err)
		os.Exit(1)
	}

	// Register platform capabilities
	registry := platform.NewRegistry()
	geocoder := platform.NewReverseGeocoder(cfg.Geocode.Endpoint)
	registry.Register(geocoder)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start auto-invest sweeper
	if cfg.Invest.SweepEnabled {
		sweeper := invest.NewSweeper(repo, cfg.Invest.SweepInterval)
		sweeper.Start(ctx)
	}

	// Setup HTTP server
	server := api.NewServer(repo, sessions, loader, registry, geocoder)
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

	slog.Info("shutdown complete")
}
