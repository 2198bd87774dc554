package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/candidatures/api"
	dbfs "github.com/garnizeh/candidatures/db"
	"github.com/garnizeh/candidatures/internal/backup"
	"github.com/garnizeh/candidatures/internal/config"
	"github.com/garnizeh/candidatures/internal/db"
	"github.com/garnizeh/candidatures/internal/logging"
	"github.com/garnizeh/candidatures/internal/repository/sqlite"
	"github.com/garnizeh/candidatures/internal/tracker"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	api.SetLogger(logger)
	logger.Info("starting candidatures server", "version", version, "build_time", buildTime)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("error closing DB", "err", err)
		}
	}()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			return err
		}
	}

	repo := sqlite.New(database, logger)
	opts := []tracker.Option{tracker.WithLogger(logger)}

	// backups stays a nil interface when snapshots are disabled
	var backups api.BackupStore
	if cfg.Backup.Enabled {
		mgr := backup.New(cfg.DatabasePath, cfg.Backup.Dir,
			backup.WithRetention(cfg.Backup.Retention),
			backup.WithLogger(logger),
		)
		backups = mgr
		opts = append(opts, tracker.WithBackups(mgr))
		logger.Info("backups enabled", "dir", mgr.Dir(), "retention", cfg.Backup.Retention)
	}

	svc := tracker.New(repo, opts...)
	handler := api.SetupRoutes(cfg, version, buildTime, svc, backups)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
