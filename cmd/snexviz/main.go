package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"snexviz/internal/astro"
	"snexviz/internal/charts"
	"snexviz/internal/config"
	"snexviz/internal/logger"
	"snexviz/internal/metrics"
	"snexviz/internal/server"
	"snexviz/internal/store"
	"snexviz/internal/tags"
)

// newLogger builds the service logger from the loaded configuration
func newLogger(cfg *config.Config) *logger.Logger {
	lc := logger.Config{Level: logger.INFO, Format: logger.JSONFormat, Output: os.Stdout, File: cfg.LogFile}
	if level := logger.ParseLogLevel(cfg.LogLevel); level != -1 {
		lc.Level = level
	}
	if format := logger.ParseLogFormat(cfg.LogFormat); format != -1 {
		lc.Format = format
	}
	return logger.New(lc)
}

func main() {
	ctx := context.Background()

	// A missing .env is fine, the environment may be set directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("Failed to load .env file", err)
	}

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	log := newLogger(cfg)
	logger.SetGlobalLogger(log)
	defer log.Sync()

	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		log.Fatal("Failed to load settings", err)
	}

	log.Info("Starting SNEx fragment service", map[string]interface{}{
		"port":                    cfg.Port,
		"environment":             cfg.Environment,
		"database_driver":         cfg.DatabaseDriver,
		"target_permissions_only": cfg.TargetPermissionsOnly,
	})

	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to open database", err)
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			log.Fatal("Failed to migrate database", err)
		}
	}

	repo := store.NewGormRepository(db)
	calc := astro.NewCalculator(astro.SitesFromSettings(settings))
	lib := tags.New(repo, calc, charts.NewGenerator(cfg.EChartsURL), settings, log, tags.Options{
		TargetPermissionsOnly: cfg.TargetPermissionsOnly,
	})

	srv, err := server.NewServer(cfg, repo, lib, metrics.New(), log)
	if err != nil {
		log.Fatal("Failed to create server", err)
	}

	var accessLog io.Writer
	if cfg.AccessLog {
		accessLog = os.Stdout
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(accessLog),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Server stopped")
}
