// Package main is the entry point for the rzqr service.
// It serves the zeta-zero to quantum-circuit pipeline over HTTP, accepts
// circuit jobs for the local simulator and runs scheduled pipeline runs.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okushigue/rzqr/internal/config"
	"github.com/okushigue/rzqr/internal/di"
	"github.com/okushigue/rzqr/internal/server"
	"github.com/okushigue/rzqr/pkg/logger"
)

// main loads configuration, wires the container, starts the HTTP server and
// the scheduler, then blocks until SIGINT or SIGTERM and shuts down in reverse order.
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger so the configuration error is still reported
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("digits", cfg.Pipeline.DecimalDigits).
		Float64("radius", cfg.Pipeline.InfluenceRadius).
		Msg("Starting rzqr")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:      log,
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
		DataDir:  cfg.DataDir,
		LedgerDB: container.LedgerDB,
		EventBus: container.EventBus,
		Pipeline: container.Pipeline,
		Defaults: container.Defaults,
		Runs:     container.RunRepo,
		Jobs:     container.Jobs,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	container.Scheduler.Start()
	if jobs.PipelineRun != nil {
		log.Info().Str("schedule", cfg.Scheduler.Spec).Msg("Scheduled pipeline runs enabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Requests stop first; the deferred Close drains the scheduler and jobs
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
