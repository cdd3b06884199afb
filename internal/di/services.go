package di

import (
	"context"
	"fmt"

	"github.com/okushigue/rzqr/internal/clients/backend"
	"github.com/okushigue/rzqr/internal/config"
	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/events"
	"github.com/okushigue/rzqr/internal/modules/jobs"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/okushigue/rzqr/internal/modules/runs"
	"github.com/okushigue/rzqr/internal/modules/simulator"
	"github.com/okushigue/rzqr/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices creates repositories, the execution adapter and the services on top of them
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.LedgerDB == nil {
		return fmt.Errorf("container has no ledger database")
	}

	container.RunRepo = runs.NewRepository(container.LedgerDB.Conn(), log)

	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	container.Adapter = NewAdapter(cfg, log)

	opts := []pipeline.Option{
		pipeline.WithRecorder(container.RunRepo),
		pipeline.WithEvents(container.EventManager),
		pipeline.WithExecutionTimeout(cfg.ExecutionTimeout()),
	}
	if cfg.Artifacts.Enabled() {
		exporter, err := reliability.NewS3ArtifactExporter(context.Background(), reliability.S3Config{
			Bucket:          cfg.Artifacts.Bucket,
			Endpoint:        cfg.Artifacts.Endpoint,
			Region:          cfg.Artifacts.Region,
			AccessKeyID:     cfg.Artifacts.AccessKeyID,
			SecretAccessKey: cfg.Artifacts.SecretAccessKey,
			Prefix:          cfg.Artifacts.Prefix,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create artifact exporter: %w", err)
		}
		container.Exporter = exporter
		opts = append(opts, pipeline.WithExporter(exporter))
	}
	container.Pipeline = pipeline.NewService(container.Adapter, log, opts...)

	// The jobs endpoint always serves the local simulator, whatever the pipeline targets
	local := simulator.New(log, simulator.Config{Mode: cfg.Simulator.Mode, Seed: cfg.Simulator.Seed})
	container.Jobs = jobs.NewService(local, cfg.ExecutionTimeout(), container.EventManager, log)

	container.Defaults = pipeline.Request{
		Precision: cfg.Precision(),
		Shots:     cfg.Pipeline.Shots,
	}

	log.Info().
		Str("backend", container.Adapter.Identifier()).
		Bool("artifacts", container.Exporter != nil).
		Msg("Services initialized")
	return nil
}

// NewAdapter picks the execution adapter: a remote backend when a URL is configured, the local simulator otherwise
func NewAdapter(cfg *config.Config, log zerolog.Logger) domain.ExecutionAdapter {
	if cfg.Backend.URL != "" {
		return backend.NewClient(cfg.Backend.URL, cfg.Backend.Identifier, log)
	}
	return simulator.New(log, simulator.Config{
		Mode: cfg.Simulator.Mode,
		Seed: cfg.Simulator.Seed,
	})
}
