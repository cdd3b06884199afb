package di

import (
	"fmt"

	"github.com/okushigue/rzqr/internal/config"
	"github.com/okushigue/rzqr/internal/reliability"
	"github.com/okushigue/rzqr/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and adds the background jobs to it.
// The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container.Pipeline == nil || container.RunRepo == nil {
		return nil, fmt.Errorf("services must be initialized before jobs")
	}

	sched := scheduler.New(log)
	instances := &JobInstances{}

	instances.LedgerMaintenance = reliability.NewLedgerMaintenanceJob(
		container.LedgerDB, container.RunRepo, cfg.Retention(), log)
	if err := sched.AddJob(cfg.Scheduler.MaintenanceSpec, instances.LedgerMaintenance); err != nil {
		return nil, err
	}

	if cfg.Scheduler.Spec != "" {
		instances.PipelineRun = scheduler.NewPipelineRunJob(
			container.Pipeline, container.Defaults, cfg.Scheduler.Spec,
			cfg.ExecutionTimeout(), container.EventManager, log)
		if err := sched.AddJob(cfg.Scheduler.Spec, instances.PipelineRun); err != nil {
			return nil, err
		}
	}

	container.Scheduler = sched
	log.Info().Int("jobs", sched.Len()).Msg("Background jobs registered")
	return instances, nil
}
