// Package di provides dependency injection type definitions.
package di

import (
	"github.com/okushigue/rzqr/internal/database"
	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/events"
	"github.com/okushigue/rzqr/internal/modules/jobs"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/okushigue/rzqr/internal/modules/runs"
	"github.com/okushigue/rzqr/internal/reliability"
	"github.com/okushigue/rzqr/internal/scheduler"
)

// Container holds every long-lived dependency of the application
type Container struct {
	// Databases
	LedgerDB *database.DB

	// Repositories
	RunRepo *runs.Repository

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Services
	Adapter  domain.ExecutionAdapter
	Exporter *reliability.ArtifactExporter // nil when no bucket is configured
	Pipeline *pipeline.Service
	Jobs     *jobs.Service

	// Background work
	Scheduler *scheduler.Scheduler

	// Defaults is the request built from configuration, used when a caller overrides nothing
	Defaults pipeline.Request
}

// JobInstances holds references to the registered background jobs
type JobInstances struct {
	PipelineRun       *scheduler.PipelineRunJob // nil when no schedule is configured
	LedgerMaintenance *reliability.LedgerMaintenanceJob
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Jobs != nil {
		c.Jobs.Wait()
	}
	if c.LedgerDB != nil {
		return c.LedgerDB.Close()
	}
	return nil
}
