package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okushigue/rzqr/internal/clients/backend"
	"github.com/okushigue/rzqr/internal/config"
	"github.com/okushigue/rzqr/internal/modules/simulator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir()}
	cfg.Pipeline.InfluenceRadius = 2.0
	cfg.Simulator.Mode = simulator.ModeExact
	cfg.ApplyDefaults()
	return cfg
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	require.NotNil(t, jobs)
	t.Cleanup(func() { _ = container.Close() })

	assert.NotNil(t, container.LedgerDB)
	assert.Equal(t, filepath.Join(cfg.DataDir, "runs.db"), container.LedgerDB.Path())
	assert.NotNil(t, container.RunRepo)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.Pipeline)
	assert.NotNil(t, container.Jobs)
	assert.Nil(t, container.Exporter)
	assert.Equal(t, simulator.Identifier, container.Pipeline.Backend())

	// Maintenance is always registered, pipeline runs only with a schedule
	assert.NotNil(t, jobs.LedgerMaintenance)
	assert.Nil(t, jobs.PipelineRun)
	assert.Equal(t, 1, container.Scheduler.Len())

	assert.Equal(t, cfg.Pipeline.Shots, container.Defaults.Shots)
	assert.Equal(t, cfg.Pipeline.DecimalDigits, container.Defaults.Precision.DecimalDigits)
}

func TestWire_RunIsRecorded(t *testing.T) {
	cfg := testConfig(t)

	container, _, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	req := container.Defaults
	req.Precision.DecimalDigits = 20
	result, err := container.Pipeline.Run(context.Background(), req)
	require.NoError(t, err)

	stored, err := container.RunRepo.Get(context.Background(), result.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.Shots, stored.Shots)
}

func TestWire_ScheduledPipeline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Spec = "@every 1h"

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	require.NotNil(t, jobs.PipelineRun)
	assert.Equal(t, "pipeline_run", jobs.PipelineRun.Name())
	assert.Equal(t, 2, container.Scheduler.Len())
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Spec = "not a schedule"

	_, _, err := Wire(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline_run")
}

func TestNewAdapter(t *testing.T) {
	cfg := testConfig(t)
	assert.IsType(t, &simulator.Simulator{}, NewAdapter(cfg, zerolog.Nop()))

	cfg.Backend.URL = "http://127.0.0.1:1"
	cfg.Backend.Identifier = "remote_qpu"
	adapter := NewAdapter(cfg, zerolog.Nop())
	assert.IsType(t, &backend.Client{}, adapter)
	assert.Equal(t, "remote_qpu", adapter.Identifier())
}
