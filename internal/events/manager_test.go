package events

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_EmitTyped(t *testing.T) {
	bus := NewBus()
	m := NewManager(bus, zerolog.New(nil).Level(zerolog.Disabled))

	var got *Event
	unsubscribe := bus.Subscribe(RunCompleted, func(e *Event) { got = e })
	defer unsubscribe()

	m.EmitTyped("pipeline", &RunCompletedData{RunID: "r1", TopState: "0010", SuccessRate: 0.94})

	require.NotNil(t, got)
	assert.Equal(t, RunCompleted, got.Type)
	assert.Equal(t, "pipeline", got.Module)
	assert.Equal(t, "r1", got.Data["run_id"])
	assert.Equal(t, "0010", got.Data["top_state"])
	assert.InDelta(t, 0.94, got.Data["success_rate"], 1e-12)
}

func TestManager_EmitError(t *testing.T) {
	bus := NewBus()
	m := NewManager(bus, zerolog.New(nil).Level(zerolog.Disabled))

	var got *Event
	bus.Subscribe(RunFailed, func(e *Event) { got = e })

	m.EmitError("pipeline", "r2", errors.New("backend unavailable"))

	require.NotNil(t, got)
	assert.Equal(t, "r2", got.Data["run_id"])
	assert.Equal(t, "backend unavailable", got.Data["error"])
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.EmitTyped("pipeline", &RunStartedData{RunID: "r3"})
	})
}

func TestManager_EmitJobAndFailure(t *testing.T) {
	bus := NewBus()
	m := NewManager(bus, zerolog.New(nil).Level(zerolog.Disabled))

	var failed, job *Event
	bus.Subscribe(RunFailed, func(e *Event) { failed = e })
	bus.Subscribe(JobFinished, func(e *Event) { job = e })

	m.EmitError("pipeline", "r9", errors.New("backend down"))
	m.EmitTyped("backend", &JobData{JobID: "j1", Status: "done", Shots: 8, Done: true})

	require.NotNil(t, failed)
	assert.Equal(t, "backend down", failed.Data["error"])
	require.NotNil(t, job)
	assert.Equal(t, "j1", job.Data["job_id"])
	assert.EqualValues(t, 8, job.Data["shots"])
}
