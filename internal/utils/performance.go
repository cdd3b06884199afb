package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// StageTiming is the duration of one named step of a timed operation
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Timer measures an operation and the stages inside it
type Timer struct {
	start   time.Time
	lap     time.Time
	name    string
	log     zerolog.Logger
	stages  []StageTiming
	stopped time.Duration
}

// NewTimer creates a new timer with the given name
func NewTimer(name string, log zerolog.Logger) *Timer {
	now := time.Now()
	return &Timer{
		start: now,
		lap:   now,
		name:  name,
		log:   log,
	}
}

// Lap closes the current stage and starts the next one
func (t *Timer) Lap(stage string) time.Duration {
	now := time.Now()
	d := now.Sub(t.lap)
	t.lap = now
	t.stages = append(t.stages, StageTiming{Stage: stage, Duration: d})

	t.log.Debug().
		Str("operation", t.name).
		Str("stage", stage).
		Dur("duration_ms", d).
		Msg("Stage completed")
	return d
}

// Stages returns the recorded laps in order
func (t *Timer) Stages() []StageTiming {
	return append([]StageTiming(nil), t.stages...)
}

// Stop stops the timer and logs the duration. Later calls return the first result.
func (t *Timer) Stop() time.Duration {
	if t.stopped > 0 {
		return t.stopped
	}
	t.stopped = time.Since(t.start)

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", t.stopped).
		Float64("duration_seconds", t.stopped.Seconds()).
		Int("stages", len(t.stages)).
		Msg("Performance measurement")

	if t.stopped > 10*time.Minute {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", t.stopped).
			Msg("Slow operation detected (>10m)")
	}

	return t.stopped
}

// OperationTimer provides a defer-friendly way to measure operation duration
//
// Usage:
//
//	func MyFunction() {
//	    defer utils.OperationTimer("my_function", log)()
//	}
func OperationTimer(operation string, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", time.Since(start)).
			Msg("Operation completed")
	}
}

// MeasureDBQuery measures database query performance
func MeasureDBQuery(queryName string, log zerolog.Logger) func(rowsAffected int64) {
	start := time.Now()

	return func(rowsAffected int64) {
		duration := time.Since(start)

		log.Debug().
			Str("query", queryName).
			Dur("duration_ms", duration).
			Int64("rows_affected", rowsAffected).
			Msg("Database query completed")

		if duration > 5*time.Second {
			log.Warn().
				Str("query", queryName).
				Dur("duration", duration).
				Int64("rows_affected", rowsAffected).
				Msg("Slow database query detected")
		}
	}
}
