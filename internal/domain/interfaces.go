package domain

import "context"

// ExecutionAdapter runs an assembled circuit on a backend (hardware or simulator)
// and returns raw measurement counts. Implementations report failures as
// BackendUnavailable or ExecutionTimeout; the pipeline never retries them.
type ExecutionAdapter interface {
	// Execute blocks until counts are available or ctx is done
	Execute(ctx context.Context, spec CircuitSpec, shots int) (MeasurementCounts, error)

	// Identifier returns the backend name actually used
	Identifier() string
}

// RunRecorder persists finished runs for reporting
type RunRecorder interface {
	Save(ctx context.Context, run RunResult) error
}

// ArtifactExporter publishes run artifacts outside the process
type ArtifactExporter interface {
	Export(ctx context.Context, run RunResult, qasm string) error
}
