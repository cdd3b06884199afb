// Package pipeline wires the stages together: zeros, field, angles, circuit,
// execution and reduction.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/events"
	"github.com/okushigue/rzqr/internal/metrics"
	"github.com/okushigue/rzqr/internal/modules/angles"
	"github.com/okushigue/rzqr/internal/modules/circuit"
	"github.com/okushigue/rzqr/internal/modules/field"
	"github.com/okushigue/rzqr/internal/modules/results"
	"github.com/okushigue/rzqr/internal/modules/zeta"
	"github.com/okushigue/rzqr/internal/utils"
	"github.com/rs/zerolog"
)

// Stage names used in logs, events and metrics
const (
	StageZeros   = "zeros"
	StageField   = "field"
	StageAngles  = "angles"
	StageCircuit = "circuit"
	StageExecute = "execute"
	StageReduce  = "reduce"
)

const module = "pipeline"

// Request is one full run
type Request struct {
	Precision domain.PrecisionConfig `json:"precision"`
	Shots     int                    `json:"shots"`
}

// Prepared holds the output of every stage before execution
type Prepared struct {
	Config  domain.PrecisionConfig `json:"config"`
	Zeros   domain.ZeroSequence    `json:"-"`
	Field   domain.FractalField    `json:"-"`
	Angles  domain.AngleSet        `json:"angles"`
	Circuit domain.CircuitSpec     `json:"circuit"`
	Stats   circuit.Stats          `json:"stats"`
}

// Service runs the pipeline against one execution adapter
type Service struct {
	zeros     *zeta.Source
	fields    *field.Builder
	mapper    *angles.Mapper
	assembler *circuit.Assembler
	adapter   domain.ExecutionAdapter
	recorder  domain.RunRecorder
	exporter  domain.ArtifactExporter
	events    *events.Manager
	timeout   time.Duration
	log       zerolog.Logger
}

// Option configures optional collaborators
type Option func(*Service)

// WithRecorder stores every finished run
func WithRecorder(r domain.RunRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithExporter publishes artifacts of every finished run
func WithExporter(e domain.ArtifactExporter) Option {
	return func(s *Service) { s.exporter = e }
}

// WithEvents publishes run progress on the event bus
func WithEvents(m *events.Manager) Option {
	return func(s *Service) { s.events = m }
}

// WithExecutionTimeout bounds the execution stage
func WithExecutionTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithZeroSource replaces the default zero source
func WithZeroSource(z *zeta.Source) Option {
	return func(s *Service) { s.zeros = z }
}

// WithFieldBuilder replaces the default field builder
func WithFieldBuilder(b *field.Builder) Option {
	return func(s *Service) { s.fields = b }
}

// NewService creates a pipeline executing on adapter
func NewService(adapter domain.ExecutionAdapter, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		zeros:     zeta.NewSource(log, zeta.DefaultConfig()),
		fields:    field.NewBuilder(log),
		mapper:    angles.NewMapper(log, angles.DefaultSaturation),
		assembler: circuit.NewAssembler(log),
		adapter:   adapter,
		log:       log.With().Str("service", "pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the identifier of the execution adapter
func (s *Service) Backend() string {
	return s.adapter.Identifier()
}

// Zeros runs the first stage on its own
func (s *Service) Zeros(ctx context.Context, count, digits int) (domain.ZeroSequence, error) {
	return s.zeros.Generate(ctx, count, digits)
}

// Prepare runs every stage up to circuit assembly. The same config always yields
// the same circuit.
func (s *Service) Prepare(ctx context.Context, cfg domain.PrecisionConfig) (*Prepared, error) {
	timer := utils.NewTimer("pipeline.prepare", s.log)
	defer timer.Stop()
	return s.prepare(ctx, "", cfg, timer)
}

func (s *Service) prepare(ctx context.Context, runID string, cfg domain.PrecisionConfig, timer *utils.Timer) (*Prepared, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zeros, err := s.zeros.Generate(ctx, cfg.ZeroCount, cfg.DecimalDigits)
	if err != nil {
		return nil, err
	}
	s.stageDone(runID, StageZeros, timer)

	fld, err := s.fields.Build(zeros, cfg.GridSize, cfg.InfluenceRadius)
	if err != nil {
		return nil, err
	}
	s.stageDone(runID, StageField, timer)

	set, err := s.mapper.MapToAngles(fld, cfg.LogicalQubitCount)
	if err != nil {
		return nil, err
	}
	s.stageDone(runID, StageAngles, timer)

	spec, err := s.assembler.Assemble(set, cfg.LogicalQubitCount)
	if err != nil {
		return nil, err
	}
	s.stageDone(runID, StageCircuit, timer)

	return &Prepared{
		Config:  cfg,
		Zeros:   zeros,
		Field:   fld,
		Angles:  set,
		Circuit: spec,
		Stats:   circuit.Summarize(spec),
	}, nil
}

// Run executes the whole pipeline. Ledger and artifact failures are logged and
// never fail the run.
func (s *Service) Run(ctx context.Context, req Request) (domain.RunResult, error) {
	runID := uuid.New().String()
	backend := s.adapter.Identifier()
	started := time.Now()
	log := s.log.With().Str("run_id", runID).Str("backend", backend).Logger()

	if err := domain.CheckShots("pipeline.run", req.Shots); err != nil {
		return domain.RunResult{}, err
	}

	log.Info().
		Int("digits", req.Precision.DecimalDigits).
		Float64("radius", req.Precision.InfluenceRadius).
		Int("shots", req.Shots).
		Msg("Starting pipeline run")
	s.events.EmitTyped(module, &events.RunStartedData{
		RunID:   runID,
		Backend: backend,
		Digits:  req.Precision.DecimalDigits,
		Radius:  req.Precision.InfluenceRadius,
		Shots:   req.Shots,
	})

	timer := utils.NewTimer("pipeline.run", log)
	result, spec, err := s.run(ctx, runID, req, timer)
	elapsed := timer.Stop()
	metrics.RunDuration.WithLabelValues(backend).Observe(elapsed.Seconds())

	if err != nil {
		metrics.RunsTotal.WithLabelValues(backend, "failed").Inc()
		log.Error().Err(err).Str("kind", string(domain.KindOf(err))).Msg("Pipeline run failed")
		s.events.EmitError(module, runID, err)
		return domain.RunResult{}, err
	}

	result.ID = runID
	result.StartedAt = started
	result.Backend = backend
	result.Elapsed = elapsed
	metrics.RunsTotal.WithLabelValues(backend, "success").Inc()
	metrics.SuccessRate.WithLabelValues(backend).Set(result.SuccessRate)

	top := result.Ranked[0]
	log.Info().
		Str("top_state", top.BitString).
		Float64("top_probability", top.Probability).
		Float64("success_rate", result.SuccessRate).
		Dur("elapsed", elapsed).
		Msg("Pipeline run completed")
	s.events.EmitTyped(module, &events.RunCompletedData{
		RunID:          runID,
		Backend:        backend,
		TopState:       top.BitString,
		TopProbability: top.Probability,
		SuccessRate:    result.SuccessRate,
		ElapsedMs:      elapsed.Milliseconds(),
	})

	s.report(ctx, result, spec, log)
	return result, nil
}

func (s *Service) run(ctx context.Context, runID string, req Request, timer *utils.Timer) (domain.RunResult, domain.CircuitSpec, error) {
	prep, err := s.prepare(ctx, runID, req.Precision, timer)
	if err != nil {
		return domain.RunResult{}, domain.CircuitSpec{}, err
	}

	execCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	counts, err := s.adapter.Execute(execCtx, prep.Circuit, req.Shots)
	if err != nil {
		return domain.RunResult{}, domain.CircuitSpec{}, err
	}
	s.stageDone(runID, StageExecute, timer)

	if err := results.CheckWidth(counts, prep.Circuit.Qubits); err != nil {
		return domain.RunResult{}, domain.CircuitSpec{}, err
	}
	ranked, err := results.Reduce(counts, req.Shots)
	if err != nil {
		return domain.RunResult{}, domain.CircuitSpec{}, err
	}
	s.stageDone(runID, StageReduce, timer)

	return domain.RunResult{
		Config:      prep.Config,
		Zeros:       prep.Zeros.Strings(),
		Targets:     prep.Circuit.Targets,
		Angles:      prep.Angles,
		Ranked:      ranked,
		Shots:       req.Shots,
		GateCount:   prep.Stats.GateCount,
		Depth:       prep.Stats.Depth,
		SuccessRate: results.SuccessRate(ranked, prep.Circuit.Targets),
	}, prep.Circuit, nil
}

func (s *Service) stageDone(runID, stage string, timer *utils.Timer) {
	d := timer.Lap(stage)
	metrics.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if runID != "" {
		s.events.EmitTyped(module, &events.StageCompletedData{
			RunID:      runID,
			Stage:      stage,
			DurationMs: d.Milliseconds(),
		})
	}
}

// report hands the finished run to the optional collaborators
func (s *Service) report(ctx context.Context, result domain.RunResult, spec domain.CircuitSpec, log zerolog.Logger) {
	if s.recorder != nil {
		if err := s.recorder.Save(ctx, result); err != nil {
			log.Warn().Err(err).Msg("Failed to record run")
		}
	}
	if s.exporter == nil {
		return
	}
	qasm, err := circuit.QASM(spec)
	if err == nil {
		err = s.exporter.Export(ctx, result, qasm)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to export run artifacts")
	}
}
