package scheduler

import (
	"context"
	"time"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/events"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/rs/zerolog"
)

// PipelineRunner is the pipeline operation a scheduled run calls
type PipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) (domain.RunResult, error)
}

// PipelineRunJob triggers a full pipeline run with fixed settings
type PipelineRunJob struct {
	runner  PipelineRunner
	req     pipeline.Request
	spec    string
	timeout time.Duration
	events  *events.Manager
	log     zerolog.Logger
}

// NewPipelineRunJob creates the job. spec is only used for reporting.
func NewPipelineRunJob(runner PipelineRunner, req pipeline.Request, spec string, timeout time.Duration, em *events.Manager, log zerolog.Logger) *PipelineRunJob {
	return &PipelineRunJob{
		runner:  runner,
		req:     req,
		spec:    spec,
		timeout: timeout,
		events:  em,
		log:     log.With().Str("job", "pipeline_run").Logger(),
	}
}

// Name returns the job name
func (j *PipelineRunJob) Name() string {
	return "pipeline_run"
}

// Run executes one pipeline run
func (j *PipelineRunJob) Run() error {
	j.events.EmitTyped("scheduler", &events.ScheduleTriggeredData{Spec: j.spec})

	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	result, err := j.runner.Run(ctx, j.req)
	if err != nil {
		return err
	}
	j.log.Info().
		Str("run_id", result.ID).
		Float64("success_rate", result.SuccessRate).
		Msg("Scheduled run finished")
	return nil
}
