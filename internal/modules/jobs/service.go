// Package jobs is the server side of the backend job protocol: it accepts
// circuits, executes them asynchronously on a local adapter and keeps the
// outcome until it is fetched.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okushigue/rzqr/internal/clients/backend"
	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/events"
	"github.com/okushigue/rzqr/internal/metrics"
	"github.com/okushigue/rzqr/internal/modules/simulator"
	"github.com/rs/zerolog"
)

// DefaultRetention is how long finished jobs stay retrievable
const DefaultRetention = 24 * time.Hour

type job struct {
	resp       backend.JobResponse
	finishedAt time.Time
}

// Service executes submitted jobs in the background
type Service struct {
	adapter   domain.ExecutionAdapter
	timeout   time.Duration
	retention time.Duration
	events    *events.Manager
	log       zerolog.Logger

	mu   sync.RWMutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

// NewService creates a job service. timeout bounds every execution.
func NewService(adapter domain.ExecutionAdapter, timeout time.Duration, em *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		adapter:   adapter,
		timeout:   timeout,
		retention: DefaultRetention,
		events:    em,
		log:       log.With().Str("service", "backend_jobs").Logger(),
		jobs:      make(map[string]*job),
	}
}

// Submit validates and queues a job
func (s *Service) Submit(req backend.JobRequest) (backend.JobResponse, error) {
	if err := domain.CheckShots("jobs.submit", req.Shots); err != nil {
		return backend.JobResponse{}, err
	}
	spec := req.Circuit()
	if err := simulator.Validate(spec); err != nil {
		return backend.JobResponse{}, err
	}

	resp := backend.JobResponse{
		ID:      uuid.New().String(),
		Status:  backend.StatusQueued,
		Backend: s.adapter.Identifier(),
	}

	s.mu.Lock()
	s.pruneLocked(time.Now())
	s.jobs[resp.ID] = &job{resp: resp}
	s.mu.Unlock()

	metrics.BackendJobsTotal.WithLabelValues(string(backend.StatusQueued)).Inc()
	s.events.EmitTyped("backend", &events.JobData{JobID: resp.ID, Status: string(resp.Status), Shots: req.Shots})
	s.log.Info().Str("job_id", resp.ID).Int("shots", req.Shots).Int("gates", len(spec.Gates)).Msg("Job accepted")

	s.wg.Add(1)
	go s.execute(resp.ID, spec, req.Shots)

	return resp, nil
}

func (s *Service) execute(id string, spec domain.CircuitSpec, shots int) {
	defer s.wg.Done()
	s.setStatus(id, backend.StatusRunning, nil, "")

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	counts, err := s.adapter.Execute(ctx, spec, shots)
	if err != nil {
		s.log.Warn().Err(err).Str("job_id", id).Msg("Job failed")
		s.setStatus(id, backend.StatusFailed, nil, err.Error())
	} else {
		s.setStatus(id, backend.StatusDone, counts, "")
	}

	final, _ := s.Get(id)
	metrics.BackendJobsTotal.WithLabelValues(string(final.Status)).Inc()
	s.events.EmitTyped("backend", &events.JobData{JobID: id, Status: string(final.Status), Shots: shots, Done: true})
}

func (s *Service) setStatus(id string, status backend.JobStatus, counts domain.MeasurementCounts, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return
	}
	j.resp.Status = status
	j.resp.Counts = counts
	j.resp.Error = msg
	if status.Terminal() {
		j.finishedAt = time.Now()
	}
}

// Get returns a snapshot of a job
func (s *Service) Get(id string) (backend.JobResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return backend.JobResponse{}, false
	}
	resp := j.resp
	if j.resp.Counts != nil {
		resp.Counts = make(map[string]int, len(j.resp.Counts))
		for k, v := range j.resp.Counts {
			resp.Counts[k] = v
		}
	}
	return resp, true
}

// Len returns the number of jobs held
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Wait blocks until every running job has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// pruneLocked drops finished jobs older than the retention window
func (s *Service) pruneLocked(now time.Time) {
	for id, j := range s.jobs {
		if !j.finishedAt.IsZero() && now.Sub(j.finishedAt) > s.retention {
			delete(s.jobs, id)
		}
	}
}
