package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/modules/circuit"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Client executes circuits on a remote job service
type Client struct {
	baseURL      string
	identifier   string
	client       *http.Client
	pollInterval time.Duration
	log          zerolog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithPollInterval sets the delay between status requests
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// NewClient creates a client for the job service at baseURL
func NewClient(baseURL, identifier string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		identifier:   identifier,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
		log:          log.With().Str("client", "backend").Str("backend", identifier).Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identifier implements domain.ExecutionAdapter
func (c *Client) Identifier() string {
	return c.identifier
}

// Execute implements domain.ExecutionAdapter. It blocks until the job is done,
// has failed, or ctx expires.
func (c *Client) Execute(ctx context.Context, spec domain.CircuitSpec, shots int) (domain.MeasurementCounts, error) {
	qasm, err := circuit.QASM(spec)
	if err != nil {
		return nil, err
	}

	job, err := c.Submit(ctx, JobRequest{
		Backend: c.identifier,
		Shots:   shots,
		Qubits:  spec.Qubits,
		QASM:    qasm,
		Gates:   spec.Gates,
	})
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("job_id", job.ID).Int("shots", shots).Msg("Job submitted")

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for !job.Status.Terminal() {
		select {
		case <-ctx.Done():
			return nil, c.contextError(ctx, "backend.execute")
		case <-ticker.C:
		}
		if job, err = c.Status(ctx, job.ID); err != nil {
			return nil, err
		}
	}

	if job.Status == StatusFailed {
		return nil, domain.NewError(domain.KindBackendUnavailable, "backend.execute",
			fmt.Errorf("job %s failed: %s", job.ID, job.Error))
	}

	c.log.Info().Str("job_id", job.ID).Msg("Job finished")
	return domain.MeasurementCounts(job.Counts), nil
}

// Submit posts a job
func (c *Client) Submit(ctx context.Context, req JobRequest) (JobResponse, error) {
	body, err := msgpack.Marshal(req)
	if err != nil {
		return JobResponse{}, fmt.Errorf("failed to encode job: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/jobs", body, "backend.submit")
}

// Status fetches the current state of a job
func (c *Client) Status(ctx context.Context, id string) (JobResponse, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+"/jobs/"+id, nil, "backend.status")
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, op string) (JobResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return JobResponse{}, domain.NewError(domain.KindConfiguration, op, err)
	}
	req.Header.Set("Accept", ContentType)
	if body != nil {
		req.Header.Set("Content-Type", ContentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return JobResponse{}, c.contextError(ctx, op)
		}
		return JobResponse{}, domain.NewError(domain.KindBackendUnavailable, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return JobResponse{}, domain.NewError(domain.KindBackendUnavailable, op, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return JobResponse{}, domain.NewError(domain.KindBackendUnavailable, op,
			fmt.Errorf("backend returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return JobResponse{}, domain.NewError(domain.KindConfiguration, op,
			fmt.Errorf("backend rejected request with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var out JobResponse
	if err := msgpack.Unmarshal(raw, &out); err != nil {
		return JobResponse{}, domain.NewError(domain.KindBackendUnavailable, op,
			fmt.Errorf("failed to decode response: %w", err))
	}
	return out, nil
}

func (c *Client) contextError(ctx context.Context, op string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewError(domain.KindExecutionTimeout, op, ctx.Err())
	}
	return ctx.Err()
}
