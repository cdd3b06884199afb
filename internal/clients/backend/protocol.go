// Package backend is the remote ExecutionAdapter: it submits circuits to a job
// service over HTTP and polls until counts are available.
package backend

import (
	"github.com/okushigue/rzqr/internal/domain"
)

// ContentType is the wire encoding of every job request and response
const ContentType = "application/msgpack"

// JobStatus is the lifecycle state of a remote job
type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// Terminal reports whether the job will not change state again
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// JobRequest is the body of POST /jobs
type JobRequest struct {
	Backend string        `msgpack:"backend" json:"backend"`
	Shots   int           `msgpack:"shots" json:"shots"`
	Qubits  int           `msgpack:"qubits" json:"qubits"`
	QASM    string        `msgpack:"qasm" json:"qasm"`
	Gates   []domain.Gate `msgpack:"gates" json:"gates"`
}

// Circuit rebuilds the circuit carried by the request
func (r JobRequest) Circuit() domain.CircuitSpec {
	return domain.CircuitSpec{
		Qubits: r.Qubits,
		Basis:  append([]domain.GateName(nil), domain.NativeBasis...),
		Gates:  r.Gates,
	}
}

// JobResponse is returned by POST /jobs and GET /jobs/{id}
type JobResponse struct {
	ID      string         `msgpack:"id" json:"id"`
	Status  JobStatus      `msgpack:"status" json:"status"`
	Backend string         `msgpack:"backend" json:"backend"`
	Counts  map[string]int `msgpack:"counts,omitempty" json:"counts,omitempty"`
	Error   string         `msgpack:"error,omitempty" json:"error,omitempty"`
}
