package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures
type ErrorKind string

const (
	KindPrecision          ErrorKind = "PrecisionError"
	KindComputation        ErrorKind = "ComputationError"
	KindConfiguration      ErrorKind = "ConfigurationError"
	KindBackendUnavailable ErrorKind = "BackendUnavailable"
	KindExecutionTimeout   ErrorKind = "ExecutionTimeout"
	KindInvalidCounts      ErrorKind = "InvalidCounts"
)

// Sentinels matched with errors.Is
var (
	ErrPrecision          = errors.New("precision too low to distinguish zeros")
	ErrComputation        = errors.New("root finding did not converge")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrExecutionTimeout   = errors.New("execution timed out")
	ErrInvalidCounts      = errors.New("invalid measurement counts")
)

var sentinels = map[ErrorKind]error{
	KindPrecision:          ErrPrecision,
	KindComputation:        ErrComputation,
	KindConfiguration:      ErrConfiguration,
	KindBackendUnavailable: ErrBackendUnavailable,
	KindExecutionTimeout:   ErrExecutionTimeout,
	KindInvalidCounts:      ErrInvalidCounts,
}

// PipelineError is the concrete error returned by every stage
type PipelineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError builds a PipelineError of the given kind
func NewError(kind ErrorKind, op string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidCounts) and friends match by kind
func (e *PipelineError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the kind of a pipeline error, or "" for anything else
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// Retryable reports whether the pipeline may retry the failed operation itself
func Retryable(err error) bool {
	return KindOf(err) == KindComputation
}

func errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
