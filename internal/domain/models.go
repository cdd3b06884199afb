// Package domain provides core domain models and types.
package domain

import (
	"math/big"
	"time"
)

// Fixed pipeline geometry
const (
	// GridSize is the edge length of the fractal field cube
	GridSize = 16
	// LogicalQubitCount is the number of qubits in the search circuit
	LogicalQubitCount = 4
	// MinDecimalDigits is the lowest precision at which zeros are generated
	MinDecimalDigits = 15
	// MaxDecimalDigits bounds the cost of zero refinement
	MaxDecimalDigits = 300
	// MaxShots bounds one execution request
	MaxShots = 1 << 20
)

// PrecisionConfig is supplied once per pipeline run
type PrecisionConfig struct {
	DecimalDigits     int     `json:"decimal_digits"`
	InfluenceRadius   float64 `json:"influence_radius"`
	GridSize          int     `json:"grid_size"`
	LogicalQubitCount int     `json:"logical_qubit_count"`
	ZeroCount         int     `json:"zero_count"`
}

// DefaultPrecisionConfig returns the documented defaults
func DefaultPrecisionConfig() PrecisionConfig {
	return PrecisionConfig{
		DecimalDigits:     50,
		InfluenceRadius:   2.0,
		GridSize:          GridSize,
		LogicalQubitCount: LogicalQubitCount,
		ZeroCount:         GridSize,
	}
}

// Validate checks the configuration before any stage runs
func (c PrecisionConfig) Validate() error {
	if c.DecimalDigits < MinDecimalDigits {
		return NewError(KindPrecision, "config", errorf("decimal digits %d below minimum %d", c.DecimalDigits, MinDecimalDigits))
	}
	if c.DecimalDigits > MaxDecimalDigits {
		return NewError(KindConfiguration, "config", errorf("decimal digits %d above maximum %d", c.DecimalDigits, MaxDecimalDigits))
	}
	if c.InfluenceRadius < 0 {
		return NewError(KindConfiguration, "config", errorf("influence radius must be non-negative, got %v", c.InfluenceRadius))
	}
	if c.GridSize != GridSize {
		return NewError(KindConfiguration, "config", errorf("grid size is fixed at %d, got %d", GridSize, c.GridSize))
	}
	if c.LogicalQubitCount != LogicalQubitCount {
		return NewError(KindConfiguration, "config", errorf("logical qubit count is fixed at %d, got %d", LogicalQubitCount, c.LogicalQubitCount))
	}
	if c.ZeroCount < 1 {
		return NewError(KindConfiguration, "config", errorf("zero count must be positive, got %d", c.ZeroCount))
	}
	return nil
}

// ZeroSequence holds zeta zero ordinates in increasing order.
// Values are owned by the sequence; callers must not mutate them.
type ZeroSequence struct {
	Digits    int
	Ordinates []*big.Float
}

// Len returns the number of zeros
func (z ZeroSequence) Len() int {
	return len(z.Ordinates)
}

// Float64s returns the ordinates rounded to float64
func (z ZeroSequence) Float64s() []float64 {
	out := make([]float64, len(z.Ordinates))
	for i, o := range z.Ordinates {
		out[i], _ = o.Float64()
	}
	return out
}

// Strings renders every ordinate with the sequence's significant digits
func (z ZeroSequence) Strings() []string {
	out := make([]string, len(z.Ordinates))
	for i, o := range z.Ordinates {
		out[i] = o.Text('g', z.Digits)
	}
	return out
}

// FractalField is a GridSize³ scalar field stored x-major
type FractalField struct {
	Size   int       `json:"size"`
	Values []float64 `json:"values"`
}

// NewFractalField allocates an all-zero field
func NewFractalField(size int) FractalField {
	return FractalField{Size: size, Values: make([]float64, size*size*size)}
}

// Index returns the flat offset of cell (x, y, z)
func (f FractalField) Index(x, y, z int) int {
	return (x*f.Size+y)*f.Size + z
}

// At returns the value of cell (x, y, z)
func (f FractalField) At(x, y, z int) float64 {
	return f.Values[f.Index(x, y, z)]
}

// AngleSet carries the rotation angles derived from a field
type AngleSet struct {
	StatePrep  []float64 `json:"state_prep"`
	OracleBias float64   `json:"oracle_bias"`
}

// GateName identifies a native gate
type GateName string

// Native gates of the target hardware
const (
	GateRZ GateName = "rz"
	GateSX GateName = "sx"
	GateX  GateName = "x"
	GateCZ GateName = "cz"
)

// NativeBasis is the gate set every assembled circuit is restricted to
var NativeBasis = []GateName{GateRZ, GateSX, GateX, GateCZ}

// IsNative reports whether the gate belongs to NativeBasis
func IsNative(name GateName) bool {
	for _, g := range NativeBasis {
		if g == name {
			return true
		}
	}
	return false
}

// Arity returns the number of qubits a native gate acts on, 0 for unknown gates
func (g GateName) Arity() int {
	switch g {
	case GateRZ, GateSX, GateX:
		return 1
	case GateCZ:
		return 2
	}
	return 0
}

// Gate is one operation of a circuit. Angle is only meaningful for rz.
type Gate struct {
	Name   GateName `json:"name" msgpack:"name"`
	Qubits []int    `json:"qubits" msgpack:"qubits"`
	Angle  float64  `json:"angle,omitempty" msgpack:"angle,omitempty"`
}

// CircuitSpec is an assembled circuit. Every qubit is measured after the last gate.
type CircuitSpec struct {
	Qubits     int        `json:"qubits"`
	Iterations int        `json:"iterations"`
	Targets    []string   `json:"targets"`
	Basis      []GateName `json:"basis"`
	Gates      []Gate     `json:"gates"`
}

// MeasurementCounts maps a bit-string (qubit 0 rightmost) to its shot count
type MeasurementCounts map[string]int

// Total returns the sum of all counts
func (m MeasurementCounts) Total() int {
	total := 0
	for _, c := range m {
		total += c
	}
	return total
}

// Outcome is one ranked measurement result
type Outcome struct {
	BitString   string  `json:"bit_string"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
}

// RankedResult is sorted by probability descending, ties by bit-string
type RankedResult []Outcome

// RunResult is what a full pipeline run hands to reporting collaborators
type RunResult struct {
	StartedAt   time.Time       `json:"started_at"`
	Config      PrecisionConfig `json:"config"`
	ID          string          `json:"id"`
	Backend     string          `json:"backend"`
	Zeros       []string        `json:"zeros"`
	Targets     []string        `json:"targets"`
	Angles      AngleSet        `json:"angles"`
	Ranked      RankedResult    `json:"ranked"`
	Shots       int             `json:"shots"`
	GateCount   int             `json:"gate_count"`
	Depth       int             `json:"depth"`
	SuccessRate float64         `json:"success_rate"`
	Elapsed     time.Duration   `json:"elapsed"`
}

// CheckShots rejects shot counts outside [1, MaxShots]
func CheckShots(op string, shots int) error {
	if shots <= 0 || shots > MaxShots {
		return NewError(KindConfiguration, op, errorf("shots must be in [1, %d], got %d", MaxShots, shots))
	}
	return nil
}
