package simulator

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/okushigue/rzqr/internal/domain"
)

// MaxQubits bounds the dense statevector to 2^20 amplitudes
const MaxQubits = 20

// ctxCheckInterval is how many gates run between context checks
const ctxCheckInterval = 256

// State is a dense statevector, index bit q holds qubit q
type State []complex128

// NewState returns |0…0⟩ over n qubits
func NewState(n int) State {
	s := make(State, 1<<uint(n))
	s[0] = 1
	return s
}

// Apply runs one native gate in place
func (s State) Apply(g domain.Gate) {
	switch g.Name {
	case domain.GateRZ:
		lo := cmplx.Exp(complex(0, -g.Angle/2))
		hi := cmplx.Exp(complex(0, g.Angle/2))
		bit := 1 << uint(g.Qubits[0])
		for i := range s {
			if i&bit == 0 {
				s[i] *= lo
			} else {
				s[i] *= hi
			}
		}
	case domain.GateSX:
		p := complex(0.5, 0.5)
		m := complex(0.5, -0.5)
		s.single(g.Qubits[0], func(a, b complex128) (complex128, complex128) {
			return p*a + m*b, m*a + p*b
		})
	case domain.GateX:
		s.single(g.Qubits[0], func(a, b complex128) (complex128, complex128) {
			return b, a
		})
	case domain.GateCZ:
		mask := 1<<uint(g.Qubits[0]) | 1<<uint(g.Qubits[1])
		for i := range s {
			if i&mask == mask {
				s[i] = -s[i]
			}
		}
	}
}

func (s State) single(q int, f func(a, b complex128) (complex128, complex128)) {
	bit := 1 << uint(q)
	for i := range s {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		s[i], s[j] = f(s[i], s[j])
	}
}

// Probabilities returns |amplitude|² per basis index
func (s State) Probabilities() []float64 {
	out := make([]float64, len(s))
	for i, a := range s {
		re, im := real(a), imag(a)
		out[i] = re*re + im*im
	}
	return out
}

// Validate checks that every gate is native and addresses existing qubits
func Validate(spec domain.CircuitSpec) error {
	if spec.Qubits < 1 || spec.Qubits > MaxQubits {
		return domain.NewError(domain.KindConfiguration, "simulator.validate",
			fmt.Errorf("qubit count %d outside [1, %d]", spec.Qubits, MaxQubits))
	}
	for i, g := range spec.Gates {
		if !domain.IsNative(g.Name) {
			return domain.NewError(domain.KindConfiguration, "simulator.validate",
				fmt.Errorf("gate %d: %q is not in the native basis", i, g.Name))
		}
		if len(g.Qubits) != g.Name.Arity() {
			return domain.NewError(domain.KindConfiguration, "simulator.validate",
				fmt.Errorf("gate %d (%s) has %d qubits", i, g.Name, len(g.Qubits)))
		}
		for _, q := range g.Qubits {
			if q < 0 || q >= spec.Qubits {
				return domain.NewError(domain.KindConfiguration, "simulator.validate",
					fmt.Errorf("gate %d (%s) addresses qubit %d", i, g.Name, q))
			}
		}
		if g.Name == domain.GateCZ && g.Qubits[0] == g.Qubits[1] {
			return domain.NewError(domain.KindConfiguration, "simulator.validate",
				fmt.Errorf("gate %d: cz on a single qubit", i))
		}
		if math.IsNaN(g.Angle) || math.IsInf(g.Angle, 0) {
			return domain.NewError(domain.KindConfiguration, "simulator.validate",
				fmt.Errorf("gate %d: non-finite angle", i))
		}
	}
	return nil
}

// Evolve validates spec and returns the final measurement distribution
func Evolve(ctx context.Context, spec domain.CircuitSpec) ([]float64, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	state := NewState(spec.Qubits)
	for i, g := range spec.Gates {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		state.Apply(g)
	}
	return state.Probabilities(), nil
}
