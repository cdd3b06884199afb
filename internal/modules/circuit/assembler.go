// Package circuit assembles the fractal-biased Grover circuit in a native gate basis.
package circuit

import (
	"fmt"
	"math"
	"strings"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
)

// OracleBiasScale divides the oracle bias before it is added to the π marking phase
const OracleBiasScale = 32

// Assembler builds circuits with a fixed topology: state preparation followed by
// Grover iterations of oracle and diffusion. Only the rotation angles vary.
type Assembler struct {
	log zerolog.Logger
}

// NewAssembler creates a circuit assembler
func NewAssembler(log zerolog.Logger) *Assembler {
	return &Assembler{log: log.With().Str("component", "circuit_assembler").Logger()}
}

// Targets returns the marked states |0…01⟩ and |0…10⟩ for n qubits
func Targets(n int) []string {
	return []string{BitString(1, n), BitString(2, n)}
}

// Iterations returns ⌊π/4·√(2ⁿ/M)⌋ for M marked states
func Iterations(n, marked int) int {
	return int(math.Floor(math.Pi / 4 * math.Sqrt(float64(uint64(1)<<uint(n))/float64(marked))))
}

// BitString renders basis index i over n qubits with qubit 0 as the rightmost character
func BitString(i, n int) string {
	var sb strings.Builder
	for q := n - 1; q >= 0; q-- {
		if i>>q&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Assemble builds the circuit for the given angles. The gate sequence depends only on n;
// angles only change rz parameters.
func (a *Assembler) Assemble(angles domain.AngleSet, n int) (domain.CircuitSpec, error) {
	if n < 2 {
		return domain.CircuitSpec{}, domain.NewError(domain.KindConfiguration, "circuit.assemble",
			fmt.Errorf("at least 2 qubits required, got %d", n))
	}
	if len(angles.StatePrep) != n {
		return domain.CircuitSpec{}, domain.NewError(domain.KindConfiguration, "circuit.assemble",
			fmt.Errorf("%d state preparation angles for %d qubits", len(angles.StatePrep), n))
	}

	targets := []int{1, 2}
	iterations := Iterations(n, len(targets))
	phase := math.Pi + angles.OracleBias/OracleBiasScale

	b := &builder{n: n}
	b.prepare(angles.StatePrep)
	for i := 0; i < iterations; i++ {
		for _, t := range targets {
			b.flipZeros(t)
			b.mcp(phase)
			b.flipZeros(t)
		}
		b.unprepare(angles.StatePrep)
		b.flipAll()
		b.mcp(math.Pi)
		b.flipAll()
		b.prepare(angles.StatePrep)
	}

	spec := domain.CircuitSpec{
		Qubits:     n,
		Iterations: iterations,
		Targets:    Targets(n),
		Basis:      append([]domain.GateName(nil), domain.NativeBasis...),
		Gates:      b.gates,
	}

	a.log.Debug().
		Int("qubits", n).
		Int("iterations", iterations).
		Int("gates", len(spec.Gates)).
		Float64("oracle_phase", phase).
		Msg("Assembled circuit")

	return spec, nil
}

type builder struct {
	n     int
	gates []domain.Gate
}

func (b *builder) rz(q int, theta float64) {
	b.gates = append(b.gates, domain.Gate{Name: domain.GateRZ, Qubits: []int{q}, Angle: theta})
}

func (b *builder) sx(q int) {
	b.gates = append(b.gates, domain.Gate{Name: domain.GateSX, Qubits: []int{q}})
}

func (b *builder) x(q int) {
	b.gates = append(b.gates, domain.Gate{Name: domain.GateX, Qubits: []int{q}})
}

func (b *builder) cz(c, t int) {
	b.gates = append(b.gates, domain.Gate{Name: domain.GateCZ, Qubits: []int{c, t}})
}

// h is a Hadamard up to global phase
func (b *builder) h(q int) {
	b.rz(q, math.Pi/2)
	b.sx(q)
	b.rz(q, math.Pi/2)
}

func (b *builder) cx(c, t int) {
	b.h(t)
	b.cz(c, t)
	b.h(t)
}

// prepare applies sx·rz(π/2+α) per qubit, a Hadamard with phase α
func (b *builder) prepare(alphas []float64) {
	for q, alpha := range alphas {
		b.sx(q)
		b.rz(q, math.Pi/2+alpha)
	}
}

// unprepare inverts prepare up to global phase
func (b *builder) unprepare(alphas []float64) {
	for q, alpha := range alphas {
		b.rz(q, math.Pi/2-alpha)
		b.sx(q)
		b.rz(q, math.Pi)
	}
}

func (b *builder) flipZeros(target int) {
	for q := 0; q < b.n; q++ {
		if target>>q&1 == 0 {
			b.x(q)
		}
	}
}

func (b *builder) flipAll() {
	for q := 0; q < b.n; q++ {
		b.x(q)
	}
}

// mcp applies phase φ to |1…1⟩. The phase polynomial of the all-ones projector expands
// into parity terms: every non-empty subset S contributes rz(±φ/2ⁿ⁻¹) on its parity,
// computed onto the highest qubit of S with a CNOT ladder.
func (b *builder) mcp(phi float64) {
	scale := phi / float64(uint64(1)<<uint(b.n-1))
	for subset := 1; subset < 1<<b.n; subset++ {
		var qubits []int
		for q := 0; q < b.n; q++ {
			if subset>>q&1 == 1 {
				qubits = append(qubits, q)
			}
		}
		target := qubits[len(qubits)-1]
		controls := qubits[:len(qubits)-1]

		coef := scale
		if len(qubits)%2 == 0 {
			coef = -coef
		}
		for _, c := range controls {
			b.cx(c, target)
		}
		b.rz(target, coef)
		for i := len(controls) - 1; i >= 0; i-- {
			b.cx(controls[i], target)
		}
	}
}
