package circuit

import (
	"sort"

	"github.com/okushigue/rzqr/internal/domain"
)

// Stats summarizes an assembled circuit
type Stats struct {
	Qubits     int                     `json:"qubits"`
	Iterations int                     `json:"iterations"`
	GateCount  int                     `json:"gate_count"`
	Depth      int                     `json:"depth"`
	Histogram  map[domain.GateName]int `json:"histogram"`
}

// Summarize computes gate counts and depth. Depth is the longest chain of gates
// sharing a qubit.
func Summarize(spec domain.CircuitSpec) Stats {
	s := Stats{
		Qubits:     spec.Qubits,
		Iterations: spec.Iterations,
		GateCount:  len(spec.Gates),
		Histogram:  make(map[domain.GateName]int),
	}

	level := make([]int, spec.Qubits)
	for _, g := range spec.Gates {
		s.Histogram[g.Name]++
		next := 0
		for _, q := range g.Qubits {
			if level[q] > next {
				next = level[q]
			}
		}
		next++
		for _, q := range g.Qubits {
			level[q] = next
		}
		if next > s.Depth {
			s.Depth = next
		}
	}
	return s
}

// GateNames returns the histogram keys in basis order
func (s Stats) GateNames() []domain.GateName {
	names := make([]domain.GateName, 0, len(s.Histogram))
	for name := range s.Histogram {
		names = append(names, name)
	}
	order := make(map[domain.GateName]int, len(domain.NativeBasis))
	for i, g := range domain.NativeBasis {
		order[g] = i
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })
	return names
}
