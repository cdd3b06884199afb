package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okushigue/rzqr/internal/domain"
)

// QASM renders the circuit as OpenQASM 2.0 with a final measurement of every qubit
func QASM(spec domain.CircuitSpec) (string, error) {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", spec.Qubits)
	fmt.Fprintf(&sb, "creg c[%d];\n", spec.Qubits)

	for i, g := range spec.Gates {
		if !domain.IsNative(g.Name) {
			return "", domain.NewError(domain.KindConfiguration, "circuit.qasm",
				fmt.Errorf("gate %d: %q is not in the native basis", i, g.Name))
		}
		if len(g.Qubits) != g.Name.Arity() {
			return "", domain.NewError(domain.KindConfiguration, "circuit.qasm",
				fmt.Errorf("gate %d (%s) has %d qubits", i, g.Name, len(g.Qubits)))
		}
		for _, q := range g.Qubits {
			if q < 0 || q >= spec.Qubits {
				return "", domain.NewError(domain.KindConfiguration, "circuit.qasm",
					fmt.Errorf("gate %d (%s) addresses qubit %d of %d", i, g.Name, q, spec.Qubits))
			}
		}
		switch g.Name {
		case domain.GateRZ:
			fmt.Fprintf(&sb, "rz(%s) q[%d];\n", strconv.FormatFloat(g.Angle, 'g', 17, 64), g.Qubits[0])
		case domain.GateSX, domain.GateX:
			fmt.Fprintf(&sb, "%s q[%d];\n", g.Name, g.Qubits[0])
		case domain.GateCZ:
			fmt.Fprintf(&sb, "cz q[%d],q[%d];\n", g.Qubits[0], g.Qubits[1])
		}
	}
	sb.WriteString("measure q -> c;\n")
	return sb.String(), nil
}
