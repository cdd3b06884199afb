package simulator

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/modules/circuit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func assemble(t *testing.T, set domain.AngleSet) domain.CircuitSpec {
	t.Helper()
	spec, err := circuit.NewAssembler(quietLogger()).Assemble(set, len(set.StatePrep))
	require.NoError(t, err)
	return spec
}

func TestEvolve_NeutralGrover(t *testing.T) {
	spec := assemble(t, domain.AngleSet{StatePrep: make([]float64, 4)})

	probs, err := Evolve(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, probs, 16)

	sum := 0.0
	for i, p := range probs {
		sum += p
		if i == 1 || i == 2 {
			assert.InDelta(t, 0.47265625, p, 1e-9)
		} else {
			assert.InDelta(t, 0.00390625, p, 1e-9)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestEvolve_BiasedGrover(t *testing.T) {
	spec := assemble(t, domain.AngleSet{StatePrep: []float64{1, 2, 3, 4.5}, OracleBias: 2})

	probs, err := Evolve(context.Background(), spec)
	require.NoError(t, err)

	assert.InDelta(t, 0.471536, probs[1], 1e-6)
	assert.InDelta(t, 0.471536, probs[2], 1e-6)
	assert.InDelta(t, 0.004066, probs[0], 1e-6)
}

func TestState_Gates(t *testing.T) {
	s := NewState(2)
	s.Apply(domain.Gate{Name: domain.GateX, Qubits: []int{0}})
	assert.Equal(t, complex128(1), s[1])

	s.Apply(domain.Gate{Name: domain.GateX, Qubits: []int{1}})
	s.Apply(domain.Gate{Name: domain.GateCZ, Qubits: []int{0, 1}})
	assert.Equal(t, complex128(-1), s[3])

	// two sx make an x
	s = NewState(1)
	s.Apply(domain.Gate{Name: domain.GateSX, Qubits: []int{0}})
	s.Apply(domain.Gate{Name: domain.GateSX, Qubits: []int{0}})
	p := s.Probabilities()
	assert.InDelta(t, 0, p[0], 1e-15)
	assert.InDelta(t, 1, p[1], 1e-15)

	s = NewState(1)
	s.Apply(domain.Gate{Name: domain.GateRZ, Qubits: []int{0}, Angle: math.Pi})
	assert.InDelta(t, 0, real(s[0]), 1e-15)
	assert.InDelta(t, -1, imag(s[0]), 1e-15)
}

func TestExecute_ExactMode(t *testing.T) {
	sim := New(quietLogger(), Config{Mode: ModeExact})
	spec := assemble(t, domain.AngleSet{StatePrep: make([]float64, 4)})

	counts, err := sim.Execute(context.Background(), spec, 1024)
	require.NoError(t, err)

	assert.Equal(t, 1024, counts.Total())
	assert.Equal(t, 484, counts["0001"])
	assert.Equal(t, 484, counts["0010"])
	assert.Equal(t, 4, counts["1111"])
	assert.Equal(t, "local_simulator", sim.Identifier())
}

func TestExecute_SampledModeIsSeeded(t *testing.T) {
	spec := assemble(t, domain.AngleSet{StatePrep: make([]float64, 4)})

	a, err := New(quietLogger(), Config{Mode: ModeSampled, Seed: 42}).Execute(context.Background(), spec, 2048)
	require.NoError(t, err)
	b, err := New(quietLogger(), Config{Mode: ModeSampled, Seed: 42}).Execute(context.Background(), spec, 2048)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 2048, a.Total())
	top := a["0001"] + a["0010"]
	assert.Greater(t, top, 1800)
	for bits := range a {
		assert.Len(t, bits, 4)
	}
}

func TestExecute_Errors(t *testing.T) {
	sim := New(quietLogger(), Config{Mode: ModeExact})
	spec := assemble(t, domain.AngleSet{StatePrep: make([]float64, 4)})

	_, err := sim.Execute(context.Background(), spec, 0)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))

	bad := domain.CircuitSpec{Qubits: 2, Gates: []domain.Gate{{Name: "cx", Qubits: []int{0, 1}}}}
	_, err = sim.Execute(context.Background(), bad, 10)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err = sim.Execute(ctx, spec, 10)
	assert.Equal(t, domain.KindExecutionTimeout, domain.KindOf(err))
}

func TestApportion(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
		shots int
		want  []int
	}{
		{"even", []float64{0.5, 0.5}, 10, []int{5, 5}},
		{"remainder to largest", []float64{0.26, 0.37, 0.37}, 10, []int{2, 4, 4}},
		{"tie to lower index", []float64{0.25, 0.25, 0.25, 0.25}, 3, []int{1, 1, 1, 0}},
		{"degenerate", []float64{1, 0}, 7, []int{7, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apportion(tt.probs, tt.shots)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_ShotLimit(t *testing.T) {
	spec := assemble(t, domain.AngleSet{StatePrep: make([]float64, 4)})
	_, err := New(quietLogger(), Config{Mode: ModeExact}).Execute(context.Background(), spec, domain.MaxShots+1)
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestSample_StopsOnCancel(t *testing.T) {
	sim := New(quietLogger(), Config{Mode: ModeSampled, Seed: 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.sample(ctx, []float64{0.5, 0.5}, domain.MaxShots)
	assert.ErrorIs(t, err, context.Canceled)

	counts, err := sim.sample(context.Background(), []float64{0.5, 0.5}, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, counts[0]+counts[1])
}

func TestTimeoutError(t *testing.T) {
	assert.Equal(t, domain.KindExecutionTimeout, domain.KindOf(timeoutError(context.DeadlineExceeded)))
	assert.ErrorIs(t, timeoutError(context.Canceled), context.Canceled)
}
