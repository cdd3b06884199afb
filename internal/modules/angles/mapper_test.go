package angles

import (
	"math"
	"testing"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapper() *Mapper {
	return NewMapper(zerolog.New(nil).Level(zerolog.Disabled), 0)
}

func TestMapToAngles_ZeroFieldIsNeutral(t *testing.T) {
	m := newTestMapper()

	set, err := m.MapToAngles(domain.NewFractalField(16), 4)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0, 0}, set.StatePrep)
	assert.Zero(t, set.OracleBias)
}

func TestMapToAngles_SlabMeans(t *testing.T) {
	m := newTestMapper()
	f := domain.NewFractalField(4)
	// one unit in the second x-slab only
	f.Values[f.Index(1, 2, 3)] = 1.6

	set, err := m.MapToAngles(f, 4)
	require.NoError(t, err)

	slabMean := 1.6 / 16
	globalMean := 1.6 / 64
	assert.Zero(t, set.StatePrep[0])
	assert.InDelta(t, 2*math.Pi*(1-math.Exp(-slabMean/0.05)), set.StatePrep[1], 1e-12)
	assert.Zero(t, set.StatePrep[2])
	assert.Zero(t, set.StatePrep[3])
	assert.InDelta(t, 2*math.Pi*(1-math.Exp(-globalMean/0.05)), set.OracleBias, 1e-12)
}

func TestMapToAngles_RangeAndMonotonic(t *testing.T) {
	m := newTestMapper()

	prev := -1.0
	for _, v := range []float64{0, 1e-6, 0.01, 0.05, 0.2, 1, 100, 1e9} {
		a := m.angle(v)
		assert.GreaterOrEqual(t, a, 0.0)
		assert.Less(t, a, 2*math.Pi)
		assert.GreaterOrEqual(t, a, prev)
		prev = a
	}
}

func TestMapToAngles_Errors(t *testing.T) {
	m := newTestMapper()

	tests := []struct {
		name   string
		field  domain.FractalField
		qubits int
	}{
		{"indivisible grid", domain.NewFractalField(16), 3},
		{"zero qubits", domain.NewFractalField(16), 0},
		{"short field", domain.FractalField{Size: 16, Values: make([]float64, 100)}, 4},
		{"empty field", domain.FractalField{}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.MapToAngles(tt.field, tt.qubits)
			require.Error(t, err)
			assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
		})
	}
}

