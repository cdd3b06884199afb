// Package angles reduces a fractal field into circuit rotation angles.
package angles

import (
	"fmt"
	"math"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// DefaultSaturation is the field level at which an angle reaches 1−1/e of a full turn
const DefaultSaturation = 0.05

// Mapper turns slab means of a field into per-qubit phases and an oracle bias
type Mapper struct {
	saturation float64
	log        zerolog.Logger
}

// NewMapper creates an angle mapper. A non-positive saturation selects DefaultSaturation.
func NewMapper(log zerolog.Logger, saturation float64) *Mapper {
	if saturation <= 0 {
		saturation = DefaultSaturation
	}
	return &Mapper{
		saturation: saturation,
		log:        log.With().Str("component", "angle_mapper").Logger(),
	}
}

// MapToAngles partitions the field into qubits slabs along x, one per logical qubit,
// and maps each slab mean into [0, 2π). The oracle bias comes from the global mean.
func (m *Mapper) MapToAngles(field domain.FractalField, qubits int) (domain.AngleSet, error) {
	g := field.Size
	if qubits < 1 {
		return domain.AngleSet{}, domain.NewError(domain.KindConfiguration, "angles.map",
			fmt.Errorf("logical qubit count must be positive, got %d", qubits))
	}
	if g <= 0 || len(field.Values) != g*g*g {
		return domain.AngleSet{}, domain.NewError(domain.KindConfiguration, "angles.map",
			fmt.Errorf("field holds %d values, want %d³", len(field.Values), g))
	}
	if g%qubits != 0 {
		return domain.AngleSet{}, domain.NewError(domain.KindConfiguration, "angles.map",
			fmt.Errorf("grid size %d is not divisible by %d qubits", g, qubits))
	}

	// x-major layout makes every slab a contiguous run of the flat slice
	slab := g / qubits * g * g
	set := domain.AngleSet{StatePrep: make([]float64, qubits)}
	for q := 0; q < qubits; q++ {
		mean := stat.Mean(field.Values[q*slab:(q+1)*slab], nil)
		set.StatePrep[q] = m.angle(mean)
	}
	set.OracleBias = m.angle(stat.Mean(field.Values, nil))

	m.log.Debug().
		Floats64("state_prep", set.StatePrep).
		Float64("oracle_bias", set.OracleBias).
		Msg("Mapped field to angles")

	return set, nil
}

// angle maps a non-negative level into [0, 2π) with angle(0) = 0
func (m *Mapper) angle(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	a := 2 * math.Pi * -math.Expm1(-v/m.saturation)
	return math.Min(a, math.Nextafter(2*math.Pi, 0))
}
