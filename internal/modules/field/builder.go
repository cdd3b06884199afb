// Package field builds the 3D influence field from zeta zero ordinates.
package field

import (
	"fmt"
	"math"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
)

// Builder accumulates zero influence over a cubic grid
type Builder struct {
	mapping CoordinateMapping
	falloff Falloff
	log     zerolog.Logger
}

// Option customizes a Builder
type Option func(*Builder)

// WithMapping replaces the default UnfoldedMapping
func WithMapping(m CoordinateMapping) Option {
	return func(b *Builder) { b.mapping = m }
}

// WithFalloff replaces the default InverseFalloff
func WithFalloff(f Falloff) Option {
	return func(b *Builder) { b.falloff = f }
}

// NewBuilder creates a field builder
func NewBuilder(log zerolog.Logger, opts ...Option) *Builder {
	b := &Builder{
		mapping: UnfoldedMapping{},
		falloff: InverseFalloff{},
		log:     log.With().Str("component", "field_builder").Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the influence field: each cell sums falloff(d) over every zero whose
// mapped position lies within radius of the cell. The field is never renormalized.
func (b *Builder) Build(zeros domain.ZeroSequence, gridSize int, radius float64) (domain.FractalField, error) {
	if gridSize <= 0 {
		return domain.FractalField{}, domain.NewError(domain.KindConfiguration, "field.build",
			fmt.Errorf("grid size must be positive, got %d", gridSize))
	}
	if radius < 0 || math.IsNaN(radius) {
		return domain.FractalField{}, domain.NewError(domain.KindConfiguration, "field.build",
			fmt.Errorf("influence radius must be non-negative, got %v", radius))
	}

	f := domain.NewFractalField(gridSize)
	touched := 0
	for _, gamma := range zeros.Float64s() {
		p := b.mapping.Map(gamma, gridSize)
		touched += b.deposit(&f, p, radius)
	}

	b.log.Debug().
		Int("zeros", zeros.Len()).
		Int("grid", gridSize).
		Float64("radius", radius).
		Int("contributions", touched).
		Msg("Built fractal field")

	return f, nil
}

// deposit adds one zero's influence to the cells inside its bounding box
func (b *Builder) deposit(f *domain.FractalField, p Point, radius float64) int {
	lo := func(c float64) int { return clamp(int(math.Ceil(c-radius)), 0, f.Size-1) }
	hi := func(c float64) int { return clamp(int(math.Floor(c+radius)), 0, f.Size-1) }

	n := 0
	for x := lo(p.X); x <= hi(p.X); x++ {
		dx := float64(x) - p.X
		for y := lo(p.Y); y <= hi(p.Y); y++ {
			dy := float64(y) - p.Y
			for z := lo(p.Z); z <= hi(p.Z); z++ {
				dz := float64(z) - p.Z
				d := math.Sqrt(dx*dx + dy*dy + dz*dz)
				if d > radius {
					continue
				}
				f.Values[f.Index(x, y, z)] += b.falloff.Weight(d)
				n++
			}
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
