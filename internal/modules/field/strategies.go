package field

import "math"

// Point is a continuous position inside the grid, in cell units
type Point struct {
	X, Y, Z float64
}

// CoordinateMapping places a zero ordinate inside a grid of edge gridSize.
// Implementations must return coordinates in [0, gridSize).
type CoordinateMapping interface {
	Map(ordinate float64, gridSize int) Point
}

// Falloff converts a distance in cell units into an influence weight.
// Implementations must be monotonically decreasing and positive at 0.
type Falloff interface {
	Weight(distance float64) float64
}

// UnfoldedMapping spreads zeros with three slowly varying functions of the ordinate:
// the phase γ/2π, ln γ and the smooth zero-counting term (γ/2π)·ln(γ/2πe).
type UnfoldedMapping struct{}

// Map implements CoordinateMapping
func (UnfoldedMapping) Map(ordinate float64, gridSize int) Point {
	g := float64(gridSize)
	phase := ordinate / (2 * math.Pi)
	return Point{
		X: frac(phase) * g,
		Y: frac(math.Log(ordinate)) * g,
		Z: frac(phase*math.Log(ordinate/(2*math.Pi*math.E))) * g,
	}
}

// DiagonalMapping places zeros linearly along the cube diagonal between Min and Max
type DiagonalMapping struct {
	Min, Max float64
}

// Map implements CoordinateMapping
func (m DiagonalMapping) Map(ordinate float64, gridSize int) Point {
	span := m.Max - m.Min
	var u float64
	if span > 0 {
		u = (ordinate - m.Min) / span
	}
	u = math.Max(0, math.Min(u, math.Nextafter(1, 0)))
	c := u * float64(gridSize)
	return Point{X: c, Y: c, Z: c}
}

// InverseFalloff weighs a zero by 1/(1+d)
type InverseFalloff struct{}

// Weight implements Falloff
func (InverseFalloff) Weight(d float64) float64 {
	return 1 / (1 + d)
}

// InverseSquareFalloff weighs a zero by 1/(1+d²)
type InverseSquareFalloff struct{}

// Weight implements Falloff
func (InverseSquareFalloff) Weight(d float64) float64 {
	return 1 / (1 + d*d)
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
