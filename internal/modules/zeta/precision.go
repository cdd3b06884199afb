// Package zeta generates ordinates of non-trivial Riemann zeta zeros at arbitrary precision.
package zeta

import (
	"math"
	"math/big"
)

// guardBits is the extra working precision kept above the requested digits
const guardBits = 64

// Precision describes the arithmetic context of one generation call.
// It is passed explicitly to every evaluation instead of living in package state.
type Precision struct {
	Digits int  // requested significant decimal digits
	Bits   uint // working mantissa bits
}

// NewPrecision derives a working precision for the requested digits and series length
func NewPrecision(digits, terms int) Precision {
	bits := uint(math.Ceil(float64(digits)*math.Log2(10))) + guardBits
	if terms > 1 {
		bits += uint(math.Ceil(math.Log2(float64(terms))))
	}
	return Precision{Digits: digits, Bits: bits}
}

// OutputBits is the mantissa size of the returned ordinates
func (p Precision) OutputBits() uint {
	return uint(math.Ceil(float64(p.Digits)*math.Log2(10))) + 4
}

// Float returns a zero value at working precision
func (p Precision) Float() *big.Float {
	return new(big.Float).SetPrec(p.Bits)
}

// FromFloat64 converts x to working precision
func (p Precision) FromFloat64(x float64) *big.Float {
	return p.Float().SetFloat64(x)
}

// Tolerance returns the absolute bracket width at which t is known to the requested digits
func (p Precision) Tolerance(t *big.Float) *big.Float {
	// 10^-(digits+2) relative to the ordinate magnitude
	scale := p.Float().SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Digits+2)), nil))
	tol := p.Float().Abs(t)
	return tol.Quo(tol, scale)
}
