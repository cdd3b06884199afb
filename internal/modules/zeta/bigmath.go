package zeta

import (
	"math/big"
)

// computePi evaluates π with Machin's formula: π = 16·atan(1/5) − 4·atan(1/239)
func computePi(prec uint) *big.Float {
	work := prec + 16
	a := arctanInverse(5, work)
	b := arctanInverse(239, work)
	a.Mul(a, new(big.Float).SetPrec(work).SetInt64(16))
	b.Mul(b, new(big.Float).SetPrec(work).SetInt64(4))
	pi := new(big.Float).SetPrec(work).Sub(a, b)
	return new(big.Float).SetPrec(prec).Set(pi)
}

// arctanInverse returns atan(1/x) via its alternating Taylor series
func arctanInverse(x int64, prec uint) *big.Float {
	bx := new(big.Float).SetPrec(prec).SetInt64(x)
	x2 := new(big.Float).SetPrec(prec).Mul(bx, bx)
	power := new(big.Float).SetPrec(prec).Quo(new(big.Float).SetPrec(prec).SetInt64(1), bx)
	sum := new(big.Float).SetPrec(prec).Set(power)
	eps := new(big.Float).SetPrec(prec).SetMantExp(big.NewFloat(1), -int(prec)-4)

	term := new(big.Float).SetPrec(prec)
	for n := int64(1); ; n++ {
		power.Quo(power, x2)
		term.Quo(power, new(big.Float).SetPrec(prec).SetInt64(2*n+1))
		if term.Cmp(eps) < 0 {
			break
		}
		if n%2 == 1 {
			sum.Sub(sum, term)
		} else {
			sum.Add(sum, term)
		}
	}
	return sum
}

// sinCos returns sin(x) and cos(x) for x ≥ 0 at precision prec.
// twoPi must carry at least prec bits.
func sinCos(x, pi, twoPi *big.Float, prec uint) (*big.Float, *big.Float) {
	r := reduceAngle(x, pi, twoPi, prec)

	sin := new(big.Float).SetPrec(prec)
	cos := new(big.Float).SetPrec(prec).SetInt64(1)
	term := new(big.Float).SetPrec(prec).SetInt64(1)
	eps := new(big.Float).SetPrec(prec).SetMantExp(big.NewFloat(1), -int(prec)-8)
	abs := new(big.Float).SetPrec(prec)
	k := new(big.Float).SetPrec(prec)

	for n := int64(1); ; n++ {
		term.Mul(term, r)
		term.Quo(term, k.SetInt64(n))
		switch n % 4 {
		case 0:
			cos.Add(cos, term)
		case 1:
			sin.Add(sin, term)
		case 2:
			cos.Sub(cos, term)
		case 3:
			sin.Sub(sin, term)
		}
		if n > 2 && abs.Abs(term).Cmp(eps) < 0 {
			break
		}
	}
	return sin, cos
}

// reduceAngle maps x ≥ 0 into [−π, π]
func reduceAngle(x, pi, twoPi *big.Float, prec uint) *big.Float {
	q := new(big.Float).SetPrec(prec).Quo(x, twoPi)
	whole, _ := q.Int(nil)
	r := new(big.Float).SetPrec(prec).SetInt(whole)
	r.Mul(r, twoPi)
	r.Sub(x, r)
	if r.Cmp(pi) > 0 {
		r.Sub(r, twoPi)
	}
	return r
}
