package zeta

import (
	"context"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// evaluator computes ζ(½+it) with the Borwein alternating series
//
//	ζ(s) = −1/(d_n(1−2^{1−s})) · Σ_{k<n} (−1)^k (d_k − d_n)/(k+1)^s
//
// where d_k = n·Σ_{i≤k} (n+i−1)!·4^i/((n−i)!(2i)!) are exact integers.
// All per-term constants are independent of t and computed once per precision.
type evaluator struct {
	prec    Precision
	terms   int
	pi      *big.Float
	twoPi   *big.Float
	sqrt2   *big.Float
	weights []*big.Float // (−1)^k (d_k − d_n)/d_n · (k+1)^{−1/2}
	logs    []*big.Float // ln(k+1)

	fastWeights []float64
	fastLogs    []float64
}

// termsFor returns the Borwein series length giving `digits` correct digits up to tMax
func termsFor(digits int, tMax float64) int {
	num := float64(digits)*math.Ln10 + math.Pi*tMax/2 + math.Log(1+2*tMax) + 10
	return int(num/math.Log(3+math.Sqrt(8))) + 1
}

// precomputeCheckInterval is how many series terms are prepared between context checks
const precomputeCheckInterval = 64

// newEvaluator precomputes the series for ordinates up to tMax
func newEvaluator(ctx context.Context, digits int, tMax float64) (*evaluator, error) {
	n := termsFor(digits, tMax)
	prec := NewPrecision(digits, n)
	bits := prec.Bits

	d := borweinWeights(n)
	dn := new(big.Float).SetPrec(bits).SetInt(d[n])

	ev := &evaluator{
		prec:        prec,
		terms:       n,
		pi:          computePi(bits),
		weights:     make([]*big.Float, n),
		logs:        make([]*big.Float, n),
		fastWeights: make([]float64, n),
		fastLogs:    make([]float64, n),
	}
	ev.twoPi = new(big.Float).SetPrec(bits).Add(ev.pi, ev.pi)
	ev.sqrt2 = new(big.Float).SetPrec(bits).Sqrt(new(big.Float).SetPrec(bits).SetInt64(2))

	diff := new(big.Int)
	for k := 0; k < n; k++ {
		if k%precomputeCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		w := new(big.Float).SetPrec(bits).SetInt(diff.Sub(d[k], d[n]))
		w.Quo(w, dn)
		if k%2 == 1 {
			w.Neg(w)
		}
		base := new(big.Float).SetPrec(bits).SetInt64(int64(k + 1))
		root := new(big.Float).SetPrec(bits).Sqrt(base)
		w.Quo(w, root)

		ev.weights[k] = w
		if k == 0 {
			ev.logs[k] = new(big.Float).SetPrec(bits)
		} else {
			ev.logs[k] = bigfloat.Log(base)
		}
		ev.fastWeights[k], _ = w.Float64()
		ev.fastLogs[k] = math.Log(float64(k + 1))
	}
	return ev, nil
}

// borweinWeights returns d_0..d_n as exact integers
func borweinWeights(n int) []*big.Int {
	d := make([]*big.Int, n+1)
	term := big.NewInt(1) // i = 0 term: n·(n−1)!/n! = 1
	acc := new(big.Int).Set(term)
	d[0] = new(big.Int).Set(acc)

	num := new(big.Int)
	den := new(big.Int)
	for i := 0; i < n; i++ {
		// term_{i+1} = term_i · 2(n+i)(n−i) / ((2i+1)(i+1))
		num.SetInt64(int64(2 * (n + i) * (n - i)))
		den.SetInt64(int64((2*i + 1) * (i + 1)))
		term.Mul(term, num)
		term.Quo(term, den)
		acc.Add(acc, term)
		d[i+1] = new(big.Int).Set(acc)
	}
	return d
}

// zeta returns Re and Im of ζ(½+it) at working precision
func (ev *evaluator) zeta(t *big.Float) (*big.Float, *big.Float) {
	bits := ev.prec.Bits
	re := new(big.Float).SetPrec(bits)
	im := new(big.Float).SetPrec(bits)
	arg := new(big.Float).SetPrec(bits)
	tmp := new(big.Float).SetPrec(bits)

	// (k+1)^{−s} = (k+1)^{−1/2} · (cos(t·ln(k+1)) − i·sin(t·ln(k+1)))
	for k := 0; k < ev.terms; k++ {
		arg.Mul(t, ev.logs[k])
		s, c := sinCos(arg, ev.pi, ev.twoPi, bits)
		re.Add(re, tmp.Mul(ev.weights[k], c))
		im.Sub(im, tmp.Mul(ev.weights[k], s))
	}

	// denominator −(1 − 2^{1−s}) with 2^{1−s} = √2·(cos(t·ln2) − i·sin(t·ln2))
	arg.Mul(t, ev.logs[1])
	s2, c2 := sinCos(arg, ev.pi, ev.twoPi, bits)
	denRe := new(big.Float).SetPrec(bits).Mul(ev.sqrt2, c2)
	denRe.Sub(denRe, new(big.Float).SetPrec(bits).SetInt64(1))
	denIm := new(big.Float).SetPrec(bits).Mul(ev.sqrt2, s2)
	denIm.Neg(denIm)

	return complexQuo(re, im, denRe, denIm, bits)
}

// hardy returns Re(ζ(½+it)·e^{iθ̃(t)}). Its sign changes exactly at the zeros
// of Z(t) because the float64 theta stays far within π/2 of the true phase.
func (ev *evaluator) hardy(t *big.Float) *big.Float {
	zr, zi := ev.zeta(t)
	tf, _ := t.Float64()
	sinTheta, cosTheta := math.Sincos(theta(tf))

	bits := ev.prec.Bits
	out := new(big.Float).SetPrec(bits).Mul(zr, new(big.Float).SetPrec(bits).SetFloat64(cosTheta))
	out.Sub(out, new(big.Float).SetPrec(bits).Mul(zi, new(big.Float).SetPrec(bits).SetFloat64(sinTheta)))
	return out
}

// hardyFast is the float64 rendition of hardy used for bracketing
func (ev *evaluator) hardyFast(t float64) float64 {
	var re, im float64
	for k := 0; k < ev.terms; k++ {
		s, c := math.Sincos(t * ev.fastLogs[k])
		re += ev.fastWeights[k] * c
		im -= ev.fastWeights[k] * s
	}
	s2, c2 := math.Sincos(t * math.Ln2)
	denRe := math.Sqrt2*c2 - 1
	denIm := -math.Sqrt2 * s2
	mag := denRe*denRe + denIm*denIm
	zr := (re*denRe + im*denIm) / mag
	zi := (im*denRe - re*denIm) / mag

	sinTheta, cosTheta := math.Sincos(theta(t))
	return zr*cosTheta - zi*sinTheta
}

// complexQuo divides (a+ib) by (c+id)
func complexQuo(a, b, c, d *big.Float, bits uint) (*big.Float, *big.Float) {
	mag := new(big.Float).SetPrec(bits).Mul(c, c)
	mag.Add(mag, new(big.Float).SetPrec(bits).Mul(d, d))

	re := new(big.Float).SetPrec(bits).Mul(a, c)
	re.Add(re, new(big.Float).SetPrec(bits).Mul(b, d))
	re.Quo(re, mag)

	im := new(big.Float).SetPrec(bits).Mul(b, c)
	im.Sub(im, new(big.Float).SetPrec(bits).Mul(a, d))
	im.Quo(im, mag)
	return re, im
}

// theta is the Riemann–Siegel theta function from its Stirling series
func theta(t float64) float64 {
	return t/2*math.Log(t/(2*math.Pi)) - t/2 - math.Pi/8 +
		1/(48*t) + 7/(5760*t*t*t) + 31/(80640*math.Pow(t, 5))
}

// estimateOrdinate returns a height at or slightly above the n-th zero, from the
// Riemann–von Mangoldt counting function N(T) ≈ T/2π·ln(T/2πe) + 7/8
func estimateOrdinate(n int) float64 {
	target := float64(n) - 7.0/8.0
	t := 15.0
	for i := 0; i < 50; i++ {
		f := t/(2*math.Pi)*math.Log(t/(2*math.Pi*math.E)) - target
		df := math.Log(t/(2*math.Pi)) / (2 * math.Pi)
		next := t - f/df
		if next < 10 {
			next = 10
		}
		if math.Abs(next-t) < 1e-9 {
			return next
		}
		t = next
	}
	return t
}
