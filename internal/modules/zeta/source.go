package zeta

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
)

// MaxZeroCount bounds a single request; the series length grows linearly with height
const MaxZeroCount = 256

// scanCheckInterval is how many scan steps run between context checks
const scanCheckInterval = 256

// Config tunes root finding
type Config struct {
	MaxIterations int     // Illinois steps per attempt
	MaxRetries    int     // bracket tightenings before giving up
	ScanStart     float64 // first ordinate examined
	ScanStep      float64 // sign-change scan step, well below the smallest gap in range
	Subdivisions  int     // pieces a bracket is split into on retry
}

// DefaultConfig returns the settings used by the pipeline
func DefaultConfig() Config {
	return Config{
		MaxIterations: 100,
		MaxRetries:    3,
		ScanStart:     10,
		ScanStep:      0.1,
		Subdivisions:  8,
	}
}

// Source produces the first N zero ordinates on the critical line
type Source struct {
	log zerolog.Logger
	cfg Config
}

// NewSource creates a zero source
func NewSource(log zerolog.Logger, cfg Config) *Source {
	def := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.ScanStart <= 0 {
		cfg.ScanStart = def.ScanStart
	}
	if cfg.ScanStep <= 0 {
		cfg.ScanStep = def.ScanStep
	}
	if cfg.Subdivisions < 2 {
		cfg.Subdivisions = def.Subdivisions
	}
	return &Source{
		log: log.With().Str("component", "zero_source").Logger(),
		cfg: cfg,
	}
}

type bracket struct {
	lo, hi float64
}

// Generate returns the first count ordinates, strictly increasing, each correct to
// digits significant digits. Identical inputs always give identical output.
func (s *Source) Generate(ctx context.Context, count, digits int) (domain.ZeroSequence, error) {
	if count < 1 || count > MaxZeroCount {
		return domain.ZeroSequence{}, domain.NewError(domain.KindConfiguration, "zeta.generate",
			fmt.Errorf("zero count must be in [1, %d], got %d", MaxZeroCount, count))
	}
	if digits < domain.MinDecimalDigits {
		return domain.ZeroSequence{}, domain.NewError(domain.KindPrecision, "zeta.generate",
			fmt.Errorf("%d digits cannot separate zero ordinates, need at least %d", digits, domain.MinDecimalDigits))
	}
	if digits > domain.MaxDecimalDigits {
		return domain.ZeroSequence{}, domain.NewError(domain.KindConfiguration, "zeta.generate",
			fmt.Errorf("%d digits above maximum %d", digits, domain.MaxDecimalDigits))
	}

	tMax := estimateOrdinate(count+1) + 5
	ev, err := newEvaluator(ctx, digits, tMax)
	if err != nil {
		return domain.ZeroSequence{}, err
	}
	brackets, err := s.scan(ctx, ev, count, tMax)
	if err != nil {
		return domain.ZeroSequence{}, err
	}
	for len(brackets) < count {
		// the counting estimate undershot, widen and rescan
		tMax *= 1.25
		s.log.Debug().Float64("t_max", tMax).Int("found", len(brackets)).Msg("Extending zero scan range")
		if ev, err = newEvaluator(ctx, digits, tMax); err != nil {
			return domain.ZeroSequence{}, err
		}
		if brackets, err = s.scan(ctx, ev, count, tMax); err != nil {
			return domain.ZeroSequence{}, err
		}
		if tMax > 4*estimateOrdinate(count+1) {
			return domain.ZeroSequence{}, domain.NewError(domain.KindComputation, "zeta.generate",
				fmt.Errorf("found %d of %d sign changes below t=%.1f", len(brackets), count, tMax))
		}
	}

	s.log.Debug().
		Int("count", count).
		Int("digits", digits).
		Int("terms", ev.terms).
		Uint("bits", ev.prec.Bits).
		Msg("Refining zero ordinates")

	outBits := ev.prec.OutputBits()
	seq := domain.ZeroSequence{Digits: digits, Ordinates: make([]*big.Float, 0, count)}
	for i, br := range brackets {
		root, err := s.solve(ctx, ev, br)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.ZeroSequence{}, ctxErr
			}
			return domain.ZeroSequence{}, domain.NewError(domain.KindComputation, "zeta.generate",
				fmt.Errorf("zero #%d in [%.3f, %.3f]: %w", i+1, br.lo, br.hi, err))
		}
		seq.Ordinates = append(seq.Ordinates, new(big.Float).SetPrec(outBits).Set(root))
	}

	if err := checkSequence(seq); err != nil {
		return domain.ZeroSequence{}, err
	}
	return seq, nil
}

// scan locates the first count sign changes of the Hardy function below tMax
func (s *Source) scan(ctx context.Context, ev *evaluator, count int, tMax float64) ([]bracket, error) {
	out := make([]bracket, 0, count)
	t := s.cfg.ScanStart
	f := ev.hardyFast(t)
	for step := 1; len(out) < count && t < tMax; step++ {
		if step%scanCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		next := t + s.cfg.ScanStep
		fn := ev.hardyFast(next)
		if f == 0 || (f < 0) != (fn < 0) {
			out = append(out, bracket{lo: t, hi: next})
		}
		t, f = next, fn
	}
	return out, nil
}

// solve refines one bracket, tightening it after every failed attempt
func (s *Source) solve(ctx context.Context, ev *evaluator, br bracket) (*big.Float, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := ev.prec.FromFloat64(br.lo)
	b := ev.prec.FromFloat64(br.hi)
	fa := ev.hardy(a)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fb := ev.hardy(b)

	for attempt := 0; ; attempt++ {
		root, iters, err := illinois(ctx, ev, a, b, fa, fb, s.cfg.MaxIterations)
		if err == nil {
			s.log.Trace().Str("t", root.Text('g', 12)).Int("iterations", iters).Int("attempt", attempt+1).Msg("Zero converged")
			return root, nil
		}
		if !errors.Is(err, errStalled) {
			return nil, err
		}
		if attempt >= s.cfg.MaxRetries {
			return nil, fmt.Errorf("no convergence after %d attempts", attempt+1)
		}
		s.log.Warn().Int("attempt", attempt+1).Float64("lo", br.lo).Msg("Zero refinement stalled, tightening bracket")
		if a, b, fa, fb, err = tighten(ctx, ev, a, b, fa, fb, s.cfg.Subdivisions); err != nil {
			return nil, err
		}
	}
}

var errStalled = errors.New("iteration limit reached")

// illinois runs the modified regula falsi on [a, b] until the bracket is below tolerance
func illinois(ctx context.Context, ev *evaluator, a, b, fa, fb *big.Float, maxIter int) (*big.Float, int, error) {
	p := ev.prec
	a, b = p.Float().Set(a), p.Float().Set(b)
	fa, fb = p.Float().Set(fa), p.Float().Set(fb)
	tol := p.Tolerance(b)
	two := p.Float().SetInt64(2)
	width := p.Float()
	side := 0

	for i := 0; i < maxIter; i++ {
		// c = (a·fb − b·fa)/(fb − fa)
		num := p.Float().Mul(a, fb)
		num.Sub(num, p.Float().Mul(b, fa))
		den := p.Float().Sub(fb, fa)
		if den.Sign() == 0 {
			return nil, i, errStalled
		}
		c := num.Quo(num, den)
		if err := ctx.Err(); err != nil {
			return nil, i, err
		}
		fc := ev.hardy(c)

		if fc.Sign() == 0 || width.Abs(width.Sub(b, a)).Cmp(tol) < 0 {
			return c, i + 1, nil
		}
		if (fc.Sign() < 0) == (fb.Sign() < 0) {
			b, fb = c, fc
			if side == -1 {
				fa.Quo(fa, two)
			}
			side = -1
		} else {
			a, fa = c, fc
			if side == 1 {
				fb.Quo(fb, two)
			}
			side = 1
		}
		if width.Abs(width.Sub(b, a)).Cmp(tol) < 0 {
			return c, i + 1, nil
		}
	}
	return nil, maxIter, errStalled
}

// tighten splits [a, b] into n pieces and keeps the first piece that still changes sign
func tighten(ctx context.Context, ev *evaluator, a, b, fa, fb *big.Float, n int) (lo, hi, flo, fhi *big.Float, err error) {
	p := ev.prec
	step := p.Float().Sub(b, a)
	step.Quo(step, p.Float().SetInt64(int64(n)))

	lo, flo = a, fa
	for i := 1; i <= n; i++ {
		hi = p.Float().Mul(step, p.Float().SetInt64(int64(i)))
		hi.Add(hi, a)
		fhi = fb
		if i < n {
			if err = ctx.Err(); err != nil {
				return nil, nil, nil, nil, err
			}
			fhi = ev.hardy(hi)
		} else {
			hi = b
		}
		if fhi.Sign() == 0 || (flo.Sign() < 0) != (fhi.Sign() < 0) {
			return lo, hi, flo, fhi, nil
		}
		lo, flo = hi, fhi
	}
	return a, b, fa, fb, nil
}

// checkSequence rejects output that is not strictly increasing at the requested digits
func checkSequence(seq domain.ZeroSequence) error {
	texts := seq.Strings()
	for i := 1; i < len(seq.Ordinates); i++ {
		if seq.Ordinates[i].Cmp(seq.Ordinates[i-1]) <= 0 {
			return domain.NewError(domain.KindComputation, "zeta.generate",
				fmt.Errorf("ordinates %d and %d out of order", i, i+1))
		}
		if texts[i] == texts[i-1] {
			return domain.NewError(domain.KindPrecision, "zeta.generate",
				fmt.Errorf("ordinates %d and %d coincide at %d digits", i, i+1, seq.Digits))
		}
	}
	return nil
}
