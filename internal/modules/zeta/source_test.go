package zeta

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var knownZeros = []string{
	"14.1347251417346937904572519835624702707842571156992432",
	"21.0220396387715549926284795938969027773343405249027818",
	"25.0108575801456887632137909925628218186595496725579966",
	"30.4248761258595132103118975305840913201815600237154401",
}

func newTestSource(cfg Config) *Source {
	return NewSource(zerolog.New(nil).Level(zerolog.Disabled), cfg)
}

func TestGenerate_KnownZeros(t *testing.T) {
	src := newTestSource(DefaultConfig())

	seq, err := src.Generate(context.Background(), len(knownZeros), 20)
	require.NoError(t, err)
	require.Equal(t, len(knownZeros), seq.Len())
	assert.Equal(t, 20, seq.Digits)

	tol := big.NewFloat(1e-18)
	for i, want := range knownZeros {
		expected, _, err := big.ParseFloat(want, 10, 256, big.ToNearestEven)
		require.NoError(t, err)
		diff := new(big.Float).SetPrec(256).Sub(seq.Ordinates[i], expected)
		diff.Abs(diff)
		assert.True(t, diff.Cmp(tol) < 0, "zero #%d off by %s", i+1, diff.Text('g', 5))
	}
}

func TestGenerate_HighPrecision(t *testing.T) {
	src := newTestSource(DefaultConfig())

	seq, err := src.Generate(context.Background(), 2, 50)
	require.NoError(t, err)

	expected, _, err := big.ParseFloat(knownZeros[1], 10, 256, big.ToNearestEven)
	require.NoError(t, err)
	diff := new(big.Float).SetPrec(256).Sub(seq.Ordinates[1], expected)
	diff.Abs(diff)

	tol := new(big.Float).SetMantExp(big.NewFloat(1), -150) // ~1e-45
	assert.True(t, diff.Cmp(tol) < 0, "second zero off by %s", diff.Text('g', 5))
}

func TestGenerate_Deterministic(t *testing.T) {
	src := newTestSource(DefaultConfig())

	first, err := src.Generate(context.Background(), 5, 25)
	require.NoError(t, err)
	second, err := src.Generate(context.Background(), 5, 25)
	require.NoError(t, err)

	assert.Equal(t, first.Strings(), second.Strings())
}

func TestGenerate_StrictlyIncreasing(t *testing.T) {
	src := newTestSource(DefaultConfig())

	seq, err := src.Generate(context.Background(), 16, 15)
	require.NoError(t, err)
	require.Equal(t, 16, seq.Len())

	values := seq.Float64s()
	for i := 1; i < len(values); i++ {
		assert.Greater(t, values[i], values[i-1])
	}
	assert.InDelta(t, 67.0798105294941737, values[15], 1e-9)
}

func TestGenerate_PrecisionTooLow(t *testing.T) {
	src := newTestSource(DefaultConfig())

	_, err := src.Generate(context.Background(), 4, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPrecision))
	assert.Equal(t, domain.KindPrecision, domain.KindOf(err))
}

func TestGenerate_InvalidCount(t *testing.T) {
	src := newTestSource(DefaultConfig())

	for _, count := range []int{0, -3, MaxZeroCount + 1} {
		_, err := src.Generate(context.Background(), count, 20)
		require.Error(t, err)
		assert.Equal(t, domain.KindConfiguration, domain.KindOf(err), "count %d", count)
	}
}

func TestGenerate_ConvergenceFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	cfg.MaxRetries = 2
	src := newTestSource(cfg)

	_, err := src.Generate(context.Background(), 1, 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrComputation))
	assert.True(t, domain.Retryable(err))
}

func TestGenerate_Cancelled(t *testing.T) {
	src := newTestSource(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Generate(ctx, 3, 20)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_PrecisionTooHigh(t *testing.T) {
	src := newTestSource(DefaultConfig())

	_, err := src.Generate(context.Background(), 1, domain.MaxDecimalDigits+1)
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestGenerate_HonorsDeadline(t *testing.T) {
	src := newTestSource(DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := src.Generate(ctx, 16, domain.MaxDecimalDigits)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGenerate_ConvergesAfterTightening(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.MaxIterations = 4
	cfg.MaxRetries = 20
	src := NewSource(zerolog.New(&buf).Level(zerolog.WarnLevel), cfg)

	seq, err := src.Generate(context.Background(), 1, 15)
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Contains(t, buf.String(), "tightening bracket")

	expected, _, err := big.ParseFloat(knownZeros[0], 10, 256, big.ToNearestEven)
	require.NoError(t, err)
	diff := new(big.Float).SetPrec(256).Sub(seq.Ordinates[0], expected)
	diff.Abs(diff)
	assert.True(t, diff.Cmp(big.NewFloat(1e-13)) < 0, "first zero off by %s", diff.Text('g', 5))
}

func TestTighten_KeepsSignChange(t *testing.T) {
	ev, err := newEvaluator(context.Background(), 15, 20)
	require.NoError(t, err)
	a, b := ev.prec.FromFloat64(14.0), ev.prec.FromFloat64(14.2)

	lo, hi, flo, fhi, err := tighten(context.Background(), ev, a, b, ev.hardy(a), ev.hardy(b), 8)
	require.NoError(t, err)
	loF, _ := lo.Float64()
	hiF, _ := hi.Float64()
	assert.InDelta(t, 14.125, loF, 1e-12)
	assert.InDelta(t, 14.15, hiF, 1e-12)
	assert.NotEqual(t, flo.Sign(), fhi.Sign())
}

func TestTighten_Cancelled(t *testing.T) {
	ev, err := newEvaluator(context.Background(), 15, 20)
	require.NoError(t, err)
	a, b := ev.prec.FromFloat64(14.0), ev.prec.FromFloat64(14.2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, _, err = tighten(ctx, ev, a, b, ev.hardy(a), ev.hardy(b), 8)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBorweinWeights(t *testing.T) {
	d := borweinWeights(2)
	require.Len(t, d, 3)
	assert.Equal(t, int64(1), d[0].Int64())
	assert.Equal(t, int64(9), d[1].Int64())
	assert.Equal(t, int64(17), d[2].Int64())
}

func TestEstimateOrdinate_AboveTrueZero(t *testing.T) {
	assert.Greater(t, estimateOrdinate(1), 14.1347)
	assert.Greater(t, estimateOrdinate(4), 30.4248)
	assert.Greater(t, estimateOrdinate(16), 67.0798)
}

func TestComputePi(t *testing.T) {
	pi := computePi(200)
	assert.True(t, strings.HasPrefix(pi.Text('f', 60), "3.14159265358979323846264338327950288419716939937510"))
}

func TestSinCos(t *testing.T) {
	prec := uint(128)
	pi := computePi(prec)
	twoPi := new(big.Float).SetPrec(prec).Add(pi, pi)

	x := new(big.Float).SetPrec(prec).SetFloat64(100.25)
	s, c := sinCos(x, pi, twoPi, prec)
	sf, _ := s.Float64()
	cf, _ := c.Float64()
	assert.InDelta(t, -0.2772828564548513, sf, 1e-12)
	assert.InDelta(t, 0.9607883312760612, cf, 1e-12)
}
