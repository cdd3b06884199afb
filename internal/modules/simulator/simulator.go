// Package simulator executes native-basis circuits on a local statevector.
package simulator

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/modules/circuit"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"
)

// sampleCheckInterval is how many shots are drawn between context checks
const sampleCheckInterval = 4096

// Identifier is the backend name reported by the local simulator
const Identifier = "local_simulator"

// Sampling modes
const (
	// ModeExact apportions shots to the ideal distribution, no randomness
	ModeExact = "exact"
	// ModeSampled draws every shot from the ideal distribution
	ModeSampled = "sampled"
)

// Config configures the simulator
type Config struct {
	Mode string
	// Seed feeds the sampler; 0 seeds from the clock
	Seed uint64
}

// Simulator is the local ExecutionAdapter
type Simulator struct {
	cfg Config
	log zerolog.Logger
}

// New creates a local simulator. Unknown modes fall back to sampled.
func New(log zerolog.Logger, cfg Config) *Simulator {
	if cfg.Mode != ModeExact {
		cfg.Mode = ModeSampled
	}
	return &Simulator{
		cfg: cfg,
		log: log.With().Str("component", "simulator").Logger(),
	}
}

// Identifier implements domain.ExecutionAdapter
func (s *Simulator) Identifier() string {
	return Identifier
}

// Mode returns the active sampling mode
func (s *Simulator) Mode() string {
	return s.cfg.Mode
}

// Execute implements domain.ExecutionAdapter
func (s *Simulator) Execute(ctx context.Context, spec domain.CircuitSpec, shots int) (domain.MeasurementCounts, error) {
	if err := domain.CheckShots("simulator.execute", shots); err != nil {
		return nil, err
	}

	start := time.Now()
	probs, err := Evolve(ctx, spec)
	if err != nil {
		return nil, timeoutError(err)
	}

	var indexed []int
	if s.cfg.Mode == ModeExact {
		indexed = Apportion(probs, shots)
	} else if indexed, err = s.sample(ctx, probs, shots); err != nil {
		return nil, timeoutError(err)
	}

	counts := make(domain.MeasurementCounts)
	for i, c := range indexed {
		if c > 0 {
			counts[circuit.BitString(i, spec.Qubits)] = c
		}
	}

	s.log.Debug().
		Int("gates", len(spec.Gates)).
		Int("shots", shots).
		Str("mode", s.cfg.Mode).
		Dur("duration", time.Since(start)).
		Msg("Simulated circuit")

	return counts, nil
}

// Apportion distributes shots over probs by largest remainder. Remainder ties go
// to the lower index, so the result is fully deterministic.
func Apportion(probs []float64, shots int) []int {
	counts := make([]int, len(probs))
	type remainder struct {
		index int
		frac  float64
	}
	rems := make([]remainder, len(probs))
	assigned := 0
	for i, p := range probs {
		exact := p * float64(shots)
		whole := math.Floor(exact)
		counts[i] = int(whole)
		assigned += counts[i]
		rems[i] = remainder{index: i, frac: exact - whole}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < shots && len(rems) > 0; i++ {
		counts[rems[i%len(rems)].index]++
		assigned++
	}
	return counts
}

func (s *Simulator) sample(ctx context.Context, probs []float64, shots int) ([]int, error) {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	dist := distuv.NewCategorical(probs, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	counts := make([]int, len(probs))
	for i := 0; i < shots; i++ {
		if i%sampleCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		counts[int(dist.Rand())]++
	}
	return counts, nil
}

// timeoutError maps an expired deadline to ExecutionTimeout
func timeoutError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindExecutionTimeout, "simulator.execute", err)
	}
	return err
}
