// Package results reduces raw measurement counts into a ranked distribution.
package results

import (
	"fmt"
	"sort"

	"github.com/okushigue/rzqr/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Reduce converts counts into probabilities sorted by probability descending,
// ties broken by ascending bit-string. The counts must add up to shots.
func Reduce(counts domain.MeasurementCounts, shots int) (domain.RankedResult, error) {
	if shots <= 0 {
		return nil, domain.NewError(domain.KindInvalidCounts, "results.reduce",
			fmt.Errorf("shots must be positive, got %d", shots))
	}

	width := -1
	total := 0
	ranked := make(domain.RankedResult, 0, len(counts))
	for bits, c := range counts {
		if c < 0 {
			return nil, domain.NewError(domain.KindInvalidCounts, "results.reduce",
				fmt.Errorf("negative count %d for %q", c, bits))
		}
		if !isBitString(bits) {
			return nil, domain.NewError(domain.KindInvalidCounts, "results.reduce",
				fmt.Errorf("%q is not a bit-string", bits))
		}
		if width >= 0 && len(bits) != width {
			return nil, domain.NewError(domain.KindInvalidCounts, "results.reduce",
				fmt.Errorf("bit-string %q has length %d, expected %d", bits, len(bits), width))
		}
		width = len(bits)
		total += c
		ranked = append(ranked, domain.Outcome{
			BitString:   bits,
			Count:       c,
			Probability: float64(c) / float64(shots),
		})
	}
	if total != shots {
		return nil, domain.NewError(domain.KindInvalidCounts, "results.reduce",
			fmt.Errorf("counts sum to %d, expected %d shots", total, shots))
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].BitString < ranked[j].BitString
	})
	return ranked, nil
}

// CheckWidth rejects counts whose bit-strings are not qubits long
func CheckWidth(counts domain.MeasurementCounts, qubits int) error {
	for bits := range counts {
		if len(bits) != qubits {
			return domain.NewError(domain.KindInvalidCounts, "results.check_width",
				fmt.Errorf("bit-string %q has length %d, circuit measures %d qubits", bits, len(bits), qubits))
		}
	}
	return nil
}

// SuccessRate returns the probability mass on the given states
func SuccessRate(ranked domain.RankedResult, targets []string) float64 {
	marked := make(map[string]bool, len(targets))
	for _, t := range targets {
		marked[t] = true
	}
	hits := make([]float64, 0, len(targets))
	for _, o := range ranked {
		if marked[o.BitString] {
			hits = append(hits, o.Probability)
		}
	}
	return floats.Sum(hits)
}

// Top returns at most n leading outcomes
func Top(ranked domain.RankedResult, n int) domain.RankedResult {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// TotalProbability sums every outcome's probability
func TotalProbability(ranked domain.RankedResult) float64 {
	p := make([]float64, len(ranked))
	for i, o := range ranked {
		p[i] = o.Probability
	}
	return floats.Sum(p)
}

func isBitString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}
