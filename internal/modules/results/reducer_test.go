package results

import (
	"errors"
	"testing"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_RanksByProbability(t *testing.T) {
	counts := domain.MeasurementCounts{
		"0000": 10,
		"0001": 490,
		"0010": 477,
		"1111": 47,
	}

	ranked, err := Reduce(counts, 1024)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	assert.Equal(t, "0001", ranked[0].BitString)
	assert.Equal(t, "0010", ranked[1].BitString)
	assert.Equal(t, "1111", ranked[2].BitString)
	assert.Equal(t, "0000", ranked[3].BitString)
	assert.InDelta(t, 490.0/1024, ranked[0].Probability, 1e-12)
	assert.InDelta(t, 1.0, TotalProbability(ranked), 1e-9)
}

func TestReduce_TiesAreLexicographic(t *testing.T) {
	counts := domain.MeasurementCounts{"0010": 480, "0001": 480, "1000": 64}

	ranked, err := Reduce(counts, 1024)
	require.NoError(t, err)

	assert.Equal(t, []string{"0001", "0010", "1000"},
		[]string{ranked[0].BitString, ranked[1].BitString, ranked[2].BitString})
}

func TestReduce_InvalidCounts(t *testing.T) {
	tests := []struct {
		name   string
		counts domain.MeasurementCounts
		shots  int
	}{
		{"sum mismatch", domain.MeasurementCounts{"0001": 600, "0010": 400}, 1024},
		{"zero shots", domain.MeasurementCounts{}, 0},
		{"negative count", domain.MeasurementCounts{"0001": 1030, "0010": -6}, 1024},
		{"mixed widths", domain.MeasurementCounts{"0001": 512, "010": 512}, 1024},
		{"not binary", domain.MeasurementCounts{"00a1": 1024}, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(tt.counts, tt.shots)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidCounts))
		})
	}
}

func TestCheckWidth(t *testing.T) {
	require.NoError(t, CheckWidth(domain.MeasurementCounts{"0001": 3, "1110": 5}, 4))
	require.NoError(t, CheckWidth(domain.MeasurementCounts{}, 4))

	err := CheckWidth(domain.MeasurementCounts{"0001": 3, "1": 5}, 4)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidCounts, domain.KindOf(err))

	err = CheckWidth(domain.MeasurementCounts{"00001": 8}, 4)
	assert.Equal(t, domain.KindInvalidCounts, domain.KindOf(err))
}

func TestSuccessRate(t *testing.T) {
	ranked, err := Reduce(domain.MeasurementCounts{"0001": 490, "0010": 477, "0000": 57}, 1024)
	require.NoError(t, err)

	assert.InDelta(t, 967.0/1024, SuccessRate(ranked, []string{"0001", "0010"}), 1e-12)
	assert.Zero(t, SuccessRate(ranked, []string{"1111"}))
}

func TestTop(t *testing.T) {
	ranked := domain.RankedResult{{BitString: "01"}, {BitString: "10"}, {BitString: "00"}}

	assert.Len(t, Top(ranked, 2), 2)
	assert.Len(t, Top(ranked, 8), 3)
	assert.Len(t, Top(ranked, -1), 3)
}
