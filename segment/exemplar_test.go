package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnExemplarScoresCandidates(t *testing.T) {
	sig := repWave(18)
	exemplar := sig[10:50] // one clean repetition

	intervals, costs, err := OnExemplar(sig, 10, exemplar, ExemplarOptions{
		MinDurationS:   1.5,
		StdDevFraction: 0.7,
	})
	require.NoError(t, err)
	require.Len(t, intervals, 4)
	require.Len(t, costs, 4)

	// The first candidate is the exemplar itself, so its warping cost
	// vanishes exactly.
	assert.Zero(t, costs[0])

	// Every candidate repeats the exemplar's shape, so all costs stay small
	// relative to the exemplar's own span.
	for i, c := range costs {
		assert.Less(t, c, 4.0, "interval %d", i)
	}
}

func TestOnExemplarDistinguishesShapes(t *testing.T) {
	sig := repWave(18)
	// A sawtooth of the same length as a repetition.
	saw := make([]float64, 40)
	for i := range saw {
		saw[i] = 3*float64(i)/39 - 1.5
	}

	_, matching, err := OnExemplar(sig, 10, sig[10:50], ExemplarOptions{
		MinDurationS:   1.5,
		StdDevFraction: 0.7,
	})
	require.NoError(t, err)
	_, mismatched, err := OnExemplar(sig, 10, saw, ExemplarOptions{
		MinDurationS:   1.5,
		StdDevFraction: 0.7,
	})
	require.NoError(t, err)

	for i := range matching {
		assert.Less(t, matching[i], mismatched[i],
			"a true repetition exemplar must score better than a sawtooth")
	}
}

func TestOnExemplarValidation(t *testing.T) {
	_, _, err := OnExemplar([]float64{1}, 10, []float64{1, 2}, ExemplarOptions{})
	require.Error(t, err)
	_, _, err = OnExemplar([]float64{1, 2, 3}, 10, []float64{1}, ExemplarOptions{})
	require.Error(t, err)
}
