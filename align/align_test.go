package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

// pulse builds a signal with a Gaussian bump centered at c seconds.
func pulse(rate, duration, c float64) Signal {
	n := int(duration * rate)
	s := Signal{
		Timestamps: make([]float64, n),
		Values:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ts := float64(i) / rate
		s.Timestamps[i] = ts
		s.Values[i] = math.Exp(-(ts - c) * (ts - c) / (2 * 0.1 * 0.1))
	}
	return s
}

func TestEstimateShiftKnownOffset(t *testing.T) {
	const rate = 128.0
	ref := pulse(rate, 8, 4.0)
	target := pulse(rate, 8, 2.0)

	shift, err := EstimateShift(ref, target, Options{CommonRate: rate})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, shift, 1.5/rate,
		"target events at t=2 must shift to the reference's t=4")
}

func TestEstimateShiftDifferentRates(t *testing.T) {
	ref := pulse(128, 8, 5.0)
	target := pulse(30, 8, 3.5)

	shift, err := EstimateShift(ref, target, Options{CommonRate: 128})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, shift, 2.0/30)
}

func TestEstimateShiftSecondDerivative(t *testing.T) {
	const rate = 128.0
	ref := pulse(rate, 8, 4.0)
	target := pulse(rate, 8, 2.5)

	shift, err := EstimateShift(ref, target, Options{CommonRate: rate, SecondDerivative: true})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, shift, 3.0/rate)
}

func TestEstimateShiftStartTimeDifference(t *testing.T) {
	const rate = 128.0
	ref := pulse(rate, 8, 4.0)
	target := pulse(rate, 8, 4.0)
	// Same shape, but the target's clock starts 10s later.
	for i := range target.Timestamps {
		target.Timestamps[i] += 10
	}
	shift, err := EstimateShift(ref, target, Options{CommonRate: rate})
	require.NoError(t, err)
	assert.InDelta(t, -10.0, shift, 1.5/rate)
}

func TestEstimateShiftTooShort(t *testing.T) {
	var insufficient *repanalyzer.InsufficientDataError
	_, err := EstimateShift(Signal{Timestamps: []float64{0}, Values: []float64{1}},
		pulse(128, 2, 1), Options{})
	require.ErrorAs(t, err, &insufficient)
}

func TestEstimateShiftDiscrete(t *testing.T) {
	offset, err := EstimateShiftDiscrete([]float64{1, 2, 3, 4, 5}, []float64{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 1, offset)
}

func TestEstimateShiftDiscreteEqualLengths(t *testing.T) {
	offset, err := EstimateShiftDiscrete([]float64{9, 1, 7}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, offset, "equal lengths skip the search entirely")
}

func TestEstimateShiftDiscreteLongerTarget(t *testing.T) {
	// The shorter side is always slid inside the longer, whichever argument
	// it arrives as.
	offset, err := EstimateShiftDiscrete([]float64{3, 4, 8}, []float64{1, 2, 3, 4, 8, 16})
	require.NoError(t, err)
	assert.Equal(t, 2, offset)
}

func TestEstimateShiftDiscreteEmpty(t *testing.T) {
	var insufficient *repanalyzer.InsufficientDataError
	_, err := EstimateShiftDiscrete(nil, []float64{1})
	require.ErrorAs(t, err, &insufficient)
}
