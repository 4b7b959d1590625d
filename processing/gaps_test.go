package processing

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

func newTestTable(t *testing.T, ts []float64, rate float64, channels map[string][]float64) *timeseries.Table {
	t.Helper()
	table, err := timeseries.New(ts, rate)
	require.NoError(t, err)
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		require.NoError(t, table.AddChannel(name, channels[name]))
	}
	return table
}

func TestFillGapsRestoresNominalGrid(t *testing.T) {
	// 10 Hz grid with three samples dropped between 0.2s and 0.6s.
	ts := []float64{0, 0.1, 0.2, 0.6, 0.7, 0.8}
	vals := make([]float64, len(ts))
	for i, v := range ts {
		vals[i] = 2 * v
	}
	table := newTestTable(t, ts, 10, map[string][]float64{"x": vals})

	out, err := FillGaps(table, 10, GapFillLinear)
	require.NoError(t, err)
	require.Equal(t, 9, out.Len(), "3 samples inserted")

	for i := 1; i < out.Len(); i++ {
		assert.InDelta(t, 0.1, out.Timestamps[i]-out.Timestamps[i-1], 1e-9)
	}
	filled, err := out.Channel("x")
	require.NoError(t, err)
	for i, ts := range out.Timestamps {
		assert.InDelta(t, 2*ts, filled[i], 1e-9, "linear data must interpolate exactly")
	}
}

func TestFillGapsNoGapsReturnsInput(t *testing.T) {
	ts := []float64{0, 0.1, 0.2, 0.3}
	table := newTestTable(t, ts, 10, map[string][]float64{"x": {1, 2, 3, 4}})
	out, err := FillGaps(table, 10, GapFillLinear)
	require.NoError(t, err)
	assert.Same(t, table, out)
}

func TestFillGapsPolynomialRecoversCubic(t *testing.T) {
	var ts, vals []float64
	cubic := func(x float64) float64 { return x*x*x - 2*x }
	for i := 0; i <= 30; i++ {
		x := float64(i) / 10
		if i >= 14 && i <= 16 {
			continue // dropped frames
		}
		ts = append(ts, x)
		vals = append(vals, cubic(x))
	}
	table := newTestTable(t, ts, 10, map[string][]float64{"x": vals})

	out, err := FillGaps(table, 10, GapFillPolynomial)
	require.NoError(t, err)
	require.Equal(t, 31, out.Len())

	filled, err := out.Channel("x")
	require.NoError(t, err)
	for i, ts := range out.Timestamps {
		assert.InDelta(t, cubic(ts), filled[i], 1e-6)
	}
}

func TestFillGapsValidation(t *testing.T) {
	table := newTestTable(t, []float64{0, 0.1}, 10, map[string][]float64{"x": {1, 2}})

	var invalid *repanalyzer.InvalidParameterError
	_, err := FillGaps(table, 0, GapFillLinear)
	require.ErrorAs(t, err, &invalid)

	_, err = FillGaps(table, 10, GapFillMethod("spline"))
	require.ErrorAs(t, err, &invalid)

	short := newTestTable(t, []float64{0}, 10, map[string][]float64{"x": {1}})
	var insufficient *repanalyzer.InsufficientDataError
	_, err = FillGaps(short, 10, GapFillLinear)
	require.ErrorAs(t, err, &insufficient)
}
