package segment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// repWave samples sin(2*pi*t/4) at 10 Hz over [0, duration]: one repetition
// every 4 seconds with peaks at t = 1, 5, 9, ...
func repWave(duration float64) []float64 {
	n := int(duration*10) + 1
	sig := make([]float64, n)
	for i := range sig {
		sig[i] = math.Sin(2 * math.Pi * float64(i) / 10 / 4)
	}
	return sig
}

func TestPeakDetectionFivePeaksFourIntervals(t *testing.T) {
	sig := repWave(18) // peaks at t=1,5,9,13,17

	intervals, err := PeakDetection(sig, 10, Options{
		Prominence:     0.2,
		MinDurationS:   1.5,
		StdDevFraction: 0.7,
	})
	require.NoError(t, err)
	require.Len(t, intervals, 4,
		"five peaks bound four repetitions; the edge stubs fail the duration check")

	for i, iv := range intervals {
		assert.Equal(t, 10+40*i, iv.Start)
		assert.Equal(t, 50+40*i, iv.End)
	}
}

func TestPeakDetectionRejectsFlatInterval(t *testing.T) {
	// Two repetitions followed by 24 s of stillness: the trailing candidate
	// interval is long enough but nearly flat, so the deviation check drops it.
	sig := repWave(8)
	for i := 0; i < 240; i++ {
		sig = append(sig, 0)
	}

	intervals, err := PeakDetection(sig, 10, Options{
		Prominence:     0.2,
		MinDurationS:   1.5,
		StdDevFraction: 0.8,
	})
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Equal(t, Interval{Start: 10, End: 50}, intervals[0])
}

func TestPeakDetectionZeroPeaksIsEmptyNotError(t *testing.T) {
	flat := make([]float64, 100)
	intervals, err := PeakDetection(flat, 10, Options{Prominence: 0.2})
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestPeakDetectionTooShort(t *testing.T) {
	var insufficient *repanalyzer.InsufficientDataError
	_, err := PeakDetection([]float64{1}, 10, Options{})
	require.ErrorAs(t, err, &insufficient)
}

func TestFindPeaksPlateau(t *testing.T) {
	sig := []float64{0, 1, 2, 2, 2, 1, 0}
	peaks := FindPeaks(sig, 0.5, 0)
	assert.Equal(t, []int{3}, peaks, "plateau counts once, at its midpoint")
}

func TestFindPeaksMinDistanceKeepsTaller(t *testing.T) {
	sig := []float64{0, 3, 0, 5, 0, 1, 0}
	peaks := FindPeaks(sig, 0.5, 3)
	assert.Equal(t, []int{3}, peaks)
}

func TestAnnotateMarksIntervals(t *testing.T) {
	ts := make([]float64, 10)
	for i := range ts {
		ts[i] = float64(i)
	}
	table, err := timeseries.New(ts, 1)
	require.NoError(t, err)
	require.NoError(t, table.AddChannel("x", make([]float64, 10)))

	require.NoError(t, Annotate(table, []Interval{{Start: 2, End: 5}, {Start: 7, End: 9}}))
	want := []int{-1, -1, 0, 0, 0, -1, -1, 1, 1, -1}
	assert.Equal(t, want, table.Reps)
}

func TestDurations(t *testing.T) {
	got := Durations([]Interval{{Start: 0, End: 40}, {Start: 40, End: 70}}, 10)
	assert.Equal(t, []float64{4, 3}, got)
}
