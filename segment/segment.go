package segment

import (
	"gonum.org/v1/gonum/stat"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// Interval is one candidate or accepted repetition, a half-open [Start, End)
// range of sample indices.
type Interval struct {
	Start int
	End   int
}

// Options parameterizes peak-based repetition segmentation.
type Options struct {
	// Prominence is the minimum height a peak must rise above its
	// surroundings to count as a repetition boundary.
	Prominence float64
	// MinPeakSpacingS is the minimum time between accepted peaks.
	MinPeakSpacingS float64
	// MinDurationS rejects candidate intervals shorter than this.
	MinDurationS float64
	// StdDevFraction rejects candidate intervals whose standard deviation
	// falls below this fraction of the signal's global standard deviation:
	// a near-flat interval means no real movement happened there.
	StdDevFraction float64
}

// PeakDetection segments a 1-D motion signal into repetition intervals.
// Local maxima above the prominence threshold become boundary candidates,
// together with the first and last sample; candidates between adjacent
// boundaries are validated by duration and by standard deviation relative
// to the whole signal. Rejected intervals are dropped entirely, never
// merged into neighbours. With zero peaks the result is empty, which the
// caller must treat as an unusable trial rather than an error here.
func PeakDetection(sig []float64, rate float64, opts Options) ([]Interval, error) {
	if len(sig) < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "segment", Samples: len(sig), Needed: 2}
	}

	minDistance := int(opts.MinPeakSpacingS * rate)
	peaks := FindPeaks(sig, opts.Prominence, minDistance)
	if len(peaks) == 0 {
		return nil, nil
	}

	boundaries := make([]int, 0, len(peaks)+2)
	if peaks[0] != 0 {
		boundaries = append(boundaries, 0)
	}
	boundaries = append(boundaries, peaks...)
	if peaks[len(peaks)-1] != len(sig)-1 {
		boundaries = append(boundaries, len(sig)-1)
	}

	globalStd := stat.StdDev(sig, nil)
	var accepted []Interval
	for i := 1; i < len(boundaries); i++ {
		iv := Interval{Start: boundaries[i-1], End: boundaries[i]}
		if !validInterval(sig, iv, rate, globalStd, opts) {
			continue
		}
		accepted = append(accepted, iv)
	}
	return accepted, nil
}

func validInterval(sig []float64, iv Interval, rate, globalStd float64, opts Options) bool {
	n := iv.End - iv.Start
	if n < 2 {
		return false
	}
	if float64(n)/rate < opts.MinDurationS {
		return false
	}
	std := stat.StdDev(sig[iv.Start:iv.End], nil)
	return std >= opts.StdDevFraction*globalStd
}

// Annotate writes the repetition index column onto the table: samples inside
// the k-th accepted interval get index k, all others the unassigned
// sentinel. Intervals must be in time order, which PeakDetection guarantees.
func Annotate(t *timeseries.Table, intervals []Interval) error {
	reps := make([]int, t.Len())
	for i := range reps {
		reps[i] = timeseries.Unassigned
	}
	for k, iv := range intervals {
		for i := iv.Start; i < iv.End && i < len(reps); i++ {
			reps[i] = k
		}
	}
	return t.Annotate(reps)
}

// IntervalTimes converts sample-index intervals into [start, end) second
// pairs on the table's timeline, for propagating one device's segmentation
// onto tables with different sampling.
func IntervalTimes(t *timeseries.Table, intervals []Interval) (starts, ends []float64) {
	starts = make([]float64, len(intervals))
	ends = make([]float64, len(intervals))
	for i, iv := range intervals {
		starts[i] = t.Timestamps[iv.Start]
		ends[i] = t.Timestamps[iv.End]
	}
	return starts, ends
}

// Durations returns each interval's length in seconds at the given rate.
func Durations(intervals []Interval, rate float64) []float64 {
	out := make([]float64, len(intervals))
	for i, iv := range intervals {
		out[i] = float64(iv.End-iv.Start) / rate
	}
	return out
}
