package processing

import (
	"sort"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// ResampleValues linearly interpolates a time-indexed signal onto a uniform
// grid at targetRate spanning the original time range. Values outside the
// original range are clamped to the edge samples.
func ResampleValues(timestamps, values []float64, targetRate float64) (outTS, outVals []float64, err error) {
	if targetRate <= 0 {
		return nil, nil, &repanalyzer.InvalidParameterError{Param: "targetRate", Reason: "must be positive"}
	}
	if len(timestamps) < 2 {
		return nil, nil, &repanalyzer.InsufficientDataError{Op: "resample", Samples: len(timestamps), Needed: 2}
	}

	period := 1.0 / targetRate
	start, end := timestamps[0], timestamps[len(timestamps)-1]
	n := int((end-start)/period) + 1
	outTS = make([]float64, n)
	outVals = make([]float64, n)
	for i := 0; i < n; i++ {
		ts := start + float64(i)*period
		outTS[i] = ts
		outVals[i] = InterpolateLinear(timestamps, values, ts)
	}
	return outTS, outVals, nil
}

// Resample builds a new table with every channel interpolated onto a uniform
// grid at targetRate.
func Resample(t *timeseries.Table, targetRate float64) (*timeseries.Table, error) {
	if t.Len() < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "resample", Samples: t.Len(), Needed: 2}
	}
	first, err := t.Channel(t.Channels()[0])
	if err != nil {
		return nil, err
	}
	outTS, _, err := ResampleValues(t.Timestamps, first, targetRate)
	if err != nil {
		return nil, err
	}
	out, err := timeseries.New(outTS, targetRate)
	if err != nil {
		return nil, err
	}
	for _, name := range t.Channels() {
		vals, err := t.Channel(name)
		if err != nil {
			return nil, err
		}
		resampled := make([]float64, len(outTS))
		for i, ts := range outTS {
			resampled[i] = InterpolateLinear(t.Timestamps, vals, ts)
		}
		if err := out.AddChannel(name, resampled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// InterpolateLinear evaluates the piecewise-linear signal defined by
// (timestamps, values) at ts, clamping outside the covered range.
func InterpolateLinear(timestamps, values []float64, ts float64) float64 {
	if ts <= timestamps[0] {
		return values[0]
	}
	last := len(timestamps) - 1
	if ts >= timestamps[last] {
		return values[last]
	}
	i := sort.SearchFloat64s(timestamps, ts)
	t0, t1 := timestamps[i-1], timestamps[i]
	if t1 == t0 {
		return values[i-1]
	}
	frac := (ts - t0) / (t1 - t0)
	return values[i-1] + frac*(values[i]-values[i-1])
}
