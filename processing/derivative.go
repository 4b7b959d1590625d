package processing

import (
	"github.com/pconstantinou/savitzkygolay"

	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// Gradient computes the sample-wise derivative with central differences,
// matching numpy's gradient: one-sided at the edges, central everywhere else.
func Gradient(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = values[1] - values[0]
	out[n-1] = values[n-1] - values[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (values[i+1] - values[i-1]) / 2
	}
	return out
}

// SecondDerivative returns the twice-differentiated signal. When the signal
// is long enough a Savitzky-Golay filter computes a smoothed derivative;
// shorter signals fall back to repeated central differences.
func SecondDerivative(timestamps, values []float64, window int) []float64 {
	if window%2 == 0 {
		window++
	}
	if len(values) > window && window >= 5 {
		filter, err := savitzkygolay.NewFilter(window, 2, 3)
		if err == nil {
			if out, err := filter.Process(values, timestamps); err == nil {
				return out
			}
		}
	}
	return Gradient(Gradient(values))
}

// Acceleration derives a per-channel second derivative table from a position
// table, e.g. skeleton joint positions to joint accelerations.
func Acceleration(t *timeseries.Table, window int) (*timeseries.Table, error) {
	out := t.Clone()
	for _, name := range out.Channels() {
		vals, err := out.Channel(name)
		if err != nil {
			return nil, err
		}
		if err := out.SetChannel(name, SecondDerivative(out.Timestamps, vals, window)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
