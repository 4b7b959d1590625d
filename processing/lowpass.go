// Package processing conditions raw sensor tables: low-pass filtering, gap
// filling, uniform resampling and signal normalization.
package processing

import (
	"math"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

type firstOrder struct {
	b0, b1 float64
	a1     float64
}

// butterworthSections designs a digital Butterworth low-pass as a cascade of
// second-order sections (plus one first-order section for odd orders) via the
// RBJ bilinear-transform recipes. Each section has unity DC gain.
func butterworthSections(cutoff, rate float64, order int) ([]biquad, *firstOrder) {
	w0 := 2 * math.Pi * cutoff / rate
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)

	pairs := order / 2
	sections := make([]biquad, 0, pairs)
	for k := 0; k < pairs; k++ {
		// Pole-pair quality factor for the k-th Butterworth section.
		q := 1.0 / (2.0 * math.Sin(math.Pi*float64(2*k+1)/float64(2*order)))
		alpha := sinw0 / (2 * q)
		a0 := 1 + alpha
		sections = append(sections, biquad{
			b0: (1 - cosw0) / 2 / a0,
			b1: (1 - cosw0) / a0,
			b2: (1 - cosw0) / 2 / a0,
			a1: -2 * cosw0 / a0,
			a2: (1 - alpha) / a0,
		})
	}

	var single *firstOrder
	if order%2 == 1 {
		t := math.Tan(w0 / 2)
		single = &firstOrder{
			b0: t / (1 + t),
			b1: t / (1 + t),
			a1: (t - 1) / (t + 1),
		}
	}
	return sections, single
}

func (s biquad) filter(x []float64) []float64 {
	y := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, v := range x {
		out := s.b0*v + s.b1*x1 + s.b2*x2 - s.a1*y1 - s.a2*y2
		x2, x1 = x1, v
		y2, y1 = y1, out
		y[i] = out
	}
	return y
}

func (s firstOrder) filter(x []float64) []float64 {
	y := make([]float64, len(x))
	var x1, y1 float64
	for i, v := range x {
		out := s.b0*v + s.b1*x1 - s.a1*y1
		x1, y1 = v, out
		y[i] = out
	}
	return y
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// onePass runs the full cascade once. The first sample is subtracted before
// filtering and added back afterwards, which removes the start-up transient
// for constant signals: a constant input comes out bit-exact.
func onePass(x []float64, sections []biquad, single *firstOrder) []float64 {
	offset := x[0]
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v - offset
	}
	for _, s := range sections {
		y = s.filter(y)
	}
	if single != nil {
		y = single.filter(y)
	}
	for i := range y {
		y[i] += offset
	}
	return y
}

// LowpassValues applies a zero-phase Butterworth low-pass to one signal:
// one forward pass, one reverse pass, so the effective order doubles and the
// phase delay cancels.
func LowpassValues(x []float64, cutoff float64, order int, rate float64) ([]float64, error) {
	if cutoff <= 0 {
		return nil, &repanalyzer.InvalidParameterError{Param: "cutoff", Reason: "must be positive"}
	}
	if cutoff >= rate/2 {
		return nil, &repanalyzer.InvalidParameterError{Param: "cutoff", Reason: "at or above Nyquist frequency"}
	}
	if order < 1 {
		return nil, &repanalyzer.InvalidParameterError{Param: "order", Reason: "must be at least 1"}
	}
	if len(x) < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "lowpass", Samples: len(x), Needed: 2}
	}

	sections, single := butterworthSections(cutoff, rate, order)
	y := onePass(x, sections, single)
	reverse(y)
	y = onePass(y, sections, single)
	reverse(y)
	return y, nil
}

// Lowpass filters every channel of the table, returning a new table with
// identical timestamps and channel set.
func Lowpass(t *timeseries.Table, cutoff float64, order int, rate float64) (*timeseries.Table, error) {
	out := t.Clone()
	for _, name := range out.Channels() {
		vals, err := out.Channel(name)
		if err != nil {
			return nil, err
		}
		filtered, err := LowpassValues(vals, cutoff, order, rate)
		if err != nil {
			return nil, err
		}
		if err := out.SetChannel(name, filtered); err != nil {
			return nil, err
		}
	}
	return out, nil
}
