package processing

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/SeanJxie/polygo"
	"github.com/openacid/slimarray/polyfit"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// GapFillMethod selects how inserted samples are interpolated.
type GapFillMethod string

const (
	// GapFillLinear interpolates linearly between the gap's neighbours.
	GapFillLinear GapFillMethod = "linear"
	// GapFillPolynomial fits a cubic over the samples surrounding the gap.
	GapFillPolynomial GapFillMethod = "polynomial"
)

// padding samples taken on each side of a gap for the polynomial fit
const polyFitContext = 8

// FillGaps detects runs where the delta between consecutive timestamps
// exceeds 1.5 nominal periods and inserts interpolated samples restoring the
// nominal grid. Gap counts and sizes are logged as a warning since large
// gaps usually indicate a device dropout worth inspecting.
func FillGaps(t *timeseries.Table, nominalRate float64, method GapFillMethod) (*timeseries.Table, error) {
	if nominalRate <= 0 {
		return nil, &repanalyzer.InvalidParameterError{Param: "nominalRate", Reason: "must be positive"}
	}
	if t.Len() < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "fill gaps", Samples: t.Len(), Needed: 2}
	}
	if method != GapFillLinear && method != GapFillPolynomial {
		return nil, &repanalyzer.InvalidParameterError{Param: "method", Reason: fmt.Sprintf("unknown gap fill method %q", method)}
	}

	period := 1.0 / nominalRate
	threshold := 1.5 * period

	type gap struct {
		after   int // index of sample preceding the gap
		missing int
	}
	var gaps []gap
	total := 0
	for i := 1; i < t.Len(); i++ {
		delta := t.Timestamps[i] - t.Timestamps[i-1]
		if delta > threshold {
			missing := int(math.Round(delta*nominalRate)) - 1
			if missing < 1 {
				missing = 1
			}
			gaps = append(gaps, gap{after: i - 1, missing: missing})
			total += missing
		}
	}
	if len(gaps) == 0 {
		return t, nil
	}
	slog.Warn("filling sampling gaps",
		"gaps", len(gaps),
		"inserted_samples", total,
		"nominal_rate_hz", nominalRate,
	)

	newLen := t.Len() + total
	timestamps := make([]float64, 0, newLen)
	inserted := make([]bool, 0, newLen) // true for synthetic samples
	srcIdx := make([]int, 0, newLen)    // original index for copied samples

	g := 0
	for i := 0; i < t.Len(); i++ {
		timestamps = append(timestamps, t.Timestamps[i])
		inserted = append(inserted, false)
		srcIdx = append(srcIdx, i)
		if g < len(gaps) && gaps[g].after == i {
			step := (t.Timestamps[i+1] - t.Timestamps[i]) / float64(gaps[g].missing+1)
			for k := 1; k <= gaps[g].missing; k++ {
				timestamps = append(timestamps, t.Timestamps[i]+float64(k)*step)
				inserted = append(inserted, true)
				srcIdx = append(srcIdx, -1)
			}
			g++
		}
	}

	out, err := timeseries.New(timestamps, nominalRate)
	if err != nil {
		return nil, fmt.Errorf("fill gaps: %w", err)
	}
	for _, name := range t.Channels() {
		src, err := t.Channel(name)
		if err != nil {
			return nil, err
		}
		vals := make([]float64, len(timestamps))
		for j := range timestamps {
			if !inserted[j] {
				vals[j] = src[srcIdx[j]]
			}
		}
		for j := range timestamps {
			if !inserted[j] {
				continue
			}
			vals[j] = interpolateAt(t, src, timestamps[j], method)
		}
		if err := out.AddChannel(name, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func interpolateAt(t *timeseries.Table, src []float64, ts float64, method GapFillMethod) float64 {
	right := t.ClosestIndex(ts)
	if t.Timestamps[right] < ts && right < len(src)-1 {
		right++
	}
	left := right - 1
	if left < 0 {
		left = 0
		right = 1
	}

	if method == GapFillPolynomial {
		lo := left - polyFitContext + 1
		if lo < 0 {
			lo = 0
		}
		hi := right + polyFitContext
		if hi > len(src) {
			hi = len(src)
		}
		if hi-lo >= 4 {
			fit := polyfit.NewFit(t.Timestamps[lo:hi], src[lo:hi], 3)
			poly, err := polygo.NewRealPolynomial(fit.Solve())
			if err == nil {
				return poly.At(ts)
			}
		}
		// Too little context for a cubic, fall through to linear.
	}

	t0, t1 := t.Timestamps[left], t.Timestamps[right]
	if t1 == t0 {
		return src[left]
	}
	frac := (ts - t0) / (t1 - t0)
	return src[left] + frac*(src[right]-src[left])
}
