// Package align estimates the time offset between signals recorded by
// unsynchronized devices. The continuous estimator cross-correlates two sync
// axes resampled to a common rate; the discrete estimator slides one short
// scalar sequence inside another, used for repetition-count reconciliation.
package align

import (
	"math"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/processing"
)

// Signal is a 1-D time-indexed sequence, typically one device's sync axis.
type Signal struct {
	Timestamps []float64
	Values     []float64
}

// Options tunes the continuous shift estimator.
type Options struct {
	// CommonRate is the rate both signals are resampled to before
	// correlation. Defaults to 128 Hz.
	CommonRate float64
	// SecondDerivative differentiates both signals twice before
	// correlating, which emphasizes the sharp transients of deliberate
	// sync movements over slow posture drift.
	SecondDerivative bool
	// SGWindow is the Savitzky-Golay window used for differentiation.
	// Defaults to 15 samples.
	SGWindow int
}

func (o Options) withDefaults() Options {
	if o.CommonRate <= 0 {
		o.CommonRate = 128
	}
	if o.SGWindow <= 0 {
		o.SGWindow = 15
	}
	return o
}

// EstimateShift returns the offset in seconds to add to the target signal's
// timestamps so that it registers with the reference. Both signals are
// resampled to a common rate, optionally differentiated twice, normalized,
// and cross-correlated over every lag.
//
// Tie-break: when several lags reach the maximal correlation, the lag with
// the smallest magnitude wins; an exact tie between +k and -k resolves to
// -k. This is deterministic and independent of input ordering.
func EstimateShift(reference, target Signal, opts Options) (float64, error) {
	opts = opts.withDefaults()
	if len(reference.Values) < 2 {
		return 0, &repanalyzer.InsufficientDataError{Op: "estimate shift (reference)", Samples: len(reference.Values), Needed: 2}
	}
	if len(target.Values) < 2 {
		return 0, &repanalyzer.InsufficientDataError{Op: "estimate shift (target)", Samples: len(target.Values), Needed: 2}
	}

	refTS, refVals, err := processing.ResampleValues(reference.Timestamps, reference.Values, opts.CommonRate)
	if err != nil {
		return 0, err
	}
	tgtTS, tgtVals, err := processing.ResampleValues(target.Timestamps, target.Values, opts.CommonRate)
	if err != nil {
		return 0, err
	}

	if opts.SecondDerivative {
		refVals = processing.SecondDerivative(refTS, processing.NormalizeSignal(refVals), opts.SGWindow)
		tgtVals = processing.SecondDerivative(tgtTS, processing.NormalizeSignal(tgtVals), opts.SGWindow)
	}
	refVals = processing.NormalizeSignal(refVals)
	tgtVals = processing.NormalizeSignal(tgtVals)

	lag := bestLag(refVals, tgtVals)
	period := 1.0 / opts.CommonRate
	return float64(lag)*period + (refTS[0] - tgtTS[0]), nil
}

// bestLag scans the full cross-correlation. A positive lag means the target
// must move forward in time to match the reference.
func bestLag(ref, tgt []float64) int {
	best := math.Inf(-1)
	bestLag := 0
	for lag := -(len(tgt) - 1); lag < len(ref); lag++ {
		sum := 0.0
		for i := range ref {
			j := i - lag
			if j < 0 || j >= len(tgt) {
				continue
			}
			sum += ref[i] * tgt[j]
		}
		if sum > best || (sum == best && abs(lag) < abs(bestLag)) {
			best = sum
			bestLag = lag
		}
	}
	return bestLag
}

// EstimateShiftDiscrete aligns two short scalar sequences of possibly
// unequal length, e.g. per-repetition durations counted by two devices. Both
// sequences are standardized, then every placement of the shorter inside the
// longer is scored by sum of absolute differences; the offset with the
// minimal score wins. All placements are evaluated so the result is the
// global minimum under this metric. Equal lengths short-circuit to zero.
func EstimateShiftDiscrete(reference, target []float64) (int, error) {
	if len(reference) == 0 || len(target) == 0 {
		return 0, &repanalyzer.InsufficientDataError{Op: "discrete shift", Samples: 0, Needed: 1}
	}
	if len(reference) == len(target) {
		return 0, nil
	}

	long, short := reference, target
	if len(target) > len(reference) {
		long, short = target, reference
	}
	longN := processing.ZScore(long)
	shortN := processing.ZScore(short)

	bestOffset := 0
	bestScore := math.Inf(1)
	for offset := 0; offset+len(shortN) <= len(longN); offset++ {
		score := 0.0
		for i := range shortN {
			score += math.Abs(longN[offset+i] - shortN[i])
		}
		if score < bestScore {
			bestScore = score
			bestOffset = offset
		}
	}
	return bestOffset, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
