package processing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// constant-signal guard for normalization denominators
const epsVariance = 1e-12

// NormalizeSignal returns the signal shifted to zero mean and scaled into
// [-1, 1] by its maximum absolute deviation. A constant signal comes back as
// all zeros rather than dividing by zero.
func NormalizeSignal(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	mean := stat.Mean(values, nil)
	maxAbs := 0.0
	for i, v := range values {
		out[i] = v - mean
		if a := math.Abs(out[i]); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs < epsVariance {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	floats.Scale(1.0/maxAbs, out)
	return out
}

// ZScore standardizes the signal to zero mean and unit standard deviation,
// returning all zeros for a constant input.
func ZScore(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	mean, std := stat.MeanStdDev(values, nil)
	if std < epsVariance || math.IsNaN(std) {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}
