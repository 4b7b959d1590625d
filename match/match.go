// Package match reconciles a segmented signal's repetition count against an
// independently counted reference device, producing inclusion masks used to
// drop repetitions that only one side observed.
package match

import (
	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/align"
)

// InclusionMask says which repetitions on each side survive reconciliation.
type InclusionMask struct {
	Segmented []bool
	Reference []bool
	// Offset is the index in the longer sequence where the shorter one was
	// placed. Zero when the counts already agree.
	Offset int
}

// Count returns the number of repetitions included on the segmented side.
func (m InclusionMask) Count() int {
	n := 0
	for _, ok := range m.Segmented {
		if ok {
			n++
		}
	}
	return n
}

// Reconcile matches per-repetition durations from the segmented signal
// against the reference device's durations. Equal counts are an identity
// match with no search. On a miscount the shorter sequence is slid inside
// the longer via the discrete cross-correlation estimator and only the
// aligned window of the longer side is kept, which encodes the assumption
// that miscounts happen at trial edges, not interleaved mid-set.
func Reconcile(segmented, reference []float64) (InclusionMask, error) {
	if len(segmented) == 0 {
		return InclusionMask{}, &repanalyzer.AlignmentAmbiguousError{Reason: "zero segmented repetitions"}
	}
	if len(reference) == 0 {
		return InclusionMask{}, &repanalyzer.AlignmentAmbiguousError{Reason: "zero reference repetitions"}
	}

	mask := InclusionMask{
		Segmented: allTrue(len(segmented)),
		Reference: allTrue(len(reference)),
	}
	if len(segmented) == len(reference) {
		return mask, nil
	}

	offset, err := align.EstimateShiftDiscrete(reference, segmented)
	if err != nil {
		return InclusionMask{}, err
	}
	mask.Offset = offset

	if len(segmented) > len(reference) {
		window(mask.Segmented, offset, len(reference))
	} else {
		window(mask.Reference, offset, len(segmented))
	}
	return mask, nil
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

// window keeps [offset, offset+size) and clears everything else.
func window(mask []bool, offset, size int) {
	for i := range mask {
		mask[i] = i >= offset && i < offset+size
	}
}
