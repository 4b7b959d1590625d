package segment

import (
	"fmt"

	"github.com/lvlath/go/dtw"
	"gonum.org/v1/gonum/stat"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

// ExemplarOptions parameterizes exemplar-based segmentation.
type ExemplarOptions struct {
	// MinDurationS rejects candidate intervals shorter than this.
	MinDurationS float64
	// StdDevFraction rejects near-flat candidate intervals, as in Options.
	StdDevFraction float64
	// Window constrains the DTW alignment band. Zero means unconstrained.
	Window int
}

// OnExemplar segments by scoring every peak-bounded candidate interval
// against an exemplar repetition with dynamic time warping. It returns the
// surviving candidates together with their DTW costs; callers typically
// threshold on cost relative to the cost distribution.
func OnExemplar(sig []float64, rate float64, exemplar []float64, opts ExemplarOptions) ([]Interval, []float64, error) {
	if len(sig) < 2 {
		return nil, nil, &repanalyzer.InsufficientDataError{Op: "segment on exemplar", Samples: len(sig), Needed: 2}
	}
	if len(exemplar) < 2 {
		return nil, nil, &repanalyzer.InsufficientDataError{Op: "segment on exemplar (exemplar)", Samples: len(exemplar), Needed: 2}
	}

	peaks := findLocalMaxima(sig)
	boundaries := append([]int{0}, peaks...)
	boundaries = append(boundaries, len(sig)-1)

	window := opts.Window
	if window <= 0 {
		window = len(sig)
	}
	dtwOpts := &dtw.Options{
		Window:     window,
		MemoryMode: dtw.FullMatrix,
	}

	globalStd := stat.StdDev(sig, nil)
	var candidates []Interval
	var costs []float64
	for i := 1; i < len(boundaries); i++ {
		iv := Interval{Start: boundaries[i-1], End: boundaries[i]}
		segOpts := Options{MinDurationS: opts.MinDurationS, StdDevFraction: opts.StdDevFraction}
		if !validInterval(sig, iv, rate, globalStd, segOpts) {
			continue
		}
		cost, _, err := dtw.DTW(exemplar, sig[iv.Start:iv.End], dtwOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("dtw cost for interval %d..%d: %w", iv.Start, iv.End, err)
		}
		candidates = append(candidates, iv)
		costs = append(costs, cost)
	}
	return candidates, costs, nil
}
