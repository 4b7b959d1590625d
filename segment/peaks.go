// Package segment finds repetition boundaries in a primary motion signal and
// turns them into per-sample repetition annotations.
package segment

import "sort"

// findLocalMaxima returns indices of samples strictly greater than both
// neighbours. Flat plateau tops count once, at the plateau midpoint.
func findLocalMaxima(sig []float64) []int {
	var peaks []int
	i := 1
	for i < len(sig)-1 {
		if sig[i] <= sig[i-1] {
			i++
			continue
		}
		// Climbing edge found; scan across any plateau.
		j := i
		for j < len(sig)-1 && sig[j+1] == sig[j] {
			j++
		}
		if j < len(sig)-1 && sig[j+1] < sig[j] {
			peaks = append(peaks, (i+j)/2)
		}
		i = j + 1
	}
	return peaks
}

// prominence measures how far a peak rises above its surroundings: the
// peak height minus the higher of the two valley floors found while walking
// left and right until a taller sample (or the signal edge) is reached.
func prominence(sig []float64, peak int) float64 {
	leftMin := sig[peak]
	for i := peak - 1; i >= 0; i-- {
		if sig[i] > sig[peak] {
			break
		}
		if sig[i] < leftMin {
			leftMin = sig[i]
		}
	}
	rightMin := sig[peak]
	for i := peak + 1; i < len(sig); i++ {
		if sig[i] > sig[peak] {
			break
		}
		if sig[i] < rightMin {
			rightMin = sig[i]
		}
	}
	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return sig[peak] - base
}

// FindPeaks returns local maxima with prominence of at least minProminence,
// keeping at most one peak per minDistance samples: when two accepted peaks
// would sit closer than minDistance, the taller one survives.
func FindPeaks(sig []float64, minProminence float64, minDistance int) []int {
	candidates := findLocalMaxima(sig)
	kept := candidates[:0]
	for _, p := range candidates {
		if prominence(sig, p) >= minProminence {
			kept = append(kept, p)
		}
	}
	if minDistance <= 1 || len(kept) < 2 {
		out := make([]int, len(kept))
		copy(out, kept)
		return out
	}

	// Tallest-first suppression, then restore time order.
	byHeight := make([]int, len(kept))
	copy(byHeight, kept)
	sort.SliceStable(byHeight, func(i, j int) bool {
		return sig[byHeight[i]] > sig[byHeight[j]]
	})
	suppressed := make(map[int]bool, len(kept))
	for _, p := range byHeight {
		if suppressed[p] {
			continue
		}
		for _, q := range kept {
			if q == p || suppressed[q] {
				continue
			}
			if q > p-minDistance && q < p+minDistance {
				suppressed[q] = true
			}
		}
	}
	var out []int
	for _, p := range kept {
		if !suppressed[p] {
			out = append(out, p)
		}
	}
	return out
}
