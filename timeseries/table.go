// Package timeseries holds the in-memory table type shared by every device
// loader and processing stage: an ordered-by-time sequence of samples with a
// fixed set of named numeric channels.
package timeseries

import (
	"fmt"
	"math"
	"sort"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

// Unassigned marks a sample that belongs to no accepted repetition.
const Unassigned = -1

// Table is a time-indexed numeric table. Timestamps are seconds, strictly
// increasing after conditioning. All channels have the same length as
// Timestamps. Reps is nil until a segmenter annotates the table.
type Table struct {
	Timestamps  []float64
	NominalRate float64

	channels []string
	values   map[string][]float64

	// Reps holds the per-sample repetition index, or Unassigned.
	Reps []int
}

// New creates an empty table over the given timestamps.
func New(timestamps []float64, nominalRate float64) (*Table, error) {
	for i := 1; i < len(timestamps); i++ {
		if timestamps[i] <= timestamps[i-1] {
			return nil, fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
	}
	return &Table{
		Timestamps:  timestamps,
		NominalRate: nominalRate,
		values:      make(map[string][]float64),
	}, nil
}

// Len returns the number of samples.
func (t *Table) Len() int { return len(t.Timestamps) }

// Channels returns the channel names in insertion order.
func (t *Table) Channels() []string {
	out := make([]string, len(t.channels))
	copy(out, t.channels)
	return out
}

// AddChannel attaches a channel. The slice is kept, not copied.
func (t *Table) AddChannel(name string, vals []float64) error {
	if len(vals) != len(t.Timestamps) {
		return fmt.Errorf("channel %s: %d values for %d timestamps", name, len(vals), len(t.Timestamps))
	}
	if _, ok := t.values[name]; ok {
		return fmt.Errorf("channel %s already present", name)
	}
	t.channels = append(t.channels, name)
	t.values[name] = vals
	return nil
}

// Channel returns the values of a physical column.
func (t *Table) Channel(name string) ([]float64, error) {
	vals, ok := t.values[name]
	if !ok {
		return nil, &repanalyzer.MissingReferenceError{What: fmt.Sprintf("channel %q", name)}
	}
	return vals, nil
}

// SetChannel replaces the values of an existing channel.
func (t *Table) SetChannel(name string, vals []float64) error {
	if _, ok := t.values[name]; !ok {
		return fmt.Errorf("channel %s not present", name)
	}
	if len(vals) != len(t.Timestamps) {
		return fmt.Errorf("channel %s: %d values for %d timestamps", name, len(vals), len(t.Timestamps))
	}
	t.values[name] = vals
	return nil
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Timestamps:  append([]float64(nil), t.Timestamps...),
		NominalRate: t.NominalRate,
		channels:    append([]string(nil), t.channels...),
		values:      make(map[string][]float64, len(t.values)),
	}
	for name, vals := range t.values {
		out.values[name] = append([]float64(nil), vals...)
	}
	if t.Reps != nil {
		out.Reps = append([]int(nil), t.Reps...)
	}
	return out
}

// ShiftTime adds dt seconds to every timestamp.
func (t *Table) ShiftTime(dt float64) {
	for i := range t.Timestamps {
		t.Timestamps[i] += dt
	}
}

// Annotate sets the per-sample repetition index column.
func (t *Table) Annotate(reps []int) error {
	if len(reps) != t.Len() {
		return fmt.Errorf("annotation length %d for %d samples", len(reps), t.Len())
	}
	t.Reps = reps
	return nil
}

// SelectAssigned returns a new table holding only samples with a repetition
// index, preserving the annotation.
func (t *Table) SelectAssigned() (*Table, error) {
	if t.Reps == nil {
		return nil, fmt.Errorf("table has no repetition annotation")
	}
	keep := make([]int, 0, t.Len())
	for i, r := range t.Reps {
		if r != Unassigned {
			keep = append(keep, i)
		}
	}
	out := &Table{
		Timestamps:  make([]float64, len(keep)),
		NominalRate: t.NominalRate,
		channels:    append([]string(nil), t.channels...),
		values:      make(map[string][]float64, len(t.values)),
		Reps:        make([]int, len(keep)),
	}
	for j, i := range keep {
		out.Timestamps[j] = t.Timestamps[i]
		out.Reps[j] = t.Reps[i]
	}
	for name, vals := range t.values {
		sel := make([]float64, len(keep))
		for j, i := range keep {
			sel[j] = vals[i]
		}
		out.values[name] = sel
	}
	return out, nil
}

// AnnotateByTime maps repetition intervals expressed on another table's
// timeline onto this table: a sample gets index k when its timestamp falls
// inside [start_k, end_k).
func (t *Table) AnnotateByTime(starts, ends []float64) error {
	if len(starts) != len(ends) {
		return fmt.Errorf("annotate by time: %d starts, %d ends", len(starts), len(ends))
	}
	reps := make([]int, t.Len())
	for i := range reps {
		reps[i] = Unassigned
	}
	for k := range starts {
		lo := sort.SearchFloat64s(t.Timestamps, starts[k])
		for i := lo; i < t.Len() && t.Timestamps[i] < ends[k]; i++ {
			reps[i] = k
		}
	}
	t.Reps = reps
	return nil
}

// ClosestIndex returns the sample index whose timestamp is nearest to ts.
func (t *Table) ClosestIndex(ts float64) int {
	i := sort.SearchFloat64s(t.Timestamps, ts)
	if i == 0 {
		return 0
	}
	if i >= t.Len() {
		return t.Len() - 1
	}
	if math.Abs(t.Timestamps[i]-ts) < math.Abs(t.Timestamps[i-1]-ts) {
		return i
	}
	return i - 1
}
