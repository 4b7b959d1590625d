package devices

import (
	"fmt"
	"strconv"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

// FlywheelSet holds a flywheel trainer's per-repetition summary rows. Unlike
// the other devices it reports one row per repetition, not a sample stream,
// so it doubles as the reference repetition count for a trial.
type FlywheelSet struct {
	Columns []string
	Rows    [][]float64

	durationCol int
}

// LoadFlywheel reads a comma-delimited per-repetition export. A duration
// column ("duration" or "duration_s") is required.
func LoadFlywheel(path string) (*FlywheelSet, error) {
	rows, err := readAll(path, ',')
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "load flywheel", Samples: len(rows) - 1, Needed: 1}
	}
	set := &FlywheelSet{durationCol: -1}
	for i, col := range rows[0] {
		name := canonicalName(col)
		set.Columns = append(set.Columns, name)
		if name == "duration" || name == "duration_s" {
			set.durationCol = i
		}
	}
	if set.durationCol < 0 {
		return nil, fmt.Errorf("flywheel %s: no duration column", path)
	}
	for _, row := range rows[1:] {
		vals := make([]float64, len(row))
		for i, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("flywheel %s: bad value %q in column %s", path, field, set.Columns[i])
			}
			vals[i] = v
		}
		set.Rows = append(set.Rows, vals)
	}
	return set, nil
}

// Count reports the number of repetition rows.
func (s *FlywheelSet) Count() int { return len(s.Rows) }

// Durations returns the duration column, one value per repetition.
func (s *FlywheelSet) Durations() []float64 {
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[s.durationCol]
	}
	return out
}

// FilterMinDuration drops repetitions shorter than min seconds. Partial reps
// at the start or end of a set show up as sub-threshold rows.
func (s *FlywheelSet) FilterMinDuration(min float64) *FlywheelSet {
	out := &FlywheelSet{Columns: s.Columns, durationCol: s.durationCol}
	for _, row := range s.Rows {
		if row[s.durationCol] >= min {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// SelectRows keeps the rows where mask is true. The mask length must match
// the row count.
func (s *FlywheelSet) SelectRows(mask []bool) (*FlywheelSet, error) {
	if len(mask) != len(s.Rows) {
		return nil, &repanalyzer.InvalidParameterError{Param: "mask", Reason: fmt.Sprintf("length %d does not match %d rows", len(mask), len(s.Rows))}
	}
	out := &FlywheelSet{Columns: s.Columns, durationCol: s.durationCol}
	for i, row := range s.Rows {
		if mask[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
