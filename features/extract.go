package features

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// Table is a per-repetition feature table: one row per group (repetition
// index), one column per channel/statistic pair.
type Table struct {
	Groups  []int
	Columns []string
	Rows    [][]float64
}

// Extract computes every catalog statistic for every channel, grouped by the
// table's repetition annotation. Unassigned samples are ignored. Groups of a
// single sample are fine: spread statistics degrade to zero, not NaN.
func Extract(t *timeseries.Table, catalog Catalog) (*Table, error) {
	if t.Reps == nil {
		return nil, fmt.Errorf("extract features: table has no repetition annotation")
	}
	if catalog.Len() == 0 {
		return nil, &repanalyzer.InvalidParameterError{Param: "catalog", Reason: "no statistics configured"}
	}

	groupIdx := make(map[int][]int)
	for i, r := range t.Reps {
		if r == timeseries.Unassigned {
			continue
		}
		groupIdx[r] = append(groupIdx[r], i)
	}
	if len(groupIdx) == 0 {
		return nil, &repanalyzer.InsufficientDataError{Op: "extract features", Samples: 0, Needed: 1}
	}
	groups := make([]int, 0, len(groupIdx))
	for g := range groupIdx {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	channels := t.Channels()
	stats := catalog.Statistics()
	columns := make([]string, 0, len(channels)*len(stats))
	for _, ch := range channels {
		for _, s := range stats {
			columns = append(columns, fmt.Sprintf("%s__%s", ch, s))
		}
	}

	rows := make([][]float64, len(groups))
	for gi, g := range groups {
		row := make([]float64, 0, len(columns))
		for _, ch := range channels {
			vals, err := t.Channel(ch)
			if err != nil {
				return nil, err
			}
			sel := make([]float64, len(groupIdx[g]))
			for j, i := range groupIdx[g] {
				sel[j] = vals[i]
			}
			for _, s := range stats {
				row = append(row, compute(s, sel))
			}
		}
		rows[gi] = row
	}
	return &Table{Groups: groups, Columns: columns, Rows: rows}, nil
}

func compute(s Statistic, vals []float64) float64 {
	switch s {
	case Maximum:
		return maxOf(vals)
	case AbsoluteMaximum:
		m := 0.0
		for _, v := range vals {
			if a := math.Abs(v); a > m {
				m = a
			}
		}
		return m
	case Minimum:
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case Median:
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	case Mean:
		return stat.Mean(vals, nil)
	case Sum:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum
	case StandardDeviation:
		if len(vals) < 2 {
			return 0
		}
		return stat.StdDev(vals, nil)
	case Variance:
		if len(vals) < 2 {
			return 0
		}
		return stat.Variance(vals, nil)
	case RootMeanSquare:
		sum := 0.0
		for _, v := range vals {
			sum += v * v
		}
		return math.Sqrt(sum / float64(len(vals)))
	case Length:
		return float64(len(vals))
	default:
		return math.NaN()
	}
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Prefix prepends a device name to every column, keeping columns from
// different devices distinct when tables are concatenated horizontally.
func (t *Table) Prefix(prefix string) {
	for i, c := range t.Columns {
		t.Columns[i] = prefix + c
	}
}

// SelectRows keeps only rows whose mask entry is true. Mask length must
// match the row count.
func (t *Table) SelectRows(mask []bool) (*Table, error) {
	if len(mask) != len(t.Rows) {
		return nil, fmt.Errorf("select rows: mask length %d for %d rows", len(mask), len(t.Rows))
	}
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for i, keep := range mask {
		if !keep {
			continue
		}
		out.Groups = append(out.Groups, t.Groups[i])
		out.Rows = append(out.Rows, append([]float64(nil), t.Rows[i]...))
	}
	return out, nil
}

// Truncate keeps the first n rows.
func (t *Table) Truncate(n int) {
	if n < len(t.Rows) {
		t.Rows = t.Rows[:n]
		t.Groups = t.Groups[:n]
	}
}

// ConcatColumns joins tables horizontally, row by row. All tables must have
// the same number of rows; group ids are taken from the first table.
func ConcatColumns(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("concat: no tables")
	}
	n := len(tables[0].Rows)
	out := &Table{Groups: append([]int(nil), tables[0].Groups...)}
	for _, t := range tables {
		if len(t.Rows) != n {
			return nil, fmt.Errorf("concat: row count mismatch: %d vs %d", len(t.Rows), n)
		}
		out.Columns = append(out.Columns, t.Columns...)
	}
	out.Rows = make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, 0, len(out.Columns))
		for _, t := range tables {
			row = append(row, t.Rows[i]...)
		}
		out.Rows[i] = row
	}
	return out, nil
}
