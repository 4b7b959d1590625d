package features

import "math"

// Impute replaces non-finite values in place with the column's observed
// extremes: +Inf becomes the column maximum, -Inf the minimum, NaN the
// minimum. Rows are never dropped. A column with no finite values at all is
// zeroed.
func Impute(t *Table) {
	for c := range t.Columns {
		min := math.Inf(1)
		max := math.Inf(-1)
		finite := false
		for r := range t.Rows {
			v := t.Rows[r][c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			finite = true
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if !finite {
			min, max = 0, 0
		}
		for r := range t.Rows {
			v := t.Rows[r][c]
			switch {
			case math.IsInf(v, 1):
				t.Rows[r][c] = max
			case math.IsInf(v, -1), math.IsNaN(v):
				t.Rows[r][c] = min
			}
		}
	}
}
