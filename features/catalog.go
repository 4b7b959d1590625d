// Package features turns segmented time-series tables into per-repetition
// scalar feature tables: one row per repetition, one column per
// channel/statistic pair.
package features

// Statistic names one scalar aggregate computed per channel and repetition.
type Statistic string

const (
	Maximum           Statistic = "maximum"
	AbsoluteMaximum   Statistic = "absolute_maximum"
	Minimum           Statistic = "minimum"
	Median            Statistic = "median"
	Mean              Statistic = "mean"
	Sum               Statistic = "sum_values"
	StandardDeviation Statistic = "standard_deviation"
	Variance          Statistic = "variance"
	RootMeanSquare    Statistic = "root_mean_square"
	Length            Statistic = "length"
)

// Catalog is the immutable set of statistics an extraction run computes.
// It is built once at startup and passed by value into every Extract call;
// nothing mutates it afterwards.
type Catalog struct {
	stats []Statistic
}

// NewCatalog builds a catalog from an explicit statistic list, dropping
// duplicates while keeping first-seen order.
func NewCatalog(stats ...Statistic) Catalog {
	seen := make(map[Statistic]bool, len(stats))
	kept := make([]Statistic, 0, len(stats))
	for _, s := range stats {
		if seen[s] {
			continue
		}
		seen[s] = true
		kept = append(kept, s)
	}
	return Catalog{stats: kept}
}

// DefaultCatalog returns the standard statistic set. Sum and mean are left
// out: on motion data both track the root mean square closely enough to add
// columns without adding information.
func DefaultCatalog() Catalog {
	return NewCatalog(
		Maximum,
		AbsoluteMaximum,
		Minimum,
		Median,
		StandardDeviation,
		Variance,
		RootMeanSquare,
		Length,
	)
}

// FullCatalog returns every known statistic, including the redundant ones.
func FullCatalog() Catalog {
	return NewCatalog(
		Maximum,
		AbsoluteMaximum,
		Minimum,
		Median,
		Mean,
		Sum,
		StandardDeviation,
		Variance,
		RootMeanSquare,
		Length,
	)
}

// Without returns a new catalog with the given statistics removed. The
// receiver is unchanged.
func (c Catalog) Without(remove ...Statistic) Catalog {
	drop := make(map[Statistic]bool, len(remove))
	for _, s := range remove {
		drop[s] = true
	}
	kept := make([]Statistic, 0, len(c.stats))
	for _, s := range c.stats {
		if !drop[s] {
			kept = append(kept, s)
		}
	}
	return Catalog{stats: kept}
}

// Statistics returns a copy of the catalog's statistic list.
func (c Catalog) Statistics() []Statistic {
	out := make([]Statistic, len(c.stats))
	copy(out, c.stats)
	return out
}

// Len returns the number of statistics in the catalog.
func (c Catalog) Len() int { return len(c.stats) }
