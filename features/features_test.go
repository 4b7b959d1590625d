package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

func TestDefaultCatalogDropsRedundantStatistics(t *testing.T) {
	c := DefaultCatalog()
	stats := c.Statistics()
	assert.NotContains(t, stats, Sum)
	assert.NotContains(t, stats, Mean)
	assert.Contains(t, stats, RootMeanSquare)
	assert.Equal(t, 8, c.Len())
}

func TestCatalogWithoutReturnsCopy(t *testing.T) {
	full := FullCatalog()
	n := full.Len()
	trimmed := full.Without(Median, Length)
	assert.Equal(t, n, full.Len(), "source catalog must not change")
	assert.Equal(t, n-2, trimmed.Len())
	assert.NotContains(t, trimmed.Statistics(), Median)
}

func extractionTable(t *testing.T) *timeseries.Table {
	t.Helper()
	ts := make([]float64, 8)
	for i := range ts {
		ts[i] = float64(i)
	}
	table, err := timeseries.New(ts, 1)
	require.NoError(t, err)
	require.NoError(t, table.AddChannel("x", []float64{1, 3, -2, 4, 10, 20, 5, 5}))
	require.NoError(t, table.Annotate([]int{0, 0, 0, 0, 1, 1, -1, 2}))
	return table
}

func TestExtractGroupsAndColumns(t *testing.T) {
	catalog := NewCatalog(Maximum, Minimum, Length)
	ft, err := Extract(extractionTable(t), catalog)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, ft.Groups)
	assert.Equal(t, []string{"x__maximum", "x__minimum", "x__length"}, ft.Columns)
	require.Len(t, ft.Rows, 3)
	assert.Equal(t, []float64{4, -2, 4}, ft.Rows[0])
	assert.Equal(t, []float64{20, 10, 2}, ft.Rows[1])
	assert.Equal(t, []float64{5, 5, 1}, ft.Rows[2], "unassigned sample at index 6 is skipped")
}

func TestExtractSingleSampleGroupSpreadIsZero(t *testing.T) {
	catalog := NewCatalog(StandardDeviation, Variance)
	ft, err := Extract(extractionTable(t), catalog)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, ft.Rows[2])
}

func TestExtractStatisticValues(t *testing.T) {
	ts := []float64{0, 1, 2, 3}
	table, err := timeseries.New(ts, 1)
	require.NoError(t, err)
	require.NoError(t, table.AddChannel("x", []float64{-3, 1, 1, 1}))
	require.NoError(t, table.Annotate([]int{0, 0, 0, 0}))

	ft, err := Extract(table, NewCatalog(AbsoluteMaximum, RootMeanSquare, Median))
	require.NoError(t, err)
	row := ft.Rows[0]
	assert.InDelta(t, 3, row[0], 1e-12)
	assert.InDelta(t, math.Sqrt(12.0/4.0), row[1], 1e-12)
	assert.InDelta(t, 1, row[2], 1e-12)
}

func TestImputeColumnExtremes(t *testing.T) {
	ft := &Table{
		Groups:  []int{0, 1, 2, 3},
		Columns: []string{"a", "b"},
		Rows: [][]float64{
			{1, math.NaN()},
			{math.Inf(1), math.NaN()},
			{5, math.NaN()},
			{math.Inf(-1), math.NaN()},
		},
	}
	Impute(ft)
	assert.Equal(t, []float64{1, math.NaN()}[0], ft.Rows[0][0])
	assert.Equal(t, 5.0, ft.Rows[1][0], "+Inf becomes the column maximum")
	assert.Equal(t, 1.0, ft.Rows[3][0], "-Inf becomes the column minimum")
	for r := range ft.Rows {
		assert.Equal(t, 0.0, ft.Rows[r][1], "all-non-finite column zeroes out")
	}
}

func TestConcatColumnsAndPrefix(t *testing.T) {
	a := &Table{Groups: []int{0, 1}, Columns: []string{"x"}, Rows: [][]float64{{1}, {2}}}
	b := &Table{Groups: []int{0, 1}, Columns: []string{"y"}, Rows: [][]float64{{3}, {4}}}
	a.Prefix("imu__")
	b.Prefix("fw__")

	joined, err := ConcatColumns(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"imu__x", "fw__y"}, joined.Columns)
	assert.Equal(t, [][]float64{{1, 3}, {2, 4}}, joined.Rows)

	short := &Table{Groups: []int{0}, Columns: []string{"z"}, Rows: [][]float64{{9}}}
	_, err = ConcatColumns(a, short)
	require.Error(t, err)
}

func TestSelectRows(t *testing.T) {
	ft := &Table{
		Groups:  []int{0, 1, 2},
		Columns: []string{"x"},
		Rows:    [][]float64{{1}, {2}, {3}},
	}
	out, err := ft.SelectRows([]bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, out.Groups)
	assert.Equal(t, [][]float64{{1}, {3}}, out.Rows)

	_, err = ft.SelectRows([]bool{true})
	require.Error(t, err)
}
