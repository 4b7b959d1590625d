package timeseries

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

func TestNewRejectsUnorderedTimestamps(t *testing.T) {
	_, err := New([]float64{0, 1, 1}, 10)
	require.Error(t, err)
	_, err = New([]float64{0, 2, 1}, 10)
	require.Error(t, err)
}

func TestChannelLifecycle(t *testing.T) {
	table, err := New([]float64{0, 1, 2}, 1)
	require.NoError(t, err)

	require.NoError(t, table.AddChannel("x", []float64{1, 2, 3}))
	require.Error(t, table.AddChannel("x", []float64{1, 2, 3}), "duplicate channel")
	require.Error(t, table.AddChannel("y", []float64{1}), "length mismatch")

	vals, err := table.Channel("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vals)

	var missing *repanalyzer.MissingReferenceError
	_, err = table.Channel("nope")
	require.ErrorAs(t, err, &missing)
}

func TestCloneIsDeep(t *testing.T) {
	table, err := New([]float64{0, 1}, 1)
	require.NoError(t, err)
	require.NoError(t, table.AddChannel("x", []float64{1, 2}))
	require.NoError(t, table.Annotate([]int{0, 1}))

	clone := table.Clone()
	clone.Timestamps[0] = 99
	vals, err := clone.Channel("x")
	require.NoError(t, err)
	vals[0] = 99
	clone.Reps[0] = 99

	assert.Equal(t, 0.0, table.Timestamps[0])
	orig, err := table.Channel("x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, orig[0])
	assert.Equal(t, 0, table.Reps[0])
}

func TestShiftTime(t *testing.T) {
	table, err := New([]float64{0, 1, 2}, 1)
	require.NoError(t, err)
	table.ShiftTime(-0.5)
	assert.Equal(t, []float64{-0.5, 0.5, 1.5}, table.Timestamps)
}

func TestAnnotateByTime(t *testing.T) {
	table, err := New([]float64{0, 0.5, 1.0, 1.5, 2.0, 2.5}, 2)
	require.NoError(t, err)
	require.NoError(t, table.AnnotateByTime([]float64{0.5, 2.0}, []float64{1.5, 2.6}))
	assert.Equal(t, []int{-1, 0, 0, -1, 1, 1}, table.Reps)
}

func TestSelectAssigned(t *testing.T) {
	table, err := New([]float64{0, 1, 2, 3}, 1)
	require.NoError(t, err)
	require.NoError(t, table.AddChannel("x", []float64{10, 20, 30, 40}))
	require.NoError(t, table.Annotate([]int{-1, 0, 0, 1}))

	out, err := table.SelectAssigned()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, out.Timestamps)
	assert.Equal(t, []int{0, 0, 1}, out.Reps)
	vals, err := out.Channel("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30, 40}, vals)
}

func TestClosestIndex(t *testing.T) {
	table, err := New([]float64{0, 1, 2, 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, table.ClosestIndex(-5))
	assert.Equal(t, 1, table.ClosestIndex(1.2))
	assert.Equal(t, 2, table.ClosestIndex(1.8))
	assert.Equal(t, 3, table.ClosestIndex(99))
}

func TestCSVRoundTrip(t *testing.T) {
	table, err := New([]float64{0, 0.5, 1.0}, 2)
	require.NoError(t, err)
	require.NoError(t, table.AddChannel("a", []float64{1, 2, 3}))
	require.NoError(t, table.AddChannel("b", []float64{-1, 0, 1}))
	require.NoError(t, table.Annotate([]int{-1, 0, 0}))

	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, table.WriteCSV(path, ','))

	back, err := ReadCSV(path, ',', 2)
	require.NoError(t, err)
	assert.Equal(t, table.Timestamps, back.Timestamps)
	assert.Equal(t, []string{"a", "b"}, back.Channels())
	assert.Equal(t, []int{-1, 0, 0}, back.Reps)
	vals, err := back.Channel("b")
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, vals)
}

func TestSchemaValidateAndResolve(t *testing.T) {
	table, err := New([]float64{0, 1}, 1)
	require.NoError(t, err)
	require.NoError(t, table.AddChannel("pelvis_y", []float64{1, 2}))

	schema := Schema{"pelvis_vertical": "pelvis_y", "spine_vertical": "spine_chest_y"}
	var missing *repanalyzer.MissingReferenceError
	require.ErrorAs(t, schema.Validate(table), &missing)

	vals, err := Schema{"pelvis_vertical": "pelvis_y"}.Resolve(table, "pelvis_vertical")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vals)
}
