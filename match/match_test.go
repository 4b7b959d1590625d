package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

func TestReconcileEqualCountsIdentity(t *testing.T) {
	mask, err := Reconcile([]float64{2.0, 2.1, 1.9}, []float64{99, 1, 7})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, mask.Segmented)
	assert.Equal(t, []bool{true, true, true}, mask.Reference)
	assert.Equal(t, 0, mask.Offset, "equal counts never search")
	assert.Equal(t, 3, mask.Count())
}

func TestReconcileReferenceLonger(t *testing.T) {
	// The reference device counted two extra repetitions at the start.
	segmented := []float64{3, 4, 8}
	reference := []float64{1, 2, 3, 4, 8, 16}

	mask, err := Reconcile(segmented, reference)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, mask.Segmented)
	assert.Equal(t, []bool{false, false, true, true, true, false}, mask.Reference)
	assert.Equal(t, 2, mask.Offset)
	assert.Equal(t, 3, mask.Count())
}

func TestReconcileSegmentedLonger(t *testing.T) {
	segmented := []float64{1, 2, 3, 4, 8, 16}
	reference := []float64{3, 4, 8}

	mask, err := Reconcile(segmented, reference)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true, true, true, false}, mask.Segmented)
	assert.Equal(t, []bool{true, true, true}, mask.Reference)
	assert.Equal(t, 3, mask.Count())
}

func TestReconcileZeroRepetitions(t *testing.T) {
	var ambiguous *repanalyzer.AlignmentAmbiguousError
	_, err := Reconcile(nil, []float64{1, 2})
	require.ErrorAs(t, err, &ambiguous)

	_, err = Reconcile([]float64{1, 2}, nil)
	require.ErrorAs(t, err, &ambiguous)
}
