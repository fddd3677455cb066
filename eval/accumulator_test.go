package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAccumulatorAddSample verifies counts and record order across
// multiple samples.
func TestAccumulatorAddSample(t *testing.T) {
	acc := NewAccumulator()

	acc.AddSample([]MatchRecord{
		{Hit: true, Confidence: 0.9},
		{Hit: false, Confidence: 0.7},
	}, 1)
	acc.AddSample([]MatchRecord{
		{Hit: true, Confidence: 0.8},
	}, 0)

	counts, records := acc.Snapshot()

	assert.Equal(t, RunningCounts{
		TruePositives:  2,
		FalsePositives: 1,
		FalseNegatives: 1,
	}, counts)

	require.Len(t, records, 3)
	// Records keep their per-sample processing order.
	assert.Equal(t, float32(0.9), records[0].Confidence)
	assert.Equal(t, float32(0.7), records[1].Confidence)
	assert.Equal(t, float32(0.8), records[2].Confidence)
}

// TestAccumulatorEmpty verifies the zero-state snapshot.
func TestAccumulatorEmpty(t *testing.T) {
	acc := NewAccumulator()

	counts, records := acc.Snapshot()

	assert.Equal(t, RunningCounts{}, counts)
	assert.Empty(t, records)
}

// TestAccumulatorCountsMonotonic verifies counts never decrease as samples
// are folded in.
func TestAccumulatorCountsMonotonic(t *testing.T) {
	acc := NewAccumulator()
	prev := RunningCounts{}

	samples := [][]MatchRecord{
		{{Hit: true, Confidence: 0.9}},
		{},
		{{Hit: false, Confidence: 0.4}, {Hit: true, Confidence: 0.6}},
	}
	fns := []int{0, 2, 1}

	for i, records := range samples {
		acc.AddSample(records, fns[i])
		counts, _ := acc.Snapshot()
		assert.GreaterOrEqual(t, counts.TruePositives, prev.TruePositives)
		assert.GreaterOrEqual(t, counts.FalsePositives, prev.FalsePositives)
		assert.GreaterOrEqual(t, counts.FalseNegatives, prev.FalseNegatives)
		prev = counts
	}
}
