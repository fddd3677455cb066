package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMatchSingleTruePositive verifies the simplest hit: one prediction
// overlapping one ground-truth box above both thresholds.
func TestMatchSingleTruePositive(t *testing.T) {
	groundTruth := []BoundingBox{{X1: 0, Y1: 0, X2: 10, Y2: 10}}
	predictions := []Prediction{
		{Box: BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 9}, Confidence: 0.9},
	}

	records, falseNegatives := Match(predictions, groundTruth, 0.5, 0.3)

	require.Len(t, records, 1)
	assert.True(t, records[0].Hit)
	assert.Equal(t, float32(0.9), records[0].Confidence)
	assert.Equal(t, 0, falseNegatives)
}

// TestMatchDuplicatePredictions verifies that when two predictions both
// best-match the same ground-truth box, only the first in input order is a
// true positive and the second becomes a false positive.
func TestMatchDuplicatePredictions(t *testing.T) {
	groundTruth := []BoundingBox{{X1: 0, Y1: 0, X2: 10, Y2: 10}}
	predictions := []Prediction{
		{Box: BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, Confidence: 0.6},
		{Box: BoundingBox{X1: 1, Y1: 1, X2: 10, Y2: 10}, Confidence: 0.95},
	}

	records, falseNegatives := Match(predictions, groundTruth, 0.5, 0.3)

	require.Len(t, records, 2)
	assert.True(t, records[0].Hit, "first prediction in input order claims the box")
	assert.False(t, records[1].Hit, "second prediction is a duplicate")
	assert.Equal(t, 0, falseNegatives)
}

// TestMatchNoPredictions verifies that an empty prediction set produces no
// records and counts every ground-truth box as a false negative.
func TestMatchNoPredictions(t *testing.T) {
	groundTruth := []BoundingBox{
		{X1: 0, Y1: 0, X2: 10, Y2: 10},
		{X1: 20, Y1: 20, X2: 30, Y2: 30},
	}

	records, falseNegatives := Match(nil, groundTruth, 0.5, 0.3)

	assert.Empty(t, records)
	assert.Equal(t, 2, falseNegatives)
}

// TestMatchEmptyGroundTruth verifies that with no annotated objects every
// surviving prediction is a false positive and nothing is a false negative.
func TestMatchEmptyGroundTruth(t *testing.T) {
	predictions := []Prediction{
		{Box: BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, Confidence: 0.8},
		{Box: BoundingBox{X1: 5, Y1: 5, X2: 15, Y2: 15}, Confidence: 0.7},
	}

	records, falseNegatives := Match(predictions, nil, 0.5, 0.3)

	require.Len(t, records, 2)
	for _, r := range records {
		assert.False(t, r.Hit)
	}
	assert.Equal(t, 0, falseNegatives)
}

// TestMatchConfidenceFilter verifies that predictions below the confidence
// threshold are excluded entirely: no record, no false positive.
func TestMatchConfidenceFilter(t *testing.T) {
	groundTruth := []BoundingBox{{X1: 0, Y1: 0, X2: 10, Y2: 10}}
	predictions := []Prediction{
		{Box: BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, Confidence: 0.2},
	}

	records, falseNegatives := Match(predictions, groundTruth, 0.5, 0.3)

	assert.Empty(t, records)
	assert.Equal(t, 1, falseNegatives)
}

// TestMatchIoUBelowThreshold verifies a weakly overlapping prediction is a
// false positive and the box stays unclaimed.
func TestMatchIoUBelowThreshold(t *testing.T) {
	groundTruth := []BoundingBox{{X1: 0, Y1: 0, X2: 10, Y2: 10}}
	predictions := []Prediction{
		{Box: BoundingBox{X1: 8, Y1: 8, X2: 18, Y2: 18}, Confidence: 0.9},
	}

	records, falseNegatives := Match(predictions, groundTruth, 0.5, 0.3)

	require.Len(t, records, 1)
	assert.False(t, records[0].Hit)
	assert.Equal(t, 1, falseNegatives)
}

// TestMatchClaimedBoxStillSearched pins down the matching-order quirk: the
// best-IoU search considers already-claimed boxes, so a prediction whose
// best match is taken becomes a false positive even when a different
// unclaimed box also clears the threshold.
func TestMatchClaimedBoxStillSearched(t *testing.T) {
	groundTruth := []BoundingBox{
		{X1: 0, Y1: 0, X2: 10, Y2: 10},  // A
		{X1: 8, Y1: 0, X2: 18, Y2: 10},  // B, overlapping A's right edge
	}
	predictions := []Prediction{
		// Claims A exactly.
		{Box: BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, Confidence: 0.9},
		// IoU vs A ~0.538, vs B ~0.333; with threshold 0.3 both qualify,
		// but the best match is the already-claimed A.
		{Box: BoundingBox{X1: 3, Y1: 0, X2: 13, Y2: 10}, Confidence: 0.8},
	}

	records, falseNegatives := Match(predictions, groundTruth, 0.3, 0.3)

	require.Len(t, records, 2)
	assert.True(t, records[0].Hit)
	assert.False(t, records[1].Hit, "best match is claimed, so this is a false positive")
	assert.Equal(t, 1, falseNegatives, "B remains unclaimed")
}

// TestMatchTieBreaksToLowestIndex verifies that equal best IoUs resolve to
// the first-encountered ground-truth box.
func TestMatchTieBreaksToLowestIndex(t *testing.T) {
	groundTruth := []BoundingBox{
		{X1: 0, Y1: 0, X2: 10, Y2: 10},
		{X1: 10, Y1: 0, X2: 20, Y2: 10},
	}
	// Straddles both boxes with identical overlap.
	predictions := []Prediction{
		{Box: BoundingBox{X1: 5, Y1: 0, X2: 15, Y2: 10}, Confidence: 0.9},
	}

	records, falseNegatives := Match(predictions, groundTruth, 0.3, 0.3)

	require.Len(t, records, 1)
	assert.True(t, records[0].Hit)
	assert.Equal(t, 1, falseNegatives)

	// A second identical prediction must not claim the second box: its
	// best match is still the (claimed) first one.
	predictions = append(predictions, Prediction{
		Box: BoundingBox{X1: 5, Y1: 0, X2: 15, Y2: 10}, Confidence: 0.8,
	})
	records, falseNegatives = Match(predictions, groundTruth, 0.3, 0.3)

	require.Len(t, records, 2)
	assert.True(t, records[0].Hit)
	assert.False(t, records[1].Hit)
	assert.Equal(t, 1, falseNegatives)
}
