package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScalarMetrics checks precision/recall/F1 on known counts.
func TestScalarMetrics(t *testing.T) {
	counts := RunningCounts{TruePositives: 8, FalsePositives: 2, FalseNegatives: 2}

	p := Precision(counts)
	r := Recall(counts)

	assert.InDelta(t, 0.8, p, 1e-5)
	assert.InDelta(t, 0.8, r, 1e-5)
	assert.InDelta(t, 0.8, F1(p, r), 1e-5)
}

// TestScalarMetricsAllZero verifies graceful degradation when nothing was
// detected and nothing was annotated: finite values in [0, 1], no panic.
func TestScalarMetricsAllZero(t *testing.T) {
	counts := RunningCounts{}

	p := Precision(counts)
	r := Recall(counts)
	f1 := F1(p, r)

	for _, v := range []float64{p, r, f1} {
		assert.False(t, v != v, "metric must not be NaN")
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

// TestPrecisionRecallCurve verifies the confidence sweep on a small
// hand-computed sequence.
func TestPrecisionRecallCurve(t *testing.T) {
	records := []MatchRecord{
		{Hit: true, Confidence: 0.9},
		{Hit: false, Confidence: 0.8},
		{Hit: true, Confidence: 0.7},
	}

	curve := PrecisionRecallCurve(records)

	require.Len(t, curve, 3)
	assert.InDelta(t, 0.5, curve[0].Recall, 1e-9)
	assert.InDelta(t, 1.0, curve[0].Precision, 1e-9)
	assert.InDelta(t, 0.5, curve[1].Recall, 1e-9)
	assert.InDelta(t, 0.5, curve[1].Precision, 1e-9)
	assert.InDelta(t, 1.0, curve[2].Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, curve[2].Precision, 1e-9)

	// Recall is monotone along the sweep.
	for i := 1; i < len(curve); i++ {
		assert.GreaterOrEqual(t, curve[i].Recall, curve[i-1].Recall)
	}
}

// TestPrecisionRecallCurveTiedConfidences verifies that records sharing a
// confidence value collapse into a single curve point.
func TestPrecisionRecallCurveTiedConfidences(t *testing.T) {
	records := []MatchRecord{
		{Hit: true, Confidence: 0.9},
		{Hit: false, Confidence: 0.9},
		{Hit: true, Confidence: 0.5},
	}

	curve := PrecisionRecallCurve(records)

	require.Len(t, curve, 2)
	assert.InDelta(t, 0.5, curve[0].Recall, 1e-9)
	assert.InDelta(t, 0.5, curve[0].Precision, 1e-9)
	assert.InDelta(t, 1.0, curve[1].Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, curve[1].Precision, 1e-9)
}

// TestPrecisionRecallCurveEmpty verifies that no records, or records with
// no hits, produce an empty curve rather than an error.
func TestPrecisionRecallCurveEmpty(t *testing.T) {
	assert.Empty(t, PrecisionRecallCurve(nil))
	assert.Empty(t, PrecisionRecallCurve([]MatchRecord{
		{Hit: false, Confidence: 0.9},
		{Hit: false, Confidence: 0.4},
	}))
}

// TestMeanAveragePrecisionPerfect verifies that perfect detections score
// mAP 1.0.
func TestMeanAveragePrecisionPerfect(t *testing.T) {
	records := []MatchRecord{
		{Hit: true, Confidence: 1.0},
		{Hit: true, Confidence: 1.0},
		{Hit: true, Confidence: 1.0},
	}

	mAP := MeanAveragePrecision(PrecisionRecallCurve(records))
	assert.InDelta(t, 1.0, mAP, 1e-6)
}

// TestMeanAveragePrecisionMixed checks the 11-point interpolation against
// a hand-computed value.
//
// Curve points: (0.5, 1.0), (0.5, 0.5), (1.0, 2/3). For thresholds
// 0.0..0.5 the best precision is 1.0 (six terms); for 0.6..1.0 only the
// last point qualifies (five terms of 2/3).
func TestMeanAveragePrecisionMixed(t *testing.T) {
	records := []MatchRecord{
		{Hit: true, Confidence: 0.9},
		{Hit: false, Confidence: 0.8},
		{Hit: true, Confidence: 0.7},
	}

	mAP := MeanAveragePrecision(PrecisionRecallCurve(records))

	expected := (6*1.0 + 5*(2.0/3.0)) / 11.0
	assert.InDelta(t, expected, mAP, 1e-9)
}

// TestMeanAveragePrecisionEmptyCurve verifies the empty-input contract.
func TestMeanAveragePrecisionEmptyCurve(t *testing.T) {
	assert.Equal(t, 0.0, MeanAveragePrecision(nil))
}

// TestComputeMetrics verifies the assembled bundle including FPS
// pass-through.
func TestComputeMetrics(t *testing.T) {
	counts := RunningCounts{TruePositives: 2, FalseNegatives: 1}
	records := []MatchRecord{
		{Hit: true, Confidence: 0.9},
		{Hit: true, Confidence: 0.8},
	}

	m := ComputeMetrics(counts, records, 0.05)

	assert.InDelta(t, 1.0, m.Precision, 1e-5)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-5)
	assert.InDelta(t, 0.8, m.F1, 1e-5)
	assert.InDelta(t, 1.0, m.MAP, 1e-6)
	assert.InDelta(t, 20.0, m.FPS, 1e-9)
}

// TestComputeMetricsNoTiming verifies FPS is omitted when no timing data
// exists.
func TestComputeMetricsNoTiming(t *testing.T) {
	m := ComputeMetrics(RunningCounts{}, nil, 0)
	assert.Zero(t, m.FPS)
}
