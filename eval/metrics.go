package eval

import "sort"

// Metrics is the final scalar summary of an evaluation run. All ratio
// fields are in [0, 1]; FPS is positive when timing data was collected and
// zero otherwise.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	MAP       float64 `json:"mAP"`
	FPS       float64 `json:"fps,omitempty"`
}

// Precision returns tp / (tp + fp + epsilon).
func Precision(c RunningCounts) float64 {
	return float64(c.TruePositives) /
		(float64(c.TruePositives+c.FalsePositives) + epsilon)
}

// Recall returns tp / (tp + fn + epsilon).
func Recall(c RunningCounts) float64 {
	return float64(c.TruePositives) /
		(float64(c.TruePositives+c.FalseNegatives) + epsilon)
}

// F1 returns the harmonic mean of precision and recall, degrading to zero
// when both are zero instead of dividing by zero.
func F1(precision, recall float64) float64 {
	return 2 * precision * recall / (precision + recall + epsilon)
}

// CurvePoint is one point of a precision-recall curve.
type CurvePoint struct {
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
}

// PrecisionRecallCurve sweeps the match records from highest to lowest
// confidence, emitting one point per distinct confidence value with the
// cumulative true/false positive counts up to and including that value.
//
// Recall is normalized by the total number of hits in the record sequence,
// so the curve always ends at recall 1.0 when any hit exists. That matches
// the reference evaluation pipeline, which derived the curve from the
// match/confidence pairs alone; the scalar Recall above uses the false
// negative count instead.
//
// The curve is monotone in recall and generally non-monotone in precision.
// An empty record sequence, or one with no hits, produces an empty curve.
func PrecisionRecallCurve(records []MatchRecord) []CurvePoint {
	if len(records) == 0 {
		return nil
	}

	totalHits := 0
	for _, r := range records {
		if r.Hit {
			totalHits++
		}
	}
	if totalHits == 0 {
		return nil
	}

	sorted := make([]MatchRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	curve := make([]CurvePoint, 0, len(sorted))
	cumTP, cumFP := 0, 0
	for i, r := range sorted {
		if r.Hit {
			cumTP++
		} else {
			cumFP++
		}
		// Emit a point only once all records sharing this confidence have
		// been consumed.
		if i+1 < len(sorted) && sorted[i+1].Confidence == r.Confidence {
			continue
		}
		curve = append(curve, CurvePoint{
			Recall:    float64(cumTP) / float64(totalHits),
			Precision: float64(cumTP) / float64(cumTP+cumFP),
		})
	}

	return curve
}

// MeanAveragePrecision computes 11-point interpolated mAP over the given
// precision-recall curve.
//
// For each recall threshold t in {0.0, 0.1, ..., 1.0} it takes the maximum
// precision among curve points with recall >= t (zero when no point
// qualifies) and returns the mean of the eleven maxima. This is the
// simplified interpolation the existing reports were produced with, kept
// deliberately instead of a COCO-style area integral.
//
// An empty curve yields 0.0.
func MeanAveragePrecision(curve []CurvePoint) float64 {
	if len(curve) == 0 {
		return 0.0
	}

	const steps = 11
	sum := 0.0
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		best := 0.0
		for _, p := range curve {
			if p.Recall >= t && p.Precision > best {
				best = p.Precision
			}
		}
		sum += best
	}
	return sum / steps
}

// ComputeMetrics derives the full scalar bundle from accumulated state.
// meanInference is the mean per-sample inference time in seconds; pass
// zero when no timing data exists and FPS is omitted.
func ComputeMetrics(counts RunningCounts, records []MatchRecord, meanInference float64) Metrics {
	p := Precision(counts)
	r := Recall(counts)

	m := Metrics{
		Precision: p,
		Recall:    r,
		F1:        F1(p, r),
		MAP:       MeanAveragePrecision(PrecisionRecallCurve(records)),
	}
	if meanInference > 0 {
		m.FPS = 1.0 / meanInference
	}
	return m
}
