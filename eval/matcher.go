package eval

// MatchRecord classifies one accepted prediction: Hit is true for a true
// positive and false for a false positive, Confidence is the score the
// prediction carried. Records are appended in processing order and never
// mutated afterwards; the global record sequence is the sole input to the
// precision-recall curve.
type MatchRecord struct {
	Hit        bool    `json:"hit"`
	Confidence float32 `json:"confidence"`
}

// Match greedily assigns predictions to ground-truth boxes for one sample.
//
// Predictions below confidenceThreshold are dropped entirely; they are
// neither false positives nor false negatives. Surviving predictions are
// processed in detector-output order. Each one searches every ground-truth
// box for its best IoU, including boxes already claimed by an earlier
// prediction. Searching claimed boxes keeps the aggregate numbers
// compatible with existing evaluation reports: a prediction whose best
// match is already taken counts as a false positive even when a different
// unclaimed box would clear the threshold.
//
// A prediction becomes a true positive only when its best IoU meets
// iouThreshold and the winning box is still unclaimed; the box is then
// claimed so no ground-truth object is counted twice. Ties on IoU go to
// the lowest ground-truth index.
//
// Arguments:
//   - predictions: Detector output for the sample, in original order.
//   - groundTruth: Annotated boxes for the sample, read-only.
//   - iouThreshold: Minimum overlap for a prediction to claim a box.
//   - confidenceThreshold: Minimum score for a prediction to participate.
//
// Returns:
//   - []MatchRecord: One record per surviving prediction, in input order.
//   - int: The number of ground-truth boxes left unclaimed (false negatives).
func Match(
	predictions []Prediction,
	groundTruth []BoundingBox,
	iouThreshold, confidenceThreshold float32,
) ([]MatchRecord, int) {
	records := make([]MatchRecord, 0, len(predictions))
	claimed := make([]bool, len(groundTruth))

	for _, pred := range predictions {
		if pred.Confidence < confidenceThreshold {
			continue
		}

		var bestIoU float32
		bestIdx := -1
		for i, gt := range groundTruth {
			if iou := pred.Box.IoU(gt); iou > bestIoU {
				bestIoU = iou
				bestIdx = i
			}
		}

		if bestIdx >= 0 && bestIoU >= iouThreshold && !claimed[bestIdx] {
			claimed[bestIdx] = true
			records = append(records, MatchRecord{Hit: true, Confidence: pred.Confidence})
		} else {
			records = append(records, MatchRecord{Hit: false, Confidence: pred.Confidence})
		}
	}

	falseNegatives := 0
	for _, c := range claimed {
		if !c {
			falseNegatives++
		}
	}

	return records, falseNegatives
}
