package inference

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-eval/eval"
)

// boxFields is the number of geometry rows (cx, cy, w, h) preceding the
// per-class scores in a YOLO output tensor.
const boxFields = 4

// Detection is a decoded, NMS-filtered model output in source-image
// coordinates.
type Detection struct {
	Box        eval.BoundingBox `json:"box"`
	Label      string           `json:"label"`
	ClassID    int              `json:"class_id"`
	Confidence float32          `json:"confidence"`
}

// decodeOutput converts a raw YOLO output tensor into detections.
//
// The model emits a [boxFields+classes, anchors] tensor. It is transposed
// to anchor-major order so each anchor's row can be scanned contiguously:
// the class with the highest score wins, anchors below the confidence
// threshold are dropped, and box centers are rescaled from model input
// space to the original image dimensions. Survivors are sorted by
// descending confidence and greedily NMS-filtered.
func decodeOutput(output []float32, cfg Config, origWidth, origHeight int) ([]Detection, error) {
	rows := boxFields + len(YOLOClasses)
	if len(output) == 0 || len(output)%rows != 0 {
		return nil, errors.Errorf(
			"unexpected output size %d, not divisible by %d rows", len(output), rows)
	}
	anchors := len(output) / rows

	// Transpose [rows, anchors] -> [anchors, rows] so each anchor is one
	// contiguous slice.
	view := tensor.New(tensor.WithShape(rows, anchors), tensor.WithBacking(output))
	if err := view.T(); err != nil {
		return nil, errors.Wrap(err, "failed to transpose output tensor")
	}
	if err := view.Transpose(); err != nil {
		return nil, errors.Wrap(err, "failed to materialize transposed output")
	}
	data := view.Data().([]float32)

	scaleX := float32(origWidth) / float32(cfg.InputShape.X)
	scaleY := float32(origHeight) / float32(cfg.InputShape.Y)

	detections := make([]Detection, 0, 64)
	for a := 0; a < anchors; a++ {
		row := data[a*rows : (a+1)*rows]

		classID := 0
		score := row[boxFields]
		for c, s := range row[boxFields:] {
			if s > score {
				score = s
				classID = c
			}
		}
		if score < cfg.ConfidenceThreshold {
			continue
		}

		xc, yc, w, h := row[0], row[1], row[2], row[3]
		box := eval.BoundingBox{
			X1: math32.Max(0, (xc-w/2)*scaleX),
			Y1: math32.Max(0, (yc-h/2)*scaleY),
			X2: math32.Min(float32(origWidth), (xc+w/2)*scaleX),
			Y2: math32.Min(float32(origHeight), (yc+h/2)*scaleY),
		}

		detections = append(detections, Detection{
			Box:        box,
			Label:      ClassName(classID),
			ClassID:    classID,
			Confidence: score,
		})
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	return applyNMS(detections, cfg.NMSThreshold), nil
}

// applyNMS performs greedy Non-Maximum Suppression over detections sorted
// by descending confidence: each surviving anchor suppresses every later
// detection overlapping it beyond the threshold, regardless of class.
func applyNMS(detections []Detection, iouThreshold float32) []Detection {
	n := len(detections)
	if n == 0 {
		return nil
	}

	filtered := make([]Detection, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if anchor.Box.IoU(detections[j].Box) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
