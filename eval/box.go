// Package eval - Detection-evaluation engine: IoU matching, running
// counts, and precision/recall/mAP derivation.
package eval

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// epsilon guards every ratio in this package against division by zero.
// Degenerate inputs (zero-area boxes, zero counts) yield finite values
// instead of NaN or Inf.
const epsilon = 1e-6

// BoundingBox is an axis-aligned box in image pixel space.
// X1 <= X2 and Y1 <= Y2 for well-formed boxes. Value type, never mutated.
type BoundingBox struct {
	X1, Y1, X2, Y2 float32
}

// Area returns the box area in square pixels.
func (b BoundingBox) Area() float32 {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// IoU calculates the Intersection over Union between two bounding boxes.
//
// This is the standard detection-matching metric: the ratio of the
// overlapping area to the combined area of the two boxes.
//
//   - A value of 1.0 means the boxes are identical.
//   - A value of 0.0 means the boxes do not overlap at all.
//
// The union carries an epsilon term so two zero-area boxes still produce
// a finite result. The returned value is always in [0, 1] up to that
// epsilon perturbation.
//
// Arguments:
//   - other: The box to compare against.
//
// Returns:
//   - float32: The IoU score.
func (b BoundingBox) IoU(other BoundingBox) float32 {
	ix1 := math32.Max(b.X1, other.X1)
	iy1 := math32.Max(b.Y1, other.Y1)
	ix2 := math32.Min(b.X2, other.X2)
	iy2 := math32.Min(b.Y2, other.Y2)

	// Non-overlapping boxes produce a zero or negative extent, never a
	// negative area.
	interArea := math32.Max(0, ix2-ix1) * math32.Max(0, iy2-iy1)

	unionArea := b.Area() + other.Area() - interArea
	return interArea / (unionArea + epsilon)
}

// ToRect converts the box to an image.Rectangle for drawing. Fractional
// pixels around the edges are truncated.
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%.2f, %.2f), (%.2f, %.2f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Prediction is a detector output: a bounding box paired with a
// confidence score in [0, 1]. Read-only once produced.
type Prediction struct {
	Box        BoundingBox `json:"box"`
	Confidence float32     `json:"confidence"`
}
