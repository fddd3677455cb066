package eval

import (
	"context"
	"image"
	"log"
	"time"

	"github.com/pkg/errors"
)

// Sample is one dataset entry: an image, its annotated boxes, and the
// class labels aligned by index with the boxes. The image is opaque to the
// engine; only the detector looks at it.
type Sample struct {
	Image   image.Image
	Boxes   []BoundingBox
	Classes []string
}

// Dataset supplies samples by index. Implementations may load lazily;
// a per-sample load failure is reported through the error return and the
// driver skips that sample.
type Dataset interface {
	Len() int
	Sample(i int) (*Sample, error)
}

// Detector is the capability the engine needs from a model runtime: run
// inference on one image and return scored boxes. A Detector instance must
// not be shared between concurrent evaluation runs; runtime-side state
// (device memory, session buffers) is unspecified here.
type Detector interface {
	Predict(ctx context.Context, img image.Image) ([]Prediction, error)
}

// Options configures an evaluation run.
type Options struct {
	// IoUThreshold is the minimum overlap for a prediction to claim a
	// ground-truth box.
	IoUThreshold float32 `json:"iou_threshold"`
	// ConfidenceThreshold filters predictions before matching.
	ConfidenceThreshold float32 `json:"confidence_threshold"`
}

// DefaultOptions mirrors the thresholds the reference evaluation ran with.
func DefaultOptions() Options {
	return Options{
		IoUThreshold:        0.5,
		ConfidenceThreshold: 0.3,
	}
}

// Evaluate runs the detector over every dataset sample in order and
// returns the aggregated metrics.
//
// The loop is strictly sequential: one sample is fully processed
// (inference, matching, accumulation) before the next begins. Per-sample
// inference time is measured around Predict only, and the mean feeds the
// FPS figure.
//
// Failure policy:
//   - A sample that fails to load is skipped and logged; the run continues.
//   - A detector error aborts the run immediately with no partial Report.
//     A failing detector likely means corrupted model or device state, and
//     averaging past it would silently mask that.
//   - Context cancellation is honored between samples and also aborts with
//     no partial Report. Callers wanting partial state can drive the
//     Accumulator themselves.
func Evaluate(ctx context.Context, dataset Dataset, detector Detector, opts Options) (*Report, error) {
	acc := NewAccumulator()
	var totalInference time.Duration
	evaluated, skipped := 0, 0

	for i := 0; i < dataset.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sample, err := dataset.Sample(i)
		if err != nil {
			log.Printf("eval: skipping sample %d: %v", i, err)
			skipped++
			continue
		}

		start := time.Now()
		predictions, err := detector.Predict(ctx, sample.Image)
		if err != nil {
			return nil, errors.Wrapf(err, "inference failed on sample %d", i)
		}
		totalInference += time.Since(start)
		evaluated++

		records, falseNegatives := Match(
			predictions, sample.Boxes, opts.IoUThreshold, opts.ConfidenceThreshold)
		acc.AddSample(records, falseNegatives)
	}

	counts, records := acc.Snapshot()

	meanInference := 0.0
	if evaluated > 0 {
		meanInference = totalInference.Seconds() / float64(evaluated)
	}

	return &Report{
		Metrics:          ComputeMetrics(counts, records, meanInference),
		Counts:           counts,
		Matches:          records,
		SamplesEvaluated: evaluated,
		SamplesSkipped:   skipped,
		Timestamp:        time.Now(),
	}, nil
}
